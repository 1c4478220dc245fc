// Package dashboard provides the embedded web page for userboard.
//
// The page is a single html/template rendered server-side from the current
// state, with a small script that re-renders it from the SSE stream. Embedding
// it keeps userboard a single binary.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the page template.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - html/template for the user list page, inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
