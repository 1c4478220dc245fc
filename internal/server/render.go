package server

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jpalmerr/userboard/store"
)

// Layout selects how the user list is rendered.
type Layout string

const (
	// LayoutCards renders one card per user.
	LayoutCards Layout = "cards"

	// LayoutTable renders a single table with one row per user.
	LayoutTable Layout = "table"
)

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	return l == LayoutCards || l == LayoutTable
}

// userView is the display form of one entry in the "users" field. It decodes
// both raw users and transformed profiles, so the renderer does not depend on
// the board's Go types.
type userView struct {
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
	IsActive  *bool  `json:"isActive"`
	Status    string `json:"status"`
}

// Name returns the display name.
func (u userView) Name() string {
	if u.FullName != "" {
		return u.FullName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// StatusLabel returns "Active"/"Inactive" for profiles and the raw status
// for untransformed users.
func (u userView) StatusLabel() string {
	if u.IsActive != nil {
		if *u.IsActive {
			return "Active"
		}
		return "Inactive"
	}
	if u.Status == "" {
		return "Unknown"
	}
	return u.Status
}

// pageView is the data passed to the page template.
type pageView struct {
	Title       string
	Layout      Layout
	Users       []userView
	Loading     bool
	Transformed bool
	Error       string
	FetchedAt   string
}

// newPageView builds the template data from a state snapshot. Fields of an
// unexpected type are treated as absent.
func newPageView(title string, layout Layout, st store.State) pageView {
	view := pageView{
		Title:  title,
		Layout: layout,
		Users:  decodeUsers(st["users"]),
	}

	view.Loading, _ = st["loading"].(bool)
	view.Transformed, _ = st["transformed"].(bool)
	view.Error, _ = st["error"].(string)
	if at, ok := st["fetchedAt"].(time.Time); ok && !at.IsZero() {
		view.FetchedAt = at.Format(time.RFC3339)
	}

	return view
}

// decodeUsers round-trips v through JSON into display rows.
func decodeUsers(v any) []userView {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var users []userView
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil
	}
	return users
}
