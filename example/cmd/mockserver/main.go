// Standalone mock users API for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/userboard serve -c example/config.yaml
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

type user struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
	Status    string `json:"status"`
}

var users = []user{
	{ID: 1, FirstName: "Alice", LastName: "Smith", Age: 25, Status: "active"},
	{ID: 2, FirstName: "Bob", LastName: "Jones", Age: 30, Status: "inactive"},
	{ID: 3, FirstName: "Carol", LastName: "White", Age: 41, Status: "active"},
}

func main() {
	fmt.Println("Mock users API starting on :9999")
	fmt.Println("  GET /users        plain JSON array")
	fmt.Println("  GET /users/flaky  fails every other request with 503")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	http.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(300+rand.Intn(700)) * time.Millisecond)
		writeUsers(w)
	})

	var calls atomic.Int64
	http.HandleFunc("/users/flaky", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(300+rand.Intn(700)) * time.Millisecond)
		if calls.Add(1)%2 == 0 {
			slog.Info("failing request", "path", r.URL.Path)
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
			return
		}
		writeUsers(w)
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func writeUsers(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(users)
}
