package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// mockUser is one record served by the mock users API.
type mockUser struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
	Status    string `json:"status"`
}

// StartMockUsersServer runs a mock users API at /api/users.
//
// The response wraps the list as {"data": {"users": [...]}}. Every 20-60
// seconds one user flips between active and inactive, so a board with a
// refresh interval shows the change. Call this in a goroutine before
// creating the board.
func StartMockUsersServer(addr string) {
	var mu sync.Mutex
	users := []mockUser{
		{ID: 1, FirstName: "Alice", LastName: "Smith", Age: 25, Status: "active"},
		{ID: 2, FirstName: "Bob", LastName: "Jones", Age: 30, Status: "inactive"},
		{ID: 3, FirstName: "Carol", LastName: "White", Age: 41, Status: "active"},
		{ID: 4, FirstName: "Dan", LastName: "Brown", Age: 19, Status: "pending"},
	}
	nextChangeAt := time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)

	http.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		// simulate small latency variance
		time.Sleep(time.Duration(200+rand.Intn(600)) * time.Millisecond)

		mu.Lock()
		if time.Now().After(nextChangeAt) {
			u := &users[rand.Intn(len(users))]
			old := u.Status
			if u.Status == "active" {
				u.Status = "inactive"
			} else {
				u.Status = "active"
			}
			nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
			slog.Info("status change", "user", u.FirstName, "from", old, "to", u.Status)
		}
		snapshot := append([]mockUser(nil), users...)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"data": map[string]any{
				"users": snapshot,
				"total": len(snapshot),
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	slog.Info("mock users server starting", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
