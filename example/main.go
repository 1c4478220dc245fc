package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/userboard"
	"github.com/jpalmerr/userboard/store"
)

func main() {
	// start mock API (see mock_server.go)
	go StartMockUsersServer(":9999")
	time.Sleep(100 * time.Millisecond)

	src, err := userboard.NewHTTPSource("http://localhost:9999/api/users",
		userboard.WithRecordsPath("data.users"),
		userboard.WithTimeout(5*time.Second),
	)
	if err != nil {
		slog.Error("failed to create source", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	b, err := userboard.New(
		userboard.WithSource(src),
		userboard.WithTitle("Team Directory"),
		userboard.WithLayout("table"),
		userboard.WithRefreshInterval(15*time.Second),
		userboard.WithPort(8080),
		userboard.WithStateCallback(func(st store.State) {
			if users, ok := st[userboard.KeyUsers].([]userboard.User); ok && len(users) > 0 {
				for _, line := range userboard.Summarize(users) {
					fmt.Println("  " + line)
				}
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create userboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  userboard demo")
	fmt.Println()
	fmt.Println("  Open http://localhost:8080 in your browser")
	fmt.Println("  Users come from a mock API and refresh every 15s;")
	fmt.Println("  one user changes status every 20-60s.")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		slog.Error("userboard error", "error", err)
		os.Exit(1)
	}
}
