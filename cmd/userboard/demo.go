package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/userboard"
	"github.com/jpalmerr/userboard/store"
)

// demoCmd walks through the observable store and the user transform in the
// terminal, without starting a server.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the observable store and transform demo",
	Long: `Run a terminal walkthrough of userboard's building blocks.

The demo:
  - Subscribes to a store, applies a few updates and unsubscribes
  - Prints the sample users as summaries
  - Fetches users from the simulated source, then transforms them,
    printing every state change along the way

Example:
  userboard demo
  userboard demo --delay 0s`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Duration("delay", 500*time.Millisecond, "simulated fetch latency")
}

func runDemo(cmd *cobra.Command, args []string) error {
	delay, _ := cmd.Flags().GetDuration("delay")
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "== Observable store ==")
	storeDemo(out)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "== User summaries ==")
	for _, line := range userboard.Summarize(userboard.SampleUsers()) {
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "== Fetch and transform ==")
	return fetchDemo(cmd.Context(), out, delay)
}

// storeDemo subscribes, updates twice, unsubscribes and updates once more.
// The last update is applied but not printed.
func storeDemo(out io.Writer) {
	st := store.New(store.State{"count": 0, "text": "Hello"})

	unsubscribe := st.Subscribe(func(s store.State) {
		fmt.Fprintf(out, "state changed: %v\n", s)
	})

	st.SetState(store.State{"count": 1})
	st.SetState(store.State{"text": "World"})
	unsubscribe()
	st.SetState(store.State{"count": 2})

	fmt.Fprintf(out, "final state: %v\n", st.GetState())
}

// fetchDemo drives the same state transitions as the page's buttons.
func fetchDemo(ctx context.Context, out io.Writer, delay time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if delay == 0 {
		// NewSimulatedSource treats zero as "use the default"
		delay = -1
	}

	st := store.New(userboard.InitialState())
	st.Subscribe(func(s store.State) {
		render(out, s)
	})

	st.SetState(store.State{userboard.KeyLoading: true})

	users, err := userboard.NewSimulatedSource(nil, delay).FetchUsers(ctx)
	if err != nil {
		st.SetState(store.State{
			userboard.KeyUsers:   []userboard.User{},
			userboard.KeyLoading: false,
			userboard.KeyError:   err.Error(),
		})
		return fmt.Errorf("fetch users: %w", err)
	}
	st.SetState(store.State{
		userboard.KeyUsers:   users,
		userboard.KeyLoading: false,
	})

	st.SetState(store.State{
		userboard.KeyUsers:       userboard.TransformUsers(users),
		userboard.KeyTransformed: true,
	})
	return nil
}

// render prints the user list the way the page shows it.
func render(out io.Writer, s store.State) {
	if loading, _ := s[userboard.KeyLoading].(bool); loading {
		fmt.Fprintln(out, "Loading...")
		return
	}
	if msg, ok := s[userboard.KeyError].(string); ok {
		fmt.Fprintf(out, "Error: %s\n", msg)
		return
	}

	switch users := s[userboard.KeyUsers].(type) {
	case []userboard.User:
		fmt.Fprintf(out, "users (%d):\n", len(users))
		for _, u := range users {
			fmt.Fprintf(out, "  %s, age %d, status %s\n", u.FullName(), u.Age, u.Status)
		}
	case []userboard.Profile:
		fmt.Fprintf(out, "profiles (%d):\n", len(users))
		for _, p := range users {
			status := "Inactive"
			if p.IsActive {
				status = "Active"
			}
			fmt.Fprintf(out, "  %s, age %d, %s\n", p.FullName, p.Age, status)
		}
	}
}
