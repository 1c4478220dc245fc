package userboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/jpalmerr/userboard/store"
)

// State keys written by the [Board] event loop.
const (
	// KeyUsers holds the user list: []User before transformation,
	// []Profile after.
	KeyUsers = "users"

	// KeyLoading is true while a fetch is pending.
	KeyLoading = "loading"

	// KeyTransformed is true once the users have been replaced by profiles.
	KeyTransformed = "transformed"

	// KeyError holds the last fetch error message, or nil.
	KeyError = "error"

	// KeyFetchedAt holds the time of the last successful fetch, or nil.
	KeyFetchedAt = "fetchedAt"
)

// statusActive is the raw status value that marks a user as active.
const statusActive = "active"

// User is a raw user record as returned by a [Source].
//
// Field names follow the JSON the upstream APIs produce, so the same struct
// decodes HTTP responses and data files without mapping.
type User struct {
	ID        int    `json:"id" yaml:"id"`
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName" yaml:"lastName"`
	Age       int    `json:"age" yaml:"age"`
	Status    string `json:"status" yaml:"status"`
}

// FullName returns the first and last name joined by a single space.
// Missing parts are dropped rather than leaving stray whitespace.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Profile is the display form of a [User], produced by [TransformUsers].
type Profile struct {
	FullName string `json:"fullName"`
	Age      int    `json:"age"`
	IsActive bool   `json:"isActive"`
}

// TransformUsers converts raw users into display profiles.
//
// The result has the same length and order as the input. A user is active
// only when its status is exactly "active"; any other value, including an
// empty one, is inactive.
func TransformUsers(users []User) []Profile {
	profiles := make([]Profile, len(users))
	for i, u := range users {
		profiles[i] = Profile{
			FullName: u.FullName(),
			Age:      u.Age,
			IsActive: u.Status == statusActive,
		}
	}
	return profiles
}

// Summarize formats each user as "Name: <full name>, Age: <age>".
func Summarize(users []User) []string {
	lines := make([]string, len(users))
	for i, u := range users {
		lines[i] = fmt.Sprintf("Name: %s, Age: %d", u.FullName(), u.Age)
	}
	return lines
}

// SampleUsers returns the fixed dataset served by [SimulatedSource].
// Each call returns a fresh slice.
func SampleUsers() []User {
	return []User{
		{ID: 1, FirstName: "Alice", LastName: "Smith", Age: 25, Status: "active"},
		{ID: 2, FirstName: "Bob", LastName: "Jones", Age: 30, Status: "inactive"},
	}
}

// InitialState returns the state a [Board] starts from: no users, not
// loading, no error.
func InitialState() store.State {
	return store.State{
		KeyUsers:       []User{},
		KeyLoading:     false,
		KeyTransformed: false,
		KeyError:       nil,
		KeyFetchedAt:   nil,
	}
}

// usersFromState returns the raw users held in st, and whether st holds
// transformed profiles instead. Unknown value types count as empty.
func usersFromState(st store.State) (raw []User, transformed bool) {
	switch v := st[KeyUsers].(type) {
	case []User:
		return v, false
	case []Profile:
		return nil, len(v) > 0
	default:
		return nil, false
	}
}

// fetchedState is the partial update applied after a successful fetch.
func fetchedState(users []User, at time.Time) store.State {
	if users == nil {
		users = []User{}
	}
	return store.State{
		KeyUsers:       users,
		KeyLoading:     false,
		KeyTransformed: false,
		KeyError:       nil,
		KeyFetchedAt:   at,
	}
}

// failedState is the partial update applied after a failed fetch. Like the
// original page, a failure leaves an empty list rather than stale data.
func failedState(err error) store.State {
	return store.State{
		KeyUsers:       []User{},
		KeyLoading:     false,
		KeyTransformed: false,
		KeyError:       err.Error(),
	}
}
