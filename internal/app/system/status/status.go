// Package status holds the closed status vocabularies for users and
// donation requests, and the donation-request transition table.
package status

import "strings"

// User account statuses.
const (
	Active  = "active"
	Blocked = "blocked"
)

// IsValid reports whether s is a recognized user status.
func IsValid(s string) bool {
	switch s {
	case Active, Blocked:
		return true
	}
	return false
}

// Request is the lifecycle state of a donation request.
type Request string

const (
	Pending    Request = "pending"
	InProgress Request = "inprogress"
	Done       Request = "done"
	Canceled   Request = "canceled"
)

// aliases accepts the labels older clients wrote for the same states.
var aliases = map[string]Request{
	"pending":     Pending,
	"inprogress":  InProgress,
	"in-progress": InProgress,
	"in progress": InProgress,
	"accepted":    InProgress,
	"done":        Done,
	"completed":   Done,
	"canceled":    Canceled,
	"cancelled":   Canceled,
}

// ParseRequest maps a raw label onto the closed set of request states.
func ParseRequest(s string) (Request, bool) {
	st, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// Terminal reports whether no further transition is allowed out of s.
func (s Request) Terminal() bool {
	return s == Done || s == Canceled
}

func (s Request) String() string { return string(s) }

var transitions = map[Request][]Request{
	Pending:    {InProgress, Canceled},
	InProgress: {Done, Canceled, Pending},
}

// CanTransition reports whether a request may move from one state to another.
// Staying in the same non-terminal state is always allowed.
func CanTransition(from, to Request) bool {
	if from == to {
		return !from.Terminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
