package domain

import (
	"errors"
	"time"
)

// SessionState is the externally visible lifecycle state of a Session.
type SessionState string

const (
	StateInitializing        SessionState = "initializing"
	StateAnonymous           SessionState = "anonymous"
	StateActive              SessionState = "active"
	StatePendingConfirmation SessionState = "pending_confirmation"
)

// ActivityKind is a user input that keeps an authenticated session alive.
type ActivityKind string

const (
	ActivityPointerMove ActivityKind = "pointermove"
	ActivityKeyDown     ActivityKind = "keydown"
	ActivityClick       ActivityKind = "click"
	ActivityScroll      ActivityKind = "scroll"
)

// Valid reports whether k is one of the tracked activity kinds.
func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityPointerMove, ActivityKeyDown, ActivityClick, ActivityScroll:
		return true
	}
	return false
}

// ActivityEvent is a single observed user input.
type ActivityEvent struct {
	Kind ActivityKind
	At   time.Time
}

// IdleChoice is the answer to the idle confirmation prompt.
type IdleChoice string

const (
	IdleContinue IdleChoice = "continue"
	IdleEnd      IdleChoice = "end"
)

var (
	ErrNotAuthenticated      = errors.New("session not authenticated")
	ErrNoPendingConfirmation = errors.New("no idle confirmation pending")
	ErrInvalidIdleChoice     = errors.New("invalid idle choice")
	ErrAlreadyInitialized    = errors.New("session already initialized")
	ErrSessionClosed         = errors.New("session closed")
)

// Snapshot is an immutable copy of the session taken at one instant.
//
//   - AwaitingConfirmation implies User != nil.
//   - Loading implies User == nil.
type Snapshot struct {
	User                 *User     `json:"user,omitempty"`
	Loading              bool      `json:"loading"`
	IdleDeadline         time.Time `json:"idle_deadline,omitzero"`
	AwaitingConfirmation bool      `json:"awaiting_confirmation"`
}

// State derives the lifecycle state from the snapshot fields.
func (s Snapshot) State() SessionState {
	switch {
	case s.Loading:
		return StateInitializing
	case s.User == nil:
		return StateAnonymous
	case s.AwaitingConfirmation:
		return StatePendingConfirmation
	default:
		return StateActive
	}
}

// Authenticated reports whether a user is present.
func (s Snapshot) Authenticated() bool { return s.User != nil }
