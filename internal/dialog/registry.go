package dialog

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrAlreadyActive is returned by Begin when a dialog of a different
	// kind is already active for the user.
	ErrAlreadyActive = errors.New("dialog already active")
	// ErrNoActiveDialog is returned by Dispatch when the user has no
	// active dialog.
	ErrNoActiveDialog = errors.New("no active dialog")
	// ErrUnknownKind is returned by Begin for a kind without a registered handler.
	ErrUnknownKind = errors.New("unknown dialog kind")
)

// Kind identifies a dialog state variant.
type Kind string

const (
	KindInterestSelection Kind = "interest_selection"
	KindReminderInterval  Kind = "reminder_interval"
	KindProgressTopic     Kind = "progress_topic"
	KindProgressDuration  Kind = "progress_duration"
)

// State is the single tagged dialog state of a user. Topic is only set
// for KindProgressDuration, where it carries the captured study topic.
type State struct {
	Kind  Kind
	Topic string
}

// Handler processes one raw user input for a dialog state variant.
// It returns the next state to transition to, nil to complete and remove
// the dialog, or an error to leave the state unchanged so the user can
// retry. Persistence side effects belong to the handler, not the registry.
type Handler func(ctx context.Context, userID int64, st State, input string) (*State, error)

type session struct {
	mu    sync.Mutex
	state State
	gone  bool // entry removed while a dispatch held the session lock
}

// Registry tracks the single active dialog per user and routes raw input
// to the handler of the current state variant. Calls for the same user are
// serialized on a per-user lock; different users never block each other.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*session
	handlers map[Kind]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[int64]*session),
		handlers: make(map[Kind]Handler),
	}
}

// Register wires the handler invoked for inputs received in the given state.
func (r *Registry) Register(kind Kind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = h
}

// Begin installs the initial state of a new dialog for the user.
// A dialog of a different kind already in progress fails with
// ErrAlreadyActive; beginning the same kind again resets the state,
// so a re-issued command resumes cleanly.
func (r *Registry) Begin(userID int64, kind Kind) (State, error) {
	r.mu.Lock()
	if _, ok := r.handlers[kind]; !ok {
		r.mu.Unlock()
		return State{}, ErrUnknownKind
	}
	s, ok := r.sessions[userID]
	if !ok {
		s = &session{}
		r.sessions[userID] = s
	}
	r.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gone {
		// Entry was cancelled or completed concurrently; reinstall.
		s.gone = false
	} else if ok && s.state.Kind != "" && dialogFlow(s.state.Kind) != dialogFlow(kind) {
		return State{}, ErrAlreadyActive
	}

	s.state = State{Kind: kind}
	return s.state, nil
}

// Dispatch routes raw input to the handler of the user's current state.
// On handler error the state stays unchanged and the error is returned to
// the caller for a retry prompt.
func (r *Registry) Dispatch(ctx context.Context, userID int64, input string) error {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	if !ok {
		r.mu.Unlock()
		return ErrNoActiveDialog
	}
	handlers := r.handlers
	r.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gone {
		return ErrNoActiveDialog
	}

	h, ok := handlers[s.state.Kind]
	if !ok {
		return ErrUnknownKind
	}

	next, err := h(ctx, userID, s.state, input)
	if err != nil {
		return err
	}

	if next == nil {
		s.gone = true
		r.remove(userID, s)
		return nil
	}

	s.state = *next
	return nil
}

// Cancel removes any active dialog for the user. Idempotent.
func (r *Registry) Cancel(userID int64) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	r.mu.Unlock()

	if ok {
		s.mu.Lock()
		s.gone = true
		s.mu.Unlock()
	}
}

// Active returns the user's current dialog state, if any.
func (r *Registry) Active(userID int64) (State, bool) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	r.mu.Unlock()
	if !ok {
		return State{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone {
		return State{}, false
	}
	return s.state, true
}

func (r *Registry) remove(userID int64, s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[userID]; ok && cur == s {
		delete(r.sessions, userID)
	}
}

// dialogFlow maps a state variant to the multi-step flow it belongs to,
// so that resuming a flow from any of its steps counts as the same kind.
func dialogFlow(k Kind) Kind {
	if k == KindProgressDuration {
		return KindProgressTopic
	}
	return k
}
