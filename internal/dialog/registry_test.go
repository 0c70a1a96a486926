package dialog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRetry = errors.New("retry")

// newTestRegistry registers pass-through handlers so transitions can be
// driven from test input: "next" advances the progress flow, "fail" keeps
// the state, anything else completes the dialog.
func newTestRegistry() *Registry {
	r := NewRegistry()

	step := func(next *State) Handler {
		return func(_ context.Context, _ int64, _ State, input string) (*State, error) {
			switch input {
			case "fail":
				return nil, errRetry
			case "next":
				return next, nil
			default:
				return nil, nil
			}
		}
	}

	r.Register(KindInterestSelection, step(nil))
	r.Register(KindReminderInterval, step(nil))
	r.Register(KindProgressTopic, step(&State{Kind: KindProgressDuration, Topic: "algebra"}))
	r.Register(KindProgressDuration, step(nil))
	return r
}

func TestRegistry_BeginAndComplete(t *testing.T) {
	r := newTestRegistry()

	st, err := r.Begin(1, KindInterestSelection)
	require.NoError(t, err)
	assert.Equal(t, KindInterestSelection, st.Kind)

	_, active := r.Active(1)
	assert.True(t, active)

	require.NoError(t, r.Dispatch(context.Background(), 1, "done"))

	_, active = r.Active(1)
	assert.False(t, active, "completed dialog must be removed")
}

func TestRegistry_BeginDifferentKindFails(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Begin(1, KindInterestSelection)
	require.NoError(t, err)

	_, err = r.Begin(1, KindReminderInterval)
	assert.ErrorIs(t, err, ErrAlreadyActive)

	// The original dialog is untouched.
	st, active := r.Active(1)
	require.True(t, active)
	assert.Equal(t, KindInterestSelection, st.Kind)
}

func TestRegistry_BeginSameKindResets(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Begin(1, KindProgressTopic)
	require.NoError(t, err)
	require.NoError(t, r.Dispatch(context.Background(), 1, "next"))

	st, active := r.Active(1)
	require.True(t, active)
	require.Equal(t, KindProgressDuration, st.Kind)
	require.Equal(t, "algebra", st.Topic)

	// Restarting the same flow drops the captured topic.
	st, err = r.Begin(1, KindProgressTopic)
	require.NoError(t, err)
	assert.Equal(t, KindProgressTopic, st.Kind)
	assert.Empty(t, st.Topic)
}

func TestRegistry_BeginUnknownKind(t *testing.T) {
	r := NewRegistry()

	_, err := r.Begin(1, KindProgressTopic)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRegistry_DispatchWithoutDialog(t *testing.T) {
	r := newTestRegistry()

	err := r.Dispatch(context.Background(), 1, "hello")
	assert.ErrorIs(t, err, ErrNoActiveDialog)
}

func TestRegistry_ValidationErrorKeepsState(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Begin(1, KindReminderInterval)
	require.NoError(t, err)

	err = r.Dispatch(context.Background(), 1, "fail")
	assert.ErrorIs(t, err, errRetry)

	st, active := r.Active(1)
	require.True(t, active)
	assert.Equal(t, KindReminderInterval, st.Kind)
}

func TestRegistry_TransitionCarriesPayload(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Begin(1, KindProgressTopic)
	require.NoError(t, err)

	require.NoError(t, r.Dispatch(context.Background(), 1, "next"))

	st, active := r.Active(1)
	require.True(t, active)
	assert.Equal(t, KindProgressDuration, st.Kind)
	assert.Equal(t, "algebra", st.Topic)

	require.NoError(t, r.Dispatch(context.Background(), 1, "30"))
	_, active = r.Active(1)
	assert.False(t, active)
}

func TestRegistry_CancelIsIdempotent(t *testing.T) {
	r := newTestRegistry()

	r.Cancel(1) // no dialog, no panic

	_, err := r.Begin(1, KindInterestSelection)
	require.NoError(t, err)

	r.Cancel(1)
	r.Cancel(1)

	_, active := r.Active(1)
	assert.False(t, active)

	err = r.Dispatch(context.Background(), 1, "anything")
	assert.ErrorIs(t, err, ErrNoActiveDialog)
}

func TestRegistry_PerUserIsolation(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Begin(1, KindInterestSelection)
	require.NoError(t, err)
	_, err = r.Begin(2, KindReminderInterval)
	require.NoError(t, err)

	require.NoError(t, r.Dispatch(context.Background(), 1, "done"))

	// User 2 proceeds independently.
	st, active := r.Active(2)
	require.True(t, active)
	assert.Equal(t, KindReminderInterval, st.Kind)

	require.NoError(t, r.Dispatch(context.Background(), 2, "done"))
	_, active = r.Active(2)
	assert.False(t, active)
}

func TestRegistry_ConcurrentSameUserDispatchesSerialize(t *testing.T) {
	r := NewRegistry()

	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0

	r.Register(KindInterestSelection, func(_ context.Context, _ int64, _ State, input string) (*State, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		defer func() {
			mu.Lock()
			inFlight--
			mu.Unlock()
		}()

		return nil, errRetry // keep the dialog alive
	})

	_, err := r.Begin(1, KindInterestSelection)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Dispatch(context.Background(), 1, "x")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight, "same-user dispatches must not interleave")
}
