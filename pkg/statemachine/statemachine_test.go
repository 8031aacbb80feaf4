package statemachine_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskqueue/pkg/statemachine"
)

type (
	docState string
	docEvent string
)

const (
	draft     docState = "draft"
	inReview  docState = "in_review"
	approved  docState = "approved"
	withdrawn docState = "withdrawn"

	submit   docEvent = "submit"
	approve  docEvent = "approve"
	withdraw docEvent = "withdraw"
)

func newDocMachine(t *testing.T) *statemachine.Machine[docState, docEvent] {
	t.Helper()

	m, err := statemachine.New(
		statemachine.WithTransition(draft, inReview, submit),
		statemachine.WithTransition(inReview, approved, approve),
		statemachine.WithTransitions(withdraw, withdrawn, draft, inReview),
	)
	require.NoError(t, err)
	return m
}

func TestMachine_Fire(t *testing.T) {
	t.Parallel()

	m := newDocMachine(t)

	t.Run("follows defined edges", func(t *testing.T) {
		t.Parallel()

		next, err := m.Fire(draft, submit)
		require.NoError(t, err)
		assert.Equal(t, inReview, next)

		next, err = m.Fire(next, approve)
		require.NoError(t, err)
		assert.Equal(t, approved, next)
	})

	t.Run("multi-source transition", func(t *testing.T) {
		t.Parallel()

		for _, from := range []docState{draft, inReview} {
			next, err := m.Fire(from, withdraw)
			require.NoError(t, err)
			assert.Equal(t, withdrawn, next)
		}
	})

	t.Run("rejects undefined edge and keeps state", func(t *testing.T) {
		t.Parallel()

		next, err := m.Fire(approved, submit)
		require.Error(t, err)
		assert.True(t, statemachine.IsNoTransitionAvailableError(err))
		assert.Equal(t, approved, next)

		var noTransition *statemachine.ErrNoTransitionAvailable
		require.ErrorAs(t, err, &noTransition)
		assert.Equal(t, "approved", noTransition.StateName)
		assert.Equal(t, "submit", noTransition.EventName)
	})
}

func TestMachine_CanFireAndTerminal(t *testing.T) {
	t.Parallel()

	m := newDocMachine(t)

	assert.True(t, m.CanFire(draft, submit))
	assert.False(t, m.CanFire(draft, approve))
	assert.False(t, m.CanFire(withdrawn, withdraw))

	assert.True(t, m.IsTerminal(approved))
	assert.True(t, m.IsTerminal(withdrawn))
	assert.False(t, m.IsTerminal(inReview))

	assert.Len(t, m.Transitions(), 4)
}

func TestNew_InvalidDefinitions(t *testing.T) {
	t.Parallel()

	t.Run("no transitions", func(t *testing.T) {
		t.Parallel()

		_, err := statemachine.New[docState, docEvent]()
		assert.ErrorIs(t, err, statemachine.ErrNoTransitions)
	})

	t.Run("ambiguous transition", func(t *testing.T) {
		t.Parallel()

		_, err := statemachine.New(
			statemachine.WithTransition(draft, inReview, submit),
			statemachine.WithTransition(draft, approved, submit),
		)
		assert.ErrorIs(t, err, statemachine.ErrAmbiguousTransition)
	})

	t.Run("duplicate identical transition is allowed", func(t *testing.T) {
		t.Parallel()

		_, err := statemachine.New(
			statemachine.WithTransition(draft, inReview, submit),
			statemachine.WithTransition(draft, inReview, submit),
		)
		assert.NoError(t, err)
	})

	t.Run("MustNew panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			statemachine.MustNew[docState, docEvent]()
		})
	})
}

func TestMachine_ConcurrentFire(t *testing.T) {
	t.Parallel()

	m := newDocMachine(t)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next, err := m.Fire(draft, submit)
			assert.NoError(t, err)
			assert.Equal(t, inReview, next)
		}()
	}
	wg.Wait()
}
