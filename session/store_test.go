package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/parley/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(n int) []core.Message {
	return []core.Message{
		{Role: core.RoleHuman, Content: fmt.Sprintf("question %d", n)},
		{Role: core.RoleAssistant, Content: fmt.Sprintf("answer %d", n)},
	}
}

func TestEnsureIdempotent(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	require.NoError(t, store.Ensure("s1"))
	require.NoError(t, store.Append("s1", turn(1)...))

	// Ensure on a live session must not reset its history.
	require.NoError(t, store.Ensure("s1"))

	history, ok := store.Load("s1")
	require.True(t, ok)
	assert.Len(t, history, 2)
}

func TestEnsureEmptyID(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	assert.ErrorIs(t, store.Ensure("  "), core.ErrEmptySessionID)
}

func TestAppendUnknownSession(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	err = store.Append("ghost", turn(1)...)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAppendInvalidMessage(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Ensure("s1"))

	err = store.Append("s1", core.Message{Role: core.RoleHuman, Content: ""})
	assert.ErrorIs(t, err, core.ErrEmptyContent)
}

func TestAppendOrderPreserved(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Ensure("s1"))

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Append("s1", turn(i)...))
	}

	history, ok := store.Load("s1")
	require.True(t, ok)
	require.Len(t, history, 6)
	assert.Equal(t, "question 1", history[0].Content)
	assert.Equal(t, core.RoleHuman, history[0].Role)
	assert.Equal(t, "answer 3", history[5].Content)
	assert.Equal(t, core.RoleAssistant, history[5].Role)
}

func TestTurnCap(t *testing.T) {
	store, err := NewStore(WithMaxTurns(2))
	require.NoError(t, err)
	require.NoError(t, store.Ensure("s1"))

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Append("s1", turn(i)...))
	}

	history, ok := store.Load("s1")
	require.True(t, ok)
	require.Len(t, history, 4, "cap of 2 turns keeps 4 messages")
	assert.Equal(t, "question 4", history[0].Content)
	assert.Equal(t, "answer 5", history[3].Content)
}

func TestExpiredSessionReadsAsAbsent(t *testing.T) {
	store, err := NewStore(
		WithTTL(20*time.Millisecond),
		WithSweepInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	require.NoError(t, store.Ensure("s1"))
	require.NoError(t, store.Append("s1", turn(1)...))

	time.Sleep(60 * time.Millisecond)

	_, ok := store.Load("s1")
	assert.False(t, ok)
	assert.ErrorIs(t, store.Append("s1", turn(2)...), ErrSessionNotFound)
}

func TestAppendRefreshesIdleClock(t *testing.T) {
	store, err := NewStore(
		WithTTL(50*time.Millisecond),
		WithSweepInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	require.NoError(t, store.Ensure("s1"))

	// Keep touching the session at intervals shorter than the TTL.
	for i := 0; i < 4; i++ {
		time.Sleep(25 * time.Millisecond)
		require.NoError(t, store.Append("s1", turn(i)...))
	}

	_, ok := store.Load("s1")
	assert.True(t, ok, "an active session must outlive its idle TTL")
}

func TestDelete(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Ensure("s1"))

	assert.True(t, store.Delete("s1"))
	assert.False(t, store.Delete("s1"))

	_, ok := store.Load("s1")
	assert.False(t, ok)
}

func TestConcurrentAppendsAtomic(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Ensure("s1"))

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Append("s1", turn(i)...))
		}(i)
	}
	wg.Wait()

	history, ok := store.Load("s1")
	require.True(t, ok)
	require.Len(t, history, 2*writers, "no append may be lost")

	// Each turn lands as an adjacent human/assistant pair.
	for i := 0; i < len(history); i += 2 {
		assert.Equal(t, core.RoleHuman, history[i].Role)
		assert.Equal(t, core.RoleAssistant, history[i+1].Role)
	}
}

func TestCount(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	require.NoError(t, store.Ensure("a"))
	require.NoError(t, store.Ensure("b"))
	assert.Equal(t, 2, store.Count())
}

func TestUpdateCreatesSessionAndAppends(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	err = store.Update("s1", func(history []core.Message) ([]core.Message, error) {
		assert.Empty(t, history)
		return turn(1), nil
	})
	require.NoError(t, err)

	history, ok := store.Load("s1")
	require.True(t, ok)
	assert.Len(t, history, 2)
}

func TestUpdateSeesPriorHistory(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Ensure("s1"))
	require.NoError(t, store.Append("s1", turn(1)...))

	err = store.Update("s1", func(history []core.Message) ([]core.Message, error) {
		require.Len(t, history, 2)
		assert.Equal(t, "question 1", history[0].Content)
		return turn(2), nil
	})
	require.NoError(t, err)

	history, _ := store.Load("s1")
	assert.Len(t, history, 4)
}

func TestUpdateFnErrorAppendsNothing(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	wantErr := fmt.Errorf("generation broke")
	err = store.Update("s1", func(history []core.Message) ([]core.Message, error) {
		return turn(1), wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	history, ok := store.Load("s1")
	require.True(t, ok, "the session is created even when fn fails")
	assert.Empty(t, history)
}

func TestUpdateEmptyID(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	err = store.Update(" ", func(history []core.Message) ([]core.Message, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, core.ErrEmptySessionID)
}

func TestConcurrentUpdatesAtomic(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	// Each writer derives its turn number from the history it observes.
	// Without read-modify-write atomicity two writers would observe the
	// same length and produce duplicate numbers.
	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Update("s1", func(history []core.Message) ([]core.Message, error) {
				return turn(len(history) / 2), nil
			}))
		}()
	}
	wg.Wait()

	history, ok := store.Load("s1")
	require.True(t, ok)
	require.Len(t, history, 2*writers)
	for i := 0; i < writers; i++ {
		assert.Equal(t, fmt.Sprintf("question %d", i), history[2*i].Content)
	}
}
