// file: store/suite_test.go
package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-live-polls/models"
)

// runStoreSuite checks the behaviour every backend must share.
func runStoreSuite(t *testing.T, open func(t *testing.T) Store) {
	t.Run("SessionRoundTrip", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()

		created, err := st.CreateSession(ctx, "482913")
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "482913", created.Code)
		assert.Empty(t, created.PollIDs)

		found, err := st.FindSessionByCode(ctx, "482913")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("SessionNotFound", func(t *testing.T) {
		st := open(t)
		_, err := st.FindSessionByCode(context.Background(), "999999")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("DuplicateCode", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()
		_, err := st.CreateSession(ctx, "482913")
		require.NoError(t, err)
		_, err = st.CreateSession(ctx, "482913")
		assert.ErrorIs(t, err, ErrDuplicateSessionCode)
	})

	t.Run("PollNotFound", func(t *testing.T) {
		st := open(t)
		_, err := st.FindPollByID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrPollNotFound)
	})

	t.Run("SavePollReplacesResults", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()
		session, err := st.CreateSession(ctx, "482913")
		require.NoError(t, err)

		poll := &models.Poll{
			ID: "p1", SessionID: session.ID, AccessCode: session.Code,
			Question: "Best color?", Type: models.PollTypeMultipleChoice,
			Options: []string{"Red", "Blue"}, Results: map[string]int{},
		}
		require.NoError(t, st.SavePoll(ctx, poll))

		loaded, err := st.FindPollByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Best color?", loaded.Question)
		assert.Equal(t, []string{"Red", "Blue"}, loaded.Options)
		assert.Equal(t, "482913", loaded.AccessCode)
		assert.Empty(t, loaded.Results)

		loaded.Results["Red"] = 2
		loaded.Results["Blue"] = 1
		require.NoError(t, st.SavePoll(ctx, loaded))
		loaded.Results["Blue"] = 0
		delete(loaded.Results, "Blue")
		loaded.Results["Red"] = 3
		require.NoError(t, st.SavePoll(ctx, loaded))

		again, err := st.FindPollByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"Red": 3}, again.Results)
	})

	t.Run("AppendAndListInOrder", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()
		session, err := st.CreateSession(ctx, "482913")
		require.NoError(t, err)

		ids := []string{"p-b", "p-a", "p-c"}
		for i, id := range ids {
			require.NoError(t, st.SavePoll(ctx, &models.Poll{
				ID: id, SessionID: session.ID, AccessCode: session.Code,
				Question: fmt.Sprintf("Q%d", i), Type: models.PollTypeOpenEnded,
				Options: []string{}, Results: map[string]int{},
			}))
			require.NoError(t, st.AppendPollToSession(ctx, session.ID, id))
		}
		// appending twice keeps set semantics
		require.NoError(t, st.AppendPollToSession(ctx, session.ID, "p-b"))

		found, err := st.FindSessionByCode(ctx, "482913")
		require.NoError(t, err)
		assert.Equal(t, ids, found.PollIDs)

		polls, err := st.ListSessionPolls(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, polls, 3)
		for i, p := range polls {
			assert.Equal(t, ids[i], p.ID)
		}
	})

	t.Run("AppendToUnknownSession", func(t *testing.T) {
		st := open(t)
		err := st.AppendPollToSession(context.Background(), "no-such-session", "p1")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("ConcurrentCreates", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := st.CreateSession(ctx, fmt.Sprintf("%d", 100000+i))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()
		for i := 0; i < 10; i++ {
			_, err := st.FindSessionByCode(ctx, fmt.Sprintf("%d", 100000+i))
			assert.NoError(t, err)
		}
	})
}
