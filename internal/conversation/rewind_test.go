package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/chatline-go/internal/provider"
)

func sendAll(t *testing.T, c *Controller, messages ...string) {
	t.Helper()
	for _, m := range messages {
		require.NoError(t, c.Send(context.Background(), m))
	}
}

func TestRewindRemovesCurrentTurnAndReprocesses(t *testing.T) {
	st := &scriptedStreamer{}
	st.push(provider.Chunk{Content: "answer a"})
	st.push(provider.Chunk{Content: "answer b"})
	st.push(provider.Chunk{Content: "regenerated a"})
	c := newTestController(st)
	sendAll(t, c, "alpha", "beta")

	require.NoError(t, c.Rewind(context.Background()))

	require.Equal(t, 1, c.Store().Len())
	turn, _ := c.Store().Last()
	require.Equal(t, "alpha", turn.User.Content)
	require.Equal(t, "regenerated a", turn.Assistant.Content)
}

func TestRewindChainsDownToEmptyHistory(t *testing.T) {
	c := newTestController(&scriptedStreamer{})
	sendAll(t, c, "alpha", "beta", "gamma")

	// Each rewind removes one turn; the last one leaves the history empty
	// with nothing to reprocess.
	for want := 2; want >= 0; want-- {
		require.NoError(t, c.Rewind(context.Background()))
		require.Equal(t, want, c.Store().Len())
	}

	require.ErrorIs(t, c.Rewind(context.Background()), ErrInsufficientHistory)
}

func TestRewindDuplicateContentResolvesEarlierOccurrence(t *testing.T) {
	c := newTestController(&scriptedStreamer{})
	sendAll(t, c, "one", "same", "three", "same")

	require.NoError(t, c.Rewind(context.Background()))

	// The duplicated content resolves to its earlier instance, so everything
	// from there on is gone.
	require.Equal(t, 1, c.Store().Len())
	turn, _ := c.Store().Last()
	require.Equal(t, "one", turn.User.Content)
}

func TestRewindWithEmptyHistory(t *testing.T) {
	c := newTestController(&scriptedStreamer{})
	require.ErrorIs(t, c.Rewind(context.Background()), ErrInsufficientHistory)
	require.Equal(t, 0, c.Store().Len())
}

func TestRewindReprocessFailureKeepsTruncation(t *testing.T) {
	st := &scriptedStreamer{}
	st.push(provider.Chunk{Content: "answer a"})
	st.push(provider.Chunk{Content: "answer b"})
	st.push(provider.Chunk{Err: errors.New("connection reset")})
	c := newTestController(st)
	sendAll(t, c, "alpha", "beta")

	err := c.Rewind(context.Background())
	require.ErrorIs(t, err, ErrStreamInterrupted)

	// The truncation is committed even though regeneration failed; retry can
	// finish the job.
	require.Equal(t, 1, c.Store().Len())
	st.push(provider.Chunk{Content: "recovered"})
	require.NoError(t, c.Retry(context.Background()))
	turn, _ := c.Store().Last()
	require.Equal(t, "recovered", turn.Assistant.Content)
}

func TestRewindCancelledDuringAnimationLeavesHistoryIntact(t *testing.T) {
	c := newTestController(&scriptedStreamer{})
	sendAll(t, c, "alpha")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Rewind(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, c.Store().Len())
}
