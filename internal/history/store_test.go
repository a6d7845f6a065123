package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func userTurn(content string) Turn {
	return Turn{User: NewMessage(RoleUser, content, 0)}
}

func completedTurn(user, assistant string) Turn {
	a := NewMessage(RoleAssistant, assistant, 0)
	return Turn{User: NewMessage(RoleUser, user, 0), Assistant: &a}
}

func TestAppendAndCursor(t *testing.T) {
	s := NewStore()
	require.Equal(t, -1, s.Cursor())

	idx := s.Append(completedTurn("hello", "hi there"))
	require.Equal(t, 0, idx)
	require.Equal(t, 0, s.Cursor())

	idx = s.Append(userTurn("next"))
	require.Equal(t, 1, idx)

	turn, ok := s.Get(1)
	require.True(t, ok)
	require.Equal(t, "next", turn.User.Content)
	require.Equal(t, 1, turn.User.TurnIndex)
	require.Nil(t, turn.Assistant)
}

func TestCompleteTurn(t *testing.T) {
	s := NewStore()
	idx := s.Append(userTurn("question"))
	require.True(t, s.CompleteTurn(idx, NewMessage(RoleAssistant, "answer", 0), false))

	turn, _ := s.Last()
	require.True(t, turn.Complete())
	require.Equal(t, "answer", turn.Assistant.Content)

	require.False(t, s.CompleteTurn(5, NewMessage(RoleAssistant, "x", 0), false))
}

func TestReplaceUserSupersedesMessage(t *testing.T) {
	s := NewStore()
	idx := s.Append(completedTurn("orig", "resp"))
	origHash := mustGet(t, s, idx).User.ContentHash

	require.True(t, s.ReplaceUser(idx, NewMessage(RoleUser, "edited", 0)))
	turn := mustGet(t, s, idx)
	require.Equal(t, "edited", turn.User.Content)
	require.NotEqual(t, origHash, turn.User.ContentHash)
	require.Nil(t, turn.Assistant, "edit discards the stale response")
}

func TestTruncateAfter(t *testing.T) {
	s := NewStore()
	for _, c := range []string{"a", "b", "c", "d"} {
		s.Append(completedTurn(c, "resp "+c))
	}

	s.TruncateAfter(2)
	require.Equal(t, 2, s.Len())
	require.Equal(t, 1, s.Cursor())

	s.TruncateAfter(0)
	require.Equal(t, 0, s.Len())
	require.Equal(t, -1, s.Cursor())

	// Truncating past the end is a no-op.
	s.Append(completedTurn("x", "y"))
	s.TruncateAfter(9)
	require.Equal(t, 1, s.Len())
}

func TestFindByContentHashTieBreak(t *testing.T) {
	s := NewStore()
	s.Append(completedTurn("one", "r1"))
	s.Append(completedTurn("same", "r2"))
	s.Append(completedTurn("three", "r3"))
	s.Append(completedTurn("same", "r4"))

	// Duplicate content at indexes 1 and 3; cursor sits at 3. Resolution must
	// return the most recent occurrence strictly before the cursor.
	idx, err := s.FindByContentHash(HashContent("same"))
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	// An occurrence strictly before the cursor resolves normally.
	idx, err = s.FindByContentHash(HashContent("three"))
	require.NoError(t, err)
	require.Equal(t, 2, idx)

	// Content that only exists at the cursor itself does not resolve.
	s.Append(completedTurn("only-at-cursor", "r5"))
	_, err = s.FindByContentHash(HashContent("only-at-cursor"))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindByContentHash(HashContent("nowhere"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSerializeAndRestore(t *testing.T) {
	s := NewStore()
	s.SetSystem("be helpful")
	s.Append(completedTurn("hello", "hi"))
	s.Append(userTurn("pending"))

	entries := s.Serialize()
	require.Equal(t, []Entry{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "pending"},
	}, entries)

	restored, err := Restore(entries)
	require.NoError(t, err)
	require.Equal(t, 2, restored.Len())
	require.Equal(t, "be helpful", restored.System().Content)
	last, _ := restored.Last()
	require.Nil(t, last.Assistant)
}

func TestRestoreRejectsBadAlternation(t *testing.T) {
	_, err := Restore([]Entry{{Role: "assistant", Content: "orphan"}})
	require.Error(t, err)
}

func TestRestoreRejectsUnansweredUserMidHistory(t *testing.T) {
	_, err := Restore([]Entry{
		{Role: "user", Content: "first"},
		{Role: "user", Content: "second"},
	})
	require.Error(t, err)

	// An unanswered user entry in final position is a turn awaiting its
	// response and restores fine.
	s, err := Restore([]Entry{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "answer"},
		{Role: "user", Content: "pending"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
}

func TestTranscriptRoundTrip(t *testing.T) {
	db, err := OpenTranscript(filepath.Join(t.TempDir(), "transcript.db"))
	require.NoError(t, err)
	defer db.Close()

	entries := []Entry{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	}
	require.NoError(t, db.SaveSnapshot("session-1", entries))

	got, err := db.LoadSnapshot("session-1")
	require.NoError(t, err)
	require.Equal(t, entries, got)

	// A later snapshot replaces the earlier one.
	require.NoError(t, db.SaveSnapshot("session-1", entries[:1]))
	got, err = db.LoadSnapshot("session-1")
	require.NoError(t, err)
	require.Equal(t, entries[:1], got)

	got, err = db.LoadSnapshot("unknown")
	require.NoError(t, err)
	require.Empty(t, got)
}

func mustGet(t *testing.T, s *Store, i int) Turn {
	t.Helper()
	turn, ok := s.Get(i)
	require.True(t, ok)
	return turn
}
