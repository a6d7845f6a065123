package stream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapLinesGreedy(t *testing.T) {
	require.Equal(t, []string{"hello", "world"}, WrapLines("hello world", 5))
	require.Equal(t, []string{"aa bb", "cc"}, WrapLines("aa bb cc", 5))
}

func TestWrapLinesZeroWidthPassesThrough(t *testing.T) {
	require.Equal(t, []string{"a long unwrapped line", "second"}, WrapLines("a long unwrapped line\nsecond", 0))
}

func TestWrapLinesHardSplitsLongWords(t *testing.T) {
	require.Equal(t, []string{"abcd", "efgh", "ij"}, WrapLines("abcdefghij", 4))
}

func TestWrapLinesDoubleWidthRunes(t *testing.T) {
	require.Equal(t, []string{"日本", "語"}, WrapLines("日本語", 4))
}

func TestRowCount(t *testing.T) {
	require.Equal(t, 1, RowCount("", 10))
	require.Equal(t, 2, RowCount("a\nb", 10))
	require.Equal(t, 3, RowCount("one two three", 5))

	// Recomputation is idempotent.
	text := "the quick brown fox jumps over the lazy dog"
	first := RowCount(text, 12)
	require.Equal(t, first, RowCount(text, 12))
}
