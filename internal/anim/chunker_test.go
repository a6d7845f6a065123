package anim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForwardStreamPrefixes(t *testing.T) {
	frames := ForwardStream("Initializing AI assistant...")
	require.Equal(t, []string{
		"Initializing",
		"Initializing AI",
		"Initializing AI assistant...",
	}, frames)
}

func TestForwardStreamProperties(t *testing.T) {
	texts := []string{
		"hello",
		"hello world",
		"  leading space",
		"trailing space ",
		"multiple   inner    spaces",
		"unicode wörter héllo",
	}
	for _, text := range texts {
		frames := ForwardStream(text)
		require.NotEmpty(t, frames, text)
		require.Equal(t, text, frames[len(frames)-1], "final frame must reproduce the text exactly")
		for i := 1; i < len(frames); i++ {
			require.Greater(t, len(frames[i]), len(frames[i-1]), "frames must grow strictly")
			require.True(t, strings.HasPrefix(frames[i], frames[i-1]), "each frame extends the previous")
		}
		for _, f := range frames[:len(frames)-1] {
			require.True(t, strings.HasPrefix(text, f))
		}
	}
}

func TestForwardStreamEmpty(t *testing.T) {
	require.Nil(t, ForwardStream(""))
}

func TestReverseStreamShrinksToEmpty(t *testing.T) {
	frames := ReverseStream("one two three")
	require.Equal(t, []string{"one two", "one", ""}, frames)
}

func TestReverseStreamSingleWord(t *testing.T) {
	require.Equal(t, []string{""}, ReverseStream("word"))
	require.Empty(t, ReverseStream(""))
	require.Empty(t, ReverseStream("   "))
}

func TestPunctuationFrames(t *testing.T) {
	require.Equal(t, []string{"> hello..", "> hello."}, PunctuationFrames("> hello..."))
	require.Equal(t, []string{"> really??", "> really?"}, PunctuationFrames("> really???"))
	require.Nil(t, PunctuationFrames("> no terminator"))
}

func TestDotAnimatorCycle(t *testing.T) {
	d := NewDotAnimator(3)
	require.Equal(t, "", d.Current())

	var got []string
	for i := 0; i < 7; i++ {
		got = append(got, d.Tick())
	}
	require.Equal(t, []string{".", "..", "...", ".", "..", "...", "."}, got)
	require.Equal(t, ".", d.Current())

	d.Reset()
	require.Equal(t, "", d.Current())
	require.Equal(t, ".", d.Tick())
}

func TestDotAnimatorBadMax(t *testing.T) {
	d := NewDotAnimator(0)
	d.Tick()
	d.Tick()
	d.Tick()
	require.Equal(t, "...", d.Current())
}
