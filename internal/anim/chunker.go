// Package anim produces the synthetic frame sequences used to mask response
// latency: paced word-by-word reveals, reverse erasure, and the dot-cycle
// waiting indicator. Everything here is a pure function of its inputs, so a
// sequence can be restarted for retries without shared state.
package anim

import (
	"strings"
	"unicode"
)

// ForwardStream returns the strictly growing word-boundary prefixes of text,
// ending exactly at the full text. Pacing is owned by the caller, one frame
// per word delay.
func ForwardStream(text string) []string {
	if text == "" {
		return nil
	}
	var frames []string
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inWord {
				frames = append(frames, text[:i])
				inWord = false
			}
		} else {
			inWord = true
		}
	}
	return append(frames, text)
}

// ReverseStream returns the shrinking remainders of text produced by erasing
// one trailing word group per frame, ending at the empty string.
func ReverseStream(text string) []string {
	var frames []string
	rest := text
	for {
		rest = strings.TrimRightFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}
		if i := strings.LastIndexFunc(rest, unicode.IsSpace); i >= 0 {
			rest = strings.TrimRightFunc(rest[:i], unicode.IsSpace)
		} else {
			rest = ""
		}
		frames = append(frames, rest)
	}
	return frames
}

// PunctuationFrames returns the shrinking trailing-punctuation frames for a
// preserved prompt line: the terminator collapses from its displayed run down
// to a single character before the line clears.
func PunctuationFrames(prompt string) []string {
	base := strings.TrimRight(prompt, "?.!")
	if base == prompt {
		return nil
	}
	ch := prompt[len(prompt)-1:]
	count := len(prompt) - len(base)
	var frames []string
	for i := count - 1; i >= 1; i-- {
		frames = append(frames, base+strings.Repeat(ch, i))
	}
	return frames
}
