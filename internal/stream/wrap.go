// Package stream presents one uniform append-only text surface to the
// renderer regardless of source (real network chunk, fake forward/reverse
// stream, or dot tick) and keeps the terminal row accounting for that surface
// exact, so the caller can reposition and clear without tearing.
package stream

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// WrapLines splits text into the display lines a terminal of the given width
// would produce: greedy word wrap per logical line, with words wider than the
// terminal hard-split at the width boundary. Wrapping is cell-accurate for
// double-width runes.
func WrapLines(text string, width int) []string {
	if width <= 0 {
		return strings.Split(text, "\n")
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

// RowCount returns the number of terminal rows text occupies at the given
// width. Recomputing it for the same text and width is idempotent.
func RowCount(text string, width int) int {
	return len(WrapLines(text, width))
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	var (
		rows    []string
		current []string
		used    int
	)
	flush := func() {
		if len(current) > 0 {
			rows = append(rows, strings.Join(current, " "))
			current = current[:0]
			used = 0
		}
	}
	for _, word := range strings.Fields(line) {
		w := runewidth.StringWidth(word)
		if w > width {
			flush()
			rows = append(rows, splitLongWord(word, width)...)
			continue
		}
		need := w
		if used > 0 {
			need++
		}
		if used+need > width {
			flush()
		}
		current = append(current, word)
		if used > 0 {
			used++
		}
		used += w
	}
	flush()
	if len(rows) == 0 {
		return []string{""}
	}
	return rows
}

// splitLongWord hard-splits a word that exceeds the terminal width into
// width-sized cell chunks.
func splitLongWord(word string, width int) []string {
	var chunks []string
	var b strings.Builder
	used := 0
	for _, r := range word {
		w := runewidth.RuneWidth(r)
		if used+w > width {
			chunks = append(chunks, b.String())
			b.Reset()
			used = 0
		}
		b.WriteRune(r)
		used += w
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}
