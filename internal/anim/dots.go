package anim

import "strings"

// DotAnimator produces the bounded, cycling waiting indicator. Each Tick
// advances the dot count from 1 up to the configured maximum, then wraps back
// to 1. The caller drives ticks on its own cadence and stops cooperatively
// when the first real chunk arrives.
type DotAnimator struct {
	char string
	max  int
	n    int
}

// NewDotAnimator creates an animator capped at max dots. A max below 1 falls
// back to 3, matching the classic three-dot ellipsis.
func NewDotAnimator(max int) *DotAnimator {
	if max < 1 {
		max = 3
	}
	return &DotAnimator{char: ".", max: max}
}

// NewDotAnimatorFor creates an animator whose indicator character follows the
// prompt's terminator: a prompt ending in "?" or "!" keeps that character,
// anything else animates periods.
func NewDotAnimatorFor(prompt string, max int) *DotAnimator {
	d := NewDotAnimator(max)
	if strings.HasSuffix(prompt, "?") || strings.HasSuffix(prompt, "!") {
		d.char = prompt[len(prompt)-1:]
	}
	return d
}

// Tick advances the cycle and returns the next indicator string.
func (d *DotAnimator) Tick() string {
	d.n = d.n%d.max + 1
	return strings.Repeat(d.char, d.n)
}

// Current returns the last indicator returned by Tick, or the empty string
// before the first tick.
func (d *DotAnimator) Current() string {
	return strings.Repeat(d.char, d.n)
}

// Reset rewinds the cycle to its initial state.
func (d *DotAnimator) Reset() {
	d.n = 0
}
