package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/comigor/chatline-go/internal/stream"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// terminalRenderer draws frames in place: each frame repaints the current
// exchange's region, using the previous frame's row count to reposition the
// cursor. Text is printed pre-wrapped at the same width the coordinator uses
// for its row accounting, so the rows on screen always equal Frame.Rows and
// the repaint never ascends into earlier conversation. Styling never changes
// cell widths.
type terminalRenderer struct {
	out       io.Writer
	width     int
	wrapWidth int
	lastRows  int
}

// newTerminalRenderer measures the terminal. A positive wrapWidth pins the
// wrap column; zero defers to the measured width.
func newTerminalRenderer(wrapWidth int) *terminalRenderer {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	return &terminalRenderer{out: os.Stdout, width: width, wrapWidth: wrapWidth}
}

// Width implements stream.Renderer.
func (r *terminalRenderer) Width() int {
	return r.width
}

func (r *terminalRenderer) effectiveWidth() int {
	if r.wrapWidth > 0 {
		return r.wrapWidth
	}
	return r.width
}

// RenderFrame implements stream.Renderer.
func (r *terminalRenderer) RenderFrame(f stream.Frame) {
	if r.lastRows > 0 {
		fmt.Fprintf(r.out, "\x1b[%dA", r.lastRows)
	}
	fmt.Fprint(r.out, "\r\x1b[J")
	lines := stream.WrapLines(f.Text, r.effectiveWidth())
	for i, line := range lines {
		lines[i] = stylize(line)
	}
	fmt.Fprintln(r.out, strings.Join(lines, "\n"))
	r.lastRows = f.Rows
}

// NewRegion starts a fresh drawing region below everything already printed.
// Called when a new exchange begins; edit, retry and rewind keep repainting
// the current region instead.
func (r *terminalRenderer) NewRegion() {
	r.lastRows = 0
}

func stylize(line string) string {
	if strings.HasPrefix(line, "> ") {
		return promptStyle.Render(line)
	}
	return line
}
