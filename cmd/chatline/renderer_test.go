package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/chatline-go/internal/stream"
)

func renderedFrame(text string, width int) stream.Frame {
	return stream.Frame{Text: text, Rows: stream.RowCount(text, width)}
}

func TestRenderFramePrintsExactlyAccountedRows(t *testing.T) {
	var buf bytes.Buffer
	r := &terminalRenderer{out: &buf, width: 7}

	// Word wrap can use more rows than raw width-boundary wrapping would
	// ("aaaa bbbb cccc" at width 7 is three word-wrapped rows but only two
	// hard-wrapped ones). The printed text must occupy the accounted rows.
	f := renderedFrame("aaaa bbbb cccc", 7)
	require.Equal(t, 3, f.Rows)
	r.RenderFrame(f)
	require.Equal(t, f.Rows, strings.Count(buf.String(), "\n"))
}

func TestRenderFrameRepaintAscendsPreviousRows(t *testing.T) {
	var buf bytes.Buffer
	r := &terminalRenderer{out: &buf, width: 7}

	r.RenderFrame(renderedFrame("aaaa bbbb cccc", 7))
	buf.Reset()

	r.RenderFrame(renderedFrame("short", 7))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\x1b[3A"), "repaint must move up exactly the previous frame's rows, got %q", out)
	require.Equal(t, 1, strings.Count(out, "\n"))
}

func TestRenderFrameWrapWidthOverridesTerminalWidth(t *testing.T) {
	var buf bytes.Buffer
	r := &terminalRenderer{out: &buf, width: 80, wrapWidth: 5}

	f := stream.Frame{Text: "one two three", Rows: stream.RowCount("one two three", 5)}
	r.RenderFrame(f)
	require.Equal(t, f.Rows, strings.Count(buf.String(), "\n"))
}

func TestNewRegionResetsRepaintOrigin(t *testing.T) {
	var buf bytes.Buffer
	r := &terminalRenderer{out: &buf, width: 7}

	r.RenderFrame(renderedFrame("aaaa bbbb cccc", 7))
	r.NewRegion()
	buf.Reset()

	r.RenderFrame(renderedFrame("fresh", 7))
	require.False(t, strings.Contains(buf.String(), "\x1b[3A"))
}
