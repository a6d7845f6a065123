package stream

import (
	"context"
	"strings"
	"time"

	"github.com/comigor/chatline-go/internal/anim"
	"github.com/comigor/chatline-go/internal/provider"
)

// Frame is ephemeral render state: the full visible text of the surface, the
// number of terminal rows it occupies at the current wrap width, and whether
// the frame is transient (participates in redraw accounting but never enters
// conversation history).
type Frame struct {
	Text      string
	Rows      int
	Transient bool
}

// Renderer consumes frames and owns the terminal width.
type Renderer interface {
	RenderFrame(Frame)
	Width() int
}

// Config holds the animation cadence and wrap settings. A WrapWidth of 0
// defers to the renderer's width.
type Config struct {
	WordDelay   time.Duration
	CharDelay   time.Duration
	DotInterval time.Duration
	MaxDots     int
	WrapWidth   int
}

// TurnOptions describes how one generation's visible surface is built.
type TurnOptions struct {
	// PromptLine is the full prompt line shown above the response, already
	// formatted ("> ..."). Empty means no prompt line and no waiting
	// indicator (the disabled loading path).
	PromptLine string
	// Replay reveals the prompt line word by word instead of all at once.
	Replay bool
	// Transient marks the prompt line as a loading placeholder that must not
	// be treated as committed content.
	Transient bool
}

// Coordinator arbitrates between the real chunk stream and the synthetic
// sources (fake forward/reverse streams, dot ticks) and emits every frame
// with a freshly recomputed row count. It is driven by the single logical
// operation in flight; it has no locking of its own.
type Coordinator struct {
	renderer Renderer
	cfg      Config
	base     string
}

// New creates a coordinator bound to a renderer.
func New(renderer Renderer, cfg Config) *Coordinator {
	return &Coordinator{renderer: renderer, cfg: cfg}
}

// SetBase installs static text (the preface panel) shown above every turn.
func (c *Coordinator) SetBase(text string) {
	if text != "" && !strings.HasSuffix(text, "\n\n") {
		text = strings.TrimRight(text, "\n") + "\n\n"
	}
	c.base = text
}

// Base returns the current static text.
func (c *Coordinator) Base() string {
	return c.base
}

// Show emits a frame for arbitrary text. Used to repaint the committed
// conversation after an operation completes or unwinds.
func (c *Coordinator) Show(text string, transient bool) Frame {
	return c.emit(text, transient)
}

func (c *Coordinator) width() int {
	if c.cfg.WrapWidth > 0 {
		return c.cfg.WrapWidth
	}
	return c.renderer.Width()
}

func (c *Coordinator) emit(text string, transient bool) Frame {
	f := Frame{
		Text:      text,
		Rows:      RowCount(text, c.width()),
		Transient: transient,
	}
	c.renderer.RenderFrame(f)
	return f
}

// StreamTurn runs one generation: it reveals the prompt line (optionally word
// by word), cycles the waiting indicator until the first real chunk arrives,
// then streams the response. It returns the raw accumulated response text;
// prompt and indicator text never leak into it.
//
// Race policy: once any real chunk is observed the real source wins
// unconditionally. A fake stream still in flight is force-completed to its
// final text rather than interleaved, and the indicator stops between ticks.
func (c *Coordinator) StreamTurn(ctx context.Context, opts TurnOptions, chunks <-chan provider.Chunk) (string, error) {
	var (
		pending   []provider.Chunk
		closed    bool
		firstSeen bool
	)

	// peek waits up to d for the next animation step while watching for the
	// first real chunk.
	peek := func(d time.Duration) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case ch, ok := <-chunks:
			if !ok {
				closed = true
				return
			}
			pending = append(pending, ch)
			firstSeen = true
		case <-timer.C:
		case <-ctx.Done():
		}
	}

	line := opts.PromptLine
	headerLine := line

	// Prompt phase. The prompt marker is a fixed prefix; only the message
	// body is revealed word by word.
	if line != "" {
		if opts.Replay {
			prefix, body := "", line
			if strings.HasPrefix(line, "> ") {
				prefix, body = "> ", line[2:]
			}
			frames := anim.ForwardStream(body)
			for i, f := range frames {
				last := i == len(frames)-1
				if firstSeen || closed {
					f = body
					last = true
				}
				c.emit(c.base+prefix+f, opts.Transient)
				if last {
					break
				}
				peek(c.cfg.WordDelay)
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
			}
		} else {
			c.emit(c.base+line, opts.Transient)
		}
	}

	// Indicator phase. Cancellation is cooperative: the animator is only ever
	// stopped between ticks.
	if line != "" && !firstSeen && !closed {
		stripped := strings.TrimRight(line, "?.!")
		dots := anim.NewDotAnimatorFor(line, c.cfg.MaxDots)
		ticker := time.NewTicker(c.cfg.DotInterval)
	waiting:
		for {
			select {
			case ch, ok := <-chunks:
				if !ok {
					closed = true
					break waiting
				}
				pending = append(pending, ch)
				firstSeen = true
				break waiting
			case <-ticker.C:
				c.emit(c.base+stripped+dots.Tick(), true)
			case <-ctx.Done():
				ticker.Stop()
				return "", ctx.Err()
			}
		}
		ticker.Stop()
		// The last-shown frame is frozen as the header.
		if d := dots.Current(); d != "" {
			headerLine = stripped + d
		}
	}

	// Fixed spacing contract: prompt line, blank line, response.
	header := c.base
	if line != "" {
		header += headerLine + "\n\n"
	}

	// Response phase.
	var b strings.Builder
	deliver := func(ch provider.Chunk) error {
		if ch.Err != nil {
			return ch.Err
		}
		b.WriteString(ch.Content)
		c.emit(header+b.String(), false)
		return nil
	}
	for _, ch := range pending {
		if err := deliver(ch); err != nil {
			return b.String(), err
		}
	}
	for !closed {
		select {
		case ch, ok := <-chunks:
			if !ok {
				closed = true
				break
			}
			if err := deliver(ch); err != nil {
				return b.String(), err
			}
		case <-ctx.Done():
			return b.String(), ctx.Err()
		}
	}
	return b.String(), nil
}

// PlayRewind plays the visual erase sequence: the response disappears word
// group by word group, then the preserved prompt collapses its trailing
// punctuation and erases. Every frame is transient; history is never touched
// from here, so an animation glitch cannot corrupt state.
func (c *Coordinator) PlayRewind(ctx context.Context, promptLine, response string) error {
	sep := ""
	if promptLine != "" {
		sep = "\n\n"
	}
	for _, f := range anim.ReverseStream(response) {
		if err := c.pace(ctx, c.base+promptLine+sep+f); err != nil {
			return err
		}
	}
	if promptLine != "" {
		for _, f := range anim.PunctuationFrames(promptLine) {
			if err := c.pace(ctx, c.base+f); err != nil {
				return err
			}
		}
		bare := strings.TrimRight(promptLine, "?.!")
		for _, f := range anim.ReverseStream(bare) {
			if err := c.pace(ctx, c.base+f); err != nil {
				return err
			}
		}
	}
	c.emit(c.base, true)
	return nil
}

func (c *Coordinator) pace(ctx context.Context, text string) error {
	c.emit(text, true)
	timer := time.NewTimer(c.cfg.CharDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
