package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/comigor/chatline-go/internal/config"
	"github.com/comigor/chatline-go/internal/history"
	"github.com/comigor/chatline-go/internal/logger"
	"github.com/comigor/chatline-go/internal/provider"
	"github.com/comigor/chatline-go/internal/stream"
)

// Controller is the public surface of the conversation core. Exactly one
// logical operation runs at a time; a second request while one is in flight
// gets ErrBusy immediately and is never queued.
type Controller struct {
	mu       sync.Mutex
	store    *history.Store
	coord    *stream.Coordinator
	streamer provider.Streamer
	cfg      config.ConversationConfig
	engine   *RewindEngine

	transcript *history.TranscriptDB
	sessionID  string
	preface    string
}

// New creates a controller bound to a history store, a frame coordinator and
// a provider streamer.
func New(store *history.Store, coord *stream.Coordinator, streamer provider.Streamer, cfg config.ConversationConfig) *Controller {
	c := &Controller{
		store:    store,
		coord:    coord,
		streamer: streamer,
		cfg:      cfg,
	}
	c.engine = NewRewindEngine(store, coord, c.regenerateCurrent, c.persist)
	if cfg.SystemPrompt != "" {
		store.SetSystem(cfg.SystemPrompt)
	}
	return c
}

// WithTranscript attaches snapshot persistence. Every committed history
// change is saved under the session ID.
func (c *Controller) WithTranscript(db *history.TranscriptDB, sessionID string) *Controller {
	c.transcript = db
	c.sessionID = sessionID
	return c
}

// SetPreface installs static text shown above the conversation until the
// first user message scrolls it away.
func (c *Controller) SetPreface(text string) {
	c.preface = text
	c.coord.SetBase(text)
}

// Store exposes the underlying history for inspection and snapshot restore.
func (c *Controller) Store() *history.Store {
	return c.store
}

// Send appends a user turn and streams its response.
func (c *Controller) Send(ctx context.Context, text string) error {
	if !c.mu.TryLock() {
		return ErrBusy
	}
	defer c.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty message", ErrValidation)
	}
	if last, ok := c.store.Last(); ok && last.Assistant == nil {
		return fmt.Errorf("%w: previous turn is still awaiting its response", ErrValidation)
	}
	if c.preface != "" {
		c.preface = ""
		c.coord.SetBase("")
	}

	idx := c.store.Append(history.Turn{User: history.NewMessage(history.RoleUser, text, 0)})
	return c.generate(ctx, idx, stream.TurnOptions{PromptLine: "> " + text})
}

// Intro runs the silent introduction: the given text is sent as the first
// user turn, but the visible surface shows only the loading placeholder (or
// nothing at all when a preface is active).
func (c *Controller) Intro(ctx context.Context, text string) error {
	if !c.mu.TryLock() {
		return ErrBusy
	}
	defer c.mu.Unlock()

	if text == "" {
		return fmt.Errorf("%w: empty intro message", ErrValidation)
	}
	if c.store.Len() != 0 {
		return fmt.Errorf("%w: intro requires an empty conversation", ErrValidation)
	}

	idx := c.store.Append(history.Turn{User: history.NewMessage(history.RoleUser, text, 0)})
	opts := stream.TurnOptions{}
	if c.preface == "" && c.cfg.LoadingMessage != "" {
		opts = stream.TurnOptions{
			PromptLine: "> " + c.cfg.LoadingMessage,
			Replay:     true,
			Transient:  true,
		}
	}
	return c.generate(ctx, idx, opts)
}

// Edit supersedes the current turn's user message and regenerates its
// response, replaying the new prompt word by word.
func (c *Controller) Edit(ctx context.Context, newText string) error {
	if !c.mu.TryLock() {
		return ErrBusy
	}
	defer c.mu.Unlock()

	newText = strings.TrimSpace(newText)
	if newText == "" {
		return fmt.Errorf("%w: empty message", ErrValidation)
	}
	idx := c.store.Cursor()
	if idx < 0 {
		return ErrInsufficientHistory
	}
	c.store.ReplaceUser(idx, history.NewMessage(history.RoleUser, newText, 0))
	return c.generate(ctx, idx, stream.TurnOptions{PromptLine: "> " + newText, Replay: true})
}

// Retry discards the current turn's response and regenerates it, replaying
// the unchanged prompt.
func (c *Controller) Retry(ctx context.Context) error {
	if !c.mu.TryLock() {
		return ErrBusy
	}
	defer c.mu.Unlock()
	return c.regenerateCurrent(ctx)
}

// Rewind erases the current exchange visually, truncates history at the
// re-resolved target and regenerates the response of the turn that becomes
// current.
func (c *Controller) Rewind(ctx context.Context) error {
	if !c.mu.TryLock() {
		return ErrBusy
	}
	defer c.mu.Unlock()
	return c.engine.Run(ctx)
}

// regenerateCurrent re-streams the response of the current turn. It is both
// the retry path and the rewind engine's reprocessing step.
func (c *Controller) regenerateCurrent(ctx context.Context) error {
	last, ok := c.store.Last()
	if !ok {
		return ErrInsufficientHistory
	}
	idx := c.store.Cursor()
	c.store.ReplaceUser(idx, last.User)
	return c.generate(ctx, idx, stream.TurnOptions{PromptLine: "> " + last.User.Content, Replay: true})
}

// generate streams one response for the turn at idx and commits the outcome.
// On an abnormal end the partial content is retained as a partial turn and
// the error surfaces as ErrStreamInterrupted.
func (c *Controller) generate(ctx context.Context, idx int, opts stream.TurnOptions) error {
	ch, err := c.streamer.Stream(ctx, c.providerMessages())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStreamInterrupted, err)
	}

	raw, err := c.coord.StreamTurn(ctx, opts, ch)
	if err != nil {
		if raw != "" {
			c.store.CompleteTurn(idx, history.NewMessage(history.RoleAssistant, raw, 0), true)
			c.persist()
		}
		logger.L.Warn("response stream interrupted", "turn", idx, "partial_len", len(raw), "error", err)
		return fmt.Errorf("%w: %v", ErrStreamInterrupted, err)
	}

	c.store.CompleteTurn(idx, history.NewMessage(history.RoleAssistant, raw, 0), false)
	c.persist()
	return nil
}

func (c *Controller) providerMessages() []provider.Message {
	entries := c.store.Serialize()
	out := make([]provider.Message, 0, len(entries))
	for _, e := range entries {
		out = append(out, provider.Message{Role: e.Role, Content: e.Content})
	}
	return out
}

func (c *Controller) persist() {
	if c.transcript == nil {
		return
	}
	if err := c.transcript.SaveSnapshot(c.sessionID, c.store.Serialize()); err != nil {
		logger.L.Warn("transcript snapshot failed", "session", c.sessionID, "error", err)
	}
}
