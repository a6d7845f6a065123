package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/qmuntal/stateless"

	"github.com/comigor/chatline-go/internal/history"
	"github.com/comigor/chatline-go/internal/logger"
	"github.com/comigor/chatline-go/internal/stream"
)

// FSM States
type FSMState stateless.State

var (
	StateIdle                FSMState = "Idle"
	StatePreflightValidating FSMState = "PreflightValidating"
	StateAnimatingRewind     FSMState = "AnimatingRewind"
	StateRestoringState      FSMState = "RestoringState"
	StateCommitted           FSMState = "Committed"
	StateReprocessing        FSMState = "ReprocessingMessage"
	StateDone                FSMState = "Done"               // Terminal: rewind fully applied
	StateFailedCommitted     FSMState = "FailedButCommitted" // Terminal: truncation held, regeneration failed
)

// FSM Triggers
type FSMTrigger stateless.Trigger

var (
	TriggerStart           FSMTrigger = "Start"
	TriggerValidated       FSMTrigger = "Validated"
	TriggerAnimated        FSMTrigger = "Animated"
	TriggerResolved        FSMTrigger = "Resolved"
	TriggerReprocess       FSMTrigger = "Reprocess"
	TriggerFinished        FSMTrigger = "Finished"
	TriggerFailed          FSMTrigger = "Failed"          // Pre-commit failure: unwind to Idle, history untouched
	TriggerReprocessFailed FSMTrigger = "ReprocessFailed" // Post-commit failure: truncation stands
)

// Checkpoint captures the rewind target before any mutation. Restoration
// re-resolves by content hash, never by the numeric offset, since offsets
// drift when history is truncated between capture and commit.
type Checkpoint struct {
	TargetHash string
	Cursor     int
}

// RewindEngine drives a single rewind through its state machine. The history
// store is only mutated inside the Committed state; every earlier state can
// fail back to Idle with the store untouched.
type RewindEngine struct {
	store     *history.Store
	coord     *stream.Coordinator
	reprocess func(ctx context.Context) error
	onCommit  func()
}

// NewRewindEngine creates an engine. reprocess regenerates the response of
// the now-current turn after truncation; onCommit runs once the truncation is
// applied (snapshot persistence hooks in here).
func NewRewindEngine(store *history.Store, coord *stream.Coordinator, reprocess func(ctx context.Context) error, onCommit func()) *RewindEngine {
	return &RewindEngine{store: store, coord: coord, reprocess: reprocess, onCommit: onCommit}
}

// Run executes one rewind.
func (e *RewindEngine) Run(ctx context.Context) error {
	// FSM context data
	type fsmContext struct {
		checkpoint Checkpoint
		promptLine string
		response   string
		resolved   int
		lastError  error
	}
	fsmCtx := &fsmContext{}

	fsm := stateless.NewStateMachine(StateIdle)

	fsm.Configure(StateIdle).
		Permit(TriggerStart, StatePreflightValidating)

	// State: PreflightValidating
	// Action: check that a qualifying turn exists and capture the checkpoint.
	fsm.Configure(StatePreflightValidating).
		OnEntry(func(ctx context.Context, args ...any) error {
			logger.L.Debug("rewind: preflight")
			last, ok := e.store.Last()
			if !ok {
				fsmCtx.lastError = ErrInsufficientHistory
				return fsm.FireCtx(ctx, TriggerFailed)
			}
			fsmCtx.checkpoint = Checkpoint{
				TargetHash: last.User.ContentHash,
				Cursor:     e.store.Cursor(),
			}
			fsmCtx.promptLine = FormatPrompt(last.User.Content)
			if last.Assistant != nil {
				fsmCtx.response = last.Assistant.Content
			}
			return fsm.FireCtx(ctx, TriggerValidated)
		}).
		Permit(TriggerValidated, StateAnimatingRewind).
		Permit(TriggerFailed, StateIdle)

	// State: AnimatingRewind
	// Action: play the erase sequence. Purely visual; a failure here unwinds
	// with the store untouched.
	fsm.Configure(StateAnimatingRewind).
		OnEntry(func(ctx context.Context, args ...any) error {
			if err := e.coord.PlayRewind(ctx, fsmCtx.promptLine, fsmCtx.response); err != nil {
				fsmCtx.lastError = err
				return fsm.FireCtx(ctx, TriggerFailed)
			}
			return fsm.FireCtx(ctx, TriggerAnimated)
		}).
		Permit(TriggerAnimated, StateRestoringState).
		Permit(TriggerFailed, StateIdle)

	// State: RestoringState
	// Action: re-resolve the checkpoint hash to a concrete turn index.
	fsm.Configure(StateRestoringState).
		OnEntry(func(ctx context.Context, args ...any) error {
			idx, err := e.resolve(fsmCtx.checkpoint)
			if err != nil {
				logger.L.Warn("rewind: target resolution failed", "hash", fsmCtx.checkpoint.TargetHash)
				fsmCtx.lastError = err
				return fsm.FireCtx(ctx, TriggerFailed)
			}
			fsmCtx.resolved = idx
			return fsm.FireCtx(ctx, TriggerResolved)
		}).
		Permit(TriggerResolved, StateCommitted).
		Permit(TriggerFailed, StateIdle)

	// State: Committed
	// Action: truncate. This is the single point where history changes; from
	// here on failures no longer unwind it.
	fsm.Configure(StateCommitted).
		OnEntry(func(ctx context.Context, args ...any) error {
			e.store.TruncateAfter(fsmCtx.resolved)
			logger.L.Info("rewind: committed", "boundary", fsmCtx.resolved, "remaining", e.store.Len())
			if e.onCommit != nil {
				e.onCommit()
			}
			if e.store.Len() == 0 {
				return fsm.FireCtx(ctx, TriggerFinished)
			}
			return fsm.FireCtx(ctx, TriggerReprocess)
		}).
		Permit(TriggerReprocess, StateReprocessing).
		Permit(TriggerFinished, StateDone)

	// State: ReprocessingMessage
	// Action: regenerate the response of the now-current turn through the
	// same streaming path a fresh send uses.
	fsm.Configure(StateReprocessing).
		OnEntry(func(ctx context.Context, args ...any) error {
			if err := e.reprocess(ctx); err != nil {
				fsmCtx.lastError = err
				return fsm.FireCtx(ctx, TriggerReprocessFailed)
			}
			return fsm.FireCtx(ctx, TriggerFinished)
		}).
		Permit(TriggerFinished, StateDone).
		Permit(TriggerReprocessFailed, StateFailedCommitted)

	if err := fsm.FireCtx(ctx, TriggerStart); err != nil {
		logger.L.Warn("rewind: FSM fire error", "error", err)
	}

	state, err := fsm.State(ctx)
	if err != nil {
		return fmt.Errorf("rewind FSM internal error: %w", err)
	}
	switch state {
	case StateDone:
		return nil
	case StateIdle, StateFailedCommitted:
		return fsmCtx.lastError
	}
	return fmt.Errorf("rewind FSM ended in an unexpected state: %v", state)
}

// resolve maps a checkpoint back to a turn index by content. An occurrence
// strictly before the captured cursor wins, so duplicated content rewinds to
// its earlier instance; otherwise the current turn itself qualifies as long
// as its content still hashes to the checkpoint.
func (e *RewindEngine) resolve(cp Checkpoint) (int, error) {
	if idx, err := e.store.FindByContentHash(cp.TargetHash); err == nil {
		return idx, nil
	}
	for i := e.store.Cursor(); i >= 0; i-- {
		if t, ok := e.store.Get(i); ok && t.User.ContentHash == cp.TargetHash {
			return i, nil
		}
	}
	return 0, ErrStateResolution
}

// FormatPrompt renders committed user text as its prompt line, with the
// terminating punctuation tripled: "hello" becomes "> hello...", "why?"
// becomes "> why???".
func FormatPrompt(text string) string {
	end := "."
	if strings.HasSuffix(text, "?") || strings.HasSuffix(text, "!") {
		end = text[len(text)-1:]
	}
	return "> " + strings.TrimRight(text, "?.!") + strings.Repeat(end, 3)
}
