package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/comigor/chatline-go/internal/config"
	"github.com/comigor/chatline-go/internal/conversation"
	"github.com/comigor/chatline-go/internal/history"
	"github.com/comigor/chatline-go/internal/logger"
	"github.com/comigor/chatline-go/internal/provider"
	"github.com/comigor/chatline-go/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Logging.Level)

	streamer, err := provider.New(provider.Config{
		Type:    provider.Type(cfg.Provider.Type),
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Model:   cfg.Provider.Model,
	})
	if err != nil {
		logger.L.Error("failed to create provider", "error", err)
		os.Exit(1)
	}

	sessionID := cfg.History.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	store := history.NewStore()
	var transcript *history.TranscriptDB
	if cfg.History.DBPath != "" {
		transcript, err = history.OpenTranscript(cfg.History.DBPath)
		if err != nil {
			logger.L.Error("failed to open transcript db", "error", err)
			os.Exit(1)
		}
		defer transcript.Close()

		// A configured session ID means "resume that session".
		if cfg.History.SessionID != "" {
			if entries, err := transcript.LoadSnapshot(sessionID); err != nil {
				logger.L.Warn("failed to load session snapshot", "session", sessionID, "error", err)
			} else if len(entries) > 0 {
				restored, err := history.Restore(entries)
				if err != nil {
					logger.L.Warn("stored snapshot is invalid, starting fresh", "session", sessionID, "error", err)
				} else {
					store = restored
				}
			}
		}
	}

	renderer := newTerminalRenderer(cfg.Conversation.WrapWidth)
	coord := stream.New(renderer, stream.Config{
		WordDelay:   cfg.Conversation.WordDelay(),
		CharDelay:   cfg.Conversation.CharDelay(),
		DotInterval: cfg.Conversation.DotInterval(),
		MaxDots:     cfg.Conversation.MaxDots(),
		WrapWidth:   cfg.Conversation.WrapWidth,
	})

	ctrl := conversation.New(store, coord, streamer, cfg.Conversation)
	if transcript != nil {
		ctrl.WithTranscript(transcript, sessionID)
	}
	if cfg.Conversation.Preface != "" {
		panel := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
		ctrl.SetPreface(panel.Render(cfg.Conversation.Preface))
	}

	// Repaint the tail of a resumed session so edit/retry/rewind have a
	// visible exchange to work against.
	if turn, ok := store.Last(); ok {
		text := conversation.FormatPrompt(turn.User.Content)
		if turn.Assistant != nil {
			text += "\n\n" + turn.Assistant.Content
		}
		coord.Show(text, false)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Conversation.IntroMessage != "" && store.Len() == 0 {
		renderer.NewRegion()
		if err := ctrl.Intro(ctx, cfg.Conversation.IntroMessage); err != nil {
			reportError(renderer, err)
		}
	}

	repl(ctx, ctrl, renderer)
}

func repl(ctx context.Context, ctrl *conversation.Controller, renderer *terminalRenderer) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// Replace the echoed input with the rendered exchange.
		fmt.Print("\x1b[2A\r\x1b[J")

		var err error
		switch {
		case line == "/quit" || line == "/exit":
			return
		case line == "/retry":
			err = ctrl.Retry(ctx)
		case line == "/rewind":
			err = ctrl.Rewind(ctx)
		case strings.HasPrefix(line, "/edit "):
			err = ctrl.Edit(ctx, strings.TrimPrefix(line, "/edit "))
		case strings.HasPrefix(line, "/"):
			fmt.Println(errorStyle.Render("commands: /edit <message>, /retry, /rewind, /quit"))
			renderer.NewRegion()
			continue
		default:
			renderer.NewRegion()
			err = ctrl.Send(ctx, line)
		}
		if err != nil {
			reportError(renderer, err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func reportError(renderer *terminalRenderer, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, conversation.ErrInsufficientHistory):
		msg = "nothing to go back to"
	case errors.Is(err, conversation.ErrBusy):
		msg = "still working on the previous request"
	case errors.Is(err, conversation.ErrStreamInterrupted):
		msg = "response interrupted; /retry to try again"
	}
	fmt.Println(errorStyle.Render(msg))
	renderer.NewRegion()
}
