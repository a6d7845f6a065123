package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/comigor/chatline-go/internal/logger"
)

// OllamaStreamer streams responses from a local Ollama server.
type OllamaStreamer struct {
	client *api.Client
	model  string
}

// NewOllamaStreamer creates an Ollama-backed streamer. An empty baseURL
// defaults to the standard local server address.
func NewOllamaStreamer(baseURL, model string) (*OllamaStreamer, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}
	return &OllamaStreamer{
		client: api.NewClient(parsed, http.DefaultClient),
		model:  model,
	}, nil
}

// Stream implements Streamer.
func (s *OllamaStreamer) Stream(ctx context.Context, messages []Message) (<-chan Chunk, error) {
	msgs := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}
	streaming := true
	req := &api.ChatRequest{
		Model:    s.model,
		Messages: msgs,
		Stream:   &streaming,
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		err := s.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			if resp.Message.Content == "" {
				return nil
			}
			if !emit(ctx, out, Chunk{Content: resp.Message.Content}) {
				return ctx.Err()
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.L.Warn("ollama stream ended abnormally", "error", err)
			emit(ctx, out, Chunk{Err: err})
		}
	}()
	return out, nil
}
