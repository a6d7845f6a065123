package provider

import (
	"context"
	"errors"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/chatline-go/internal/logger"
)

// OpenAIStreamer streams chat completions from OpenAI or any
// OpenAI-compatible endpoint (set BaseURL for the latter).
type OpenAIStreamer struct {
	client *openai.Client
	model  string
}

// NewOpenAIStreamer creates an OpenAI-backed streamer.
func NewOpenAIStreamer(baseURL, apiKey, model string) *OpenAIStreamer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIStreamer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Stream implements Streamer.
func (s *OpenAIStreamer) Stream(ctx context.Context, messages []Message) (<-chan Chunk, error) {
	req := openai.ChatCompletionRequest{
		Model:    s.model,
		Stream:   true,
		Messages: toOpenAIMessages(messages),
	}
	st, err := s.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		defer st.Close()
		for {
			resp, err := st.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				logger.L.Warn("openai stream ended abnormally", "error", err)
				emit(ctx, out, Chunk{Err: err})
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if delta := resp.Choices[0].Delta.Content; delta != "" {
				if !emit(ctx, out, Chunk{Content: delta}) {
					return
				}
			}
		}
	}()
	return out, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}

// emit sends a chunk unless the context is done first. It reports whether the
// send happened.
func emit(ctx context.Context, out chan<- Chunk, c Chunk) bool {
	select {
	case out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
