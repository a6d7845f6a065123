package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/comigor/chatline-go/internal/logger"
)

// AnthropicStreamer streams responses through the official Anthropic SDK.
type AnthropicStreamer struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicStreamer creates an Anthropic-backed streamer. The API key is
// required.
func NewAnthropicStreamer(baseURL, apiKey, model string) (*AnthropicStreamer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicStreamer{
		client: &client,
		model:  anthropic.Model(model),
	}, nil
}

// Stream implements Streamer.
func (s *AnthropicStreamer) Stream(ctx context.Context, messages []Message) (<-chan Chunk, error) {
	params := anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: 4096,
	}
	var msgs []anthropic.MessageParam
	var system []anthropic.TextBlockParam
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	params.Messages = msgs
	if len(system) > 0 {
		params.System = system
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		st := s.client.Messages.NewStreaming(ctx, params)
		for st.Next() {
			event := st.Current()
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch delta := ev.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if delta.Text != "" {
						if !emit(ctx, out, Chunk{Content: delta.Text}) {
							return
						}
					}
				}
			}
		}
		if err := st.Err(); err != nil {
			logger.L.Warn("anthropic stream ended abnormally", "error", err)
			emit(ctx, out, Chunk{Err: err})
		}
	}()
	return out, nil
}
