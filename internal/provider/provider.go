// Package provider implements the streaming collaborator: given the prior
// messages it produces a stream of chunk events, terminated by completion or
// error. Each supported backend satisfies the same Streamer interface, so the
// conversation core stays provider-agnostic.
package provider

import (
	"context"
	"fmt"
)

// Message is the provider-agnostic role/content pair sent with a request.
type Message struct {
	Role    string
	Content string
}

// Chunk is one event of a response stream. A chunk with a non-nil Err is
// terminal; a clean stream ends by closing the channel.
type Chunk struct {
	Content string
	Err     error
}

// Streamer produces a chunk stream from a message list. The returned channel
// is closed when the stream ends. Timeout and network retry policy belong to
// the implementation, not to the conversation core.
type Streamer interface {
	Stream(ctx context.Context, messages []Message) (<-chan Chunk, error)
}

// Type identifies a provider implementation.
type Type string

const (
	TypeOpenAI    Type = "openai"
	TypeAnthropic Type = "anthropic"
	TypeOllama    Type = "ollama"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    Type
	BaseURL string
	APIKey  string
	Model   string
}

// New creates a streamer based on configuration.
func New(cfg Config) (Streamer, error) {
	switch cfg.Type {
	case TypeOpenAI:
		return NewOpenAIStreamer(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case TypeAnthropic:
		return NewAnthropicStreamer(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case TypeOllama:
		return NewOllamaStreamer(cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}
