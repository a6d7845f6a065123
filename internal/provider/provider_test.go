package provider

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDispatchesByType(t *testing.T) {
	s, err := New(Config{Type: TypeOpenAI, APIKey: "k", Model: "gpt-4o"})
	require.NoError(t, err)
	require.IsType(t, &OpenAIStreamer{}, s)

	s, err = New(Config{Type: TypeAnthropic, APIKey: "k", Model: "claude-sonnet-4-5"})
	require.NoError(t, err)
	require.IsType(t, &AnthropicStreamer{}, s)

	s, err = New(Config{Type: TypeOllama, Model: "llama3.1"})
	require.NoError(t, err)
	require.IsType(t, &OllamaStreamer{}, s)
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(Config{Type: "carrier-pigeon"})
	require.Error(t, err)
}

func TestAnthropicRequiresKey(t *testing.T) {
	_, err := New(Config{Type: TypeAnthropic, Model: "claude-sonnet-4-5"})
	require.Error(t, err)
}

func TestOllamaRejectsBadURL(t *testing.T) {
	_, err := NewOllamaStreamer("://not-a-url", "llama3.1")
	require.Error(t, err)
}

func TestToOpenAIMessages(t *testing.T) {
	msgs := toOpenAIMessages([]Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	})
	require.Len(t, msgs, 2)
	require.Equal(t, "system", msgs[0].Role)
	require.Equal(t, "hi", msgs[1].Content)
}
