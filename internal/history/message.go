package history

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversational message. Messages are immutable once
// created; an edit produces a new Message that supersedes the old one at the
// same turn.
type Message struct {
	ID          string
	Role        Role
	Content     string
	ContentHash string
	TurnIndex   int
	CreatedAt   time.Time
}

// NewMessage creates an immutable message with its content hash precomputed.
func NewMessage(role Role, content string, turnIndex int) Message {
	return Message{
		ID:          uuid.NewString(),
		Role:        role,
		Content:     content,
		ContentHash: HashContent(content),
		TurnIndex:   turnIndex,
		CreatedAt:   time.Now(),
	}
}

// HashContent returns the content address of a message body. The hash
// identifies a specific message instance even after index drift caused by
// later edits.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Turn is one user/assistant exchange. A turn with a nil Assistant is awaiting
// its response. Partial marks an assistant fragment retained after an
// interrupted stream.
type Turn struct {
	User      Message
	Assistant *Message
	Partial   bool
}

// Complete reports whether the turn holds a finished assistant response.
func (t Turn) Complete() bool {
	return t.Assistant != nil && !t.Partial
}
