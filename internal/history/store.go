// Package history holds the ordered, content-addressed conversation record.
// The store grows only by append and shrinks only by truncation; transient
// animation text never enters it.
package history

import "errors"

// ErrNotFound is returned when a content hash resolves to no qualifying turn.
var ErrNotFound = errors.New("history: content hash not found")

// Store is an append-only ordered sequence of turns plus a cursor pointing at
// the current (most recent) turn. An optional system message precedes the
// turns without occupying an index.
type Store struct {
	system *Message
	turns  []Turn
}

// NewStore creates an empty history.
func NewStore() *Store {
	return &Store{}
}

// SetSystem installs the single optional system message.
func (s *Store) SetSystem(content string) {
	if content == "" {
		s.system = nil
		return
	}
	m := NewMessage(RoleSystem, content, -1)
	s.system = &m
}

// System returns the system message, or nil.
func (s *Store) System() *Message {
	return s.system
}

// Len returns the number of turns.
func (s *Store) Len() int {
	return len(s.turns)
}

// Cursor returns the index of the current turn, or -1 when the history is
// empty.
func (s *Store) Cursor() int {
	return len(s.turns) - 1
}

// Append adds a turn at the end and returns its index. Appending is the only
// way to add turns.
func (s *Store) Append(t Turn) int {
	idx := len(s.turns)
	t.User.TurnIndex = idx
	if t.Assistant != nil {
		t.Assistant.TurnIndex = idx
	}
	s.turns = append(s.turns, t)
	return idx
}

// Get returns the turn at index.
func (s *Store) Get(index int) (Turn, bool) {
	if index < 0 || index >= len(s.turns) {
		return Turn{}, false
	}
	return s.turns[index], true
}

// Last returns the current turn.
func (s *Store) Last() (Turn, bool) {
	return s.Get(s.Cursor())
}

// CompleteTurn attaches the assistant response to the turn at index. Partial
// marks content retained from an interrupted stream.
func (s *Store) CompleteTurn(index int, assistant Message, partial bool) bool {
	if index < 0 || index >= len(s.turns) {
		return false
	}
	assistant.TurnIndex = index
	s.turns[index].Assistant = &assistant
	s.turns[index].Partial = partial
	return true
}

// ReplaceUser supersedes the user message of the turn at index with a new
// message instance and discards any assistant response, leaving the turn
// awaiting regeneration.
func (s *Store) ReplaceUser(index int, user Message) bool {
	if index < 0 || index >= len(s.turns) {
		return false
	}
	user.TurnIndex = index
	s.turns[index].User = user
	s.turns[index].Assistant = nil
	s.turns[index].Partial = false
	return true
}

// TruncateAfter removes every turn with index >= boundary.
func (s *Store) TruncateAfter(boundary int) {
	if boundary < 0 {
		boundary = 0
	}
	if boundary >= len(s.turns) {
		return
	}
	s.turns = s.turns[:boundary]
}

// FindByContentHash resolves a user-message content hash to a turn index,
// returning the most recent occurrence strictly before the current cursor.
// That tie-break makes duplicate content resolve deterministically to the
// earlier instance rather than the turn currently being rewound.
func (s *Store) FindByContentHash(hash string) (int, error) {
	for i := s.Cursor() - 1; i >= 0; i-- {
		if s.turns[i].User.ContentHash == hash {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

// Entry is the serialized form of one message: role and content only.
// Transient animation state is never part of a snapshot.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Serialize flattens the history into an ordered role/content list suitable
// for the persistence collaborator and for provider requests.
func (s *Store) Serialize() []Entry {
	var out []Entry
	if s.system != nil {
		out = append(out, Entry{Role: string(RoleSystem), Content: s.system.Content})
	}
	for _, t := range s.turns {
		out = append(out, Entry{Role: string(RoleUser), Content: t.User.Content})
		if t.Assistant != nil {
			out = append(out, Entry{Role: string(RoleAssistant), Content: t.Assistant.Content})
		}
	}
	return out
}

// Restore rebuilds a store from a serialized snapshot, enforcing the
// alternation invariant: an optional leading system message, then
// user/assistant pairs in order.
func Restore(entries []Entry) (*Store, error) {
	s := NewStore()
	i := 0
	if len(entries) > 0 && entries[0].Role == string(RoleSystem) {
		s.SetSystem(entries[0].Content)
		i = 1
	}
	for i < len(entries) {
		if entries[i].Role != string(RoleUser) {
			return nil, errors.New("history: snapshot violates user/assistant alternation")
		}
		turn := Turn{User: NewMessage(RoleUser, entries[i].Content, 0)}
		i++
		if i < len(entries) && entries[i].Role == string(RoleAssistant) {
			a := NewMessage(RoleAssistant, entries[i].Content, 0)
			turn.Assistant = &a
			i++
		} else if i < len(entries) {
			// Only the final turn may still be awaiting its response.
			return nil, errors.New("history: snapshot has an unanswered user entry mid-history")
		}
		s.Append(turn)
	}
	return s, nil
}
