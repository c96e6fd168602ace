package chat

import (
	"crypto/rand"
	"fmt"
	"time"
)

// ConversationID is an opaque identifier for a conversation thread. IDs are
// assigned at creation and never change.
type ConversationID string

func (id ConversationID) String() string {
	return string(id)
}

func (id ConversationID) IsZero() bool {
	return id == ""
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewConversationID combines a millisecond timestamp with a random base36
// suffix, which keeps ids collision-resistant within a session while staying
// sortable by creation time.
func NewConversationID() ConversationID {
	return ConversationID(fmt.Sprintf("chat_%d_%s", time.Now().UnixMilli(), randomSuffix(9)))
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = idAlphabet[int(b[i])%len(idAlphabet)]
	}
	return string(b)
}

// DefaultTitle is the sentinel title a conversation carries until its first
// user message arrives.
const DefaultTitle = "New Chat"

// Conversation is one chat thread: an ordered, append-only sequence of
// messages plus display metadata. The JSON shape is the persisted wire
// layout and must stay stable.
type Conversation struct {
	ID        ConversationID `json:"id"`
	Title     string         `json:"title"`
	Messages  []Message      `json:"messages"`
	CreatedAt time.Time      `json:"createdAt"`
}

func NewConversation() *Conversation {
	return &Conversation{
		ID:        NewConversationID(),
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: time.Now(),
	}
}

// Append adds a message at the end of the thread. Messages are never
// reordered or mutated in place.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// Clone returns a deep copy so callers can hold conversation snapshots
// without aliasing store-owned state.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return &out
}

func (c *Conversation) Validate() error {
	if c == nil {
		return fmt.Errorf("conversation is nil")
	}
	if c.ID.IsZero() {
		return fmt.Errorf("conversation has empty id")
	}
	for i, msg := range c.Messages {
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("conversation %s message %d: %w", c.ID, i, err)
		}
	}
	return nil
}
