package events

import (
	"encoding/json"

	"github.com/go-go-golems/hexchat/pkg/chat"
)

type EventType string

const (
	EventTypeConversationCreated  EventType = "conversation-created"
	EventTypeConversationSwitched EventType = "conversation-switched"
	EventTypeConversationDeleted  EventType = "conversation-deleted"
	EventTypeMessageAppended      EventType = "message-appended"
	EventTypeReplyRequested       EventType = "reply-requested"
	EventTypeReplyCancelled       EventType = "reply-cancelled"
	EventTypeConversationsCleared EventType = "conversations-cleared"
)

// Event describes a single store mutation. The presentation layer
// subscribes to these to re-render after every change.
type Event struct {
	Type           EventType           `json:"type"`
	ConversationID chat.ConversationID `json:"conversationId,omitempty"`
	Role           chat.Role           `json:"role,omitempty"`
	Content        string              `json:"content,omitempty"`
}

func NewConversationCreated(id chat.ConversationID) Event {
	return Event{Type: EventTypeConversationCreated, ConversationID: id}
}

func NewConversationSwitched(id chat.ConversationID) Event {
	return Event{Type: EventTypeConversationSwitched, ConversationID: id}
}

func NewConversationDeleted(id chat.ConversationID) Event {
	return Event{Type: EventTypeConversationDeleted, ConversationID: id}
}

func NewMessageAppended(id chat.ConversationID, role chat.Role, content string) Event {
	return Event{Type: EventTypeMessageAppended, ConversationID: id, Role: role, Content: content}
}

func NewReplyRequested(id chat.ConversationID) Event {
	return Event{Type: EventTypeReplyRequested, ConversationID: id}
}

func NewReplyCancelled(id chat.ConversationID) Event {
	return Event{Type: EventTypeReplyCancelled, ConversationID: id}
}

func NewConversationsCleared() Event {
	return Event{Type: EventTypeConversationsCleared}
}

// NewEventFromJSON decodes an event payload received from a watermill
// message.
func NewEventFromJSON(b []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
