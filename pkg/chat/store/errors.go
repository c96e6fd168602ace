package store

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyMessage         = errors.New("message text is empty")
	// ErrNoCurrentConversation indicates an invariant violation: a non-empty
	// store always has a current conversation. The store self-heals instead
	// of returning it from mutating operations.
	ErrNoCurrentConversation = errors.New("no current conversation")
)
