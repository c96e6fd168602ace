package archive

import (
	"context"
	"sync"

	"github.com/go-go-golems/hexchat/pkg/chat"
)

// MemoryArchive is a thread-safe Archive that keeps the collection in
// process memory. It is the default backend and the one tests use.
type MemoryArchive struct {
	mu            sync.RWMutex
	conversations []*chat.Conversation
	present       bool
	closed        bool
}

var _ Archive = (*MemoryArchive)(nil)

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{}
}

func (a *MemoryArchive) Load(_ context.Context) ([]*chat.Conversation, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, ErrArchiveClosed
	}
	if !a.present {
		return []*chat.Conversation{}, nil
	}
	return cloneConversations(a.conversations), nil
}

func (a *MemoryArchive) Save(_ context.Context, conversations []*chat.Conversation) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrArchiveClosed
	}
	a.conversations = cloneConversations(conversations)
	a.present = true
	return nil
}

func (a *MemoryArchive) Clear(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrArchiveClosed
	}
	a.conversations = nil
	a.present = false
	return nil
}

func (a *MemoryArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}
