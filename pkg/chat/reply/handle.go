package reply

import (
	"context"
	"errors"
	"sync"

	"github.com/go-go-golems/hexchat/pkg/chat"
)

var ErrHandleNil = errors.New("reply handle is nil")

// Handle represents a single in-flight reply request.
//
// It is cancelable and waitable. The underlying request is always driven by
// context cancellation.
type Handle struct {
	ConversationID chat.ConversationID
	RequestID      string

	done chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	text   string
	err    error
}

func newHandle(conversationID chat.ConversationID, requestID string, cancel context.CancelFunc) *Handle {
	return &Handle{
		ConversationID: conversationID,
		RequestID:      requestID,
		done:           make(chan struct{}),
		cancel:         cancel,
	}
}

func (h *Handle) setResult(text string, err error) {
	h.mu.Lock()
	h.text = text
	h.err = err
	close(h.done)
	cancel := h.cancel
	h.cancel = nil
	h.mu.Unlock()
	// release the request context even on the success path
	if cancel != nil {
		cancel()
	}
}

// Cancel cancels the in-flight request. It is safe to call multiple times.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.mu.Lock()
	cancel := h.cancel
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the request completes and returns the generated text and
// error.
func (h *Handle) Wait() (string, error) {
	if h == nil {
		return "", ErrHandleNil
	}
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.text, h.err
}

// IsRunning reports whether the request appears to still be in flight.
func (h *Handle) IsRunning() bool {
	if h == nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}
