package reply

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/go-go-golems/hexchat/pkg/chat"
)

// Responder produces assistant replies for user messages. Requests are
// fire-and-forget from the caller's perspective: each returned Handle
// completes exactly once, either with generated text or with a cancellation
// error. A real assistant backend slots in behind this interface without
// changing the store's contract.
type Responder interface {
	RequestReply(ctx context.Context, conversationID chat.ConversationID, userText string) (*Handle, error)
}

// DefaultDelay is the artificial latency before a simulated reply lands.
const DefaultDelay = 2 * time.Second

const defaultTemplate = `This is a simulated reply. A real assistant backend would generate an answer based on: %q`

// Simulator is a stand-in Responder that echoes the user message back in a
// deterministic template after a configurable delay.
type Simulator struct {
	delay    time.Duration
	template string
}

var _ Responder = (*Simulator)(nil)

type SimulatorOption func(*Simulator)

func WithDelay(delay time.Duration) SimulatorOption {
	return func(s *Simulator) {
		s.delay = delay
	}
}

// WithTemplate overrides the reply template. The template must contain a
// single %q verb for the user text.
func WithTemplate(template string) SimulatorOption {
	return func(s *Simulator) {
		s.template = template
	}
}

func NewSimulator(options ...SimulatorOption) *Simulator {
	ret := &Simulator{
		delay:    DefaultDelay,
		template: defaultTemplate,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// RequestReply schedules a simulated reply and returns immediately. The
// reply fires after the configured delay unless the handle or the context is
// cancelled first.
func (s *Simulator) RequestReply(ctx context.Context, conversationID chat.ConversationID, userText string) (*Handle, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	handle := newHandle(conversationID, uuid.NewString(), cancel)

	go func() {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			handle.setResult(fmt.Sprintf(s.template, userText), nil)
		case <-runCtx.Done():
			handle.setResult("", runCtx.Err())
		}
	}()

	return handle, nil
}
