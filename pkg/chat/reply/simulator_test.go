package reply

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorDeliversTemplatedReply(t *testing.T) {
	s := NewSimulator(WithDelay(10 * time.Millisecond))

	handle, err := s.RequestReply(context.Background(), "chat_1_abc", "what is up?")
	require.NoError(t, err)
	require.True(t, handle.IsRunning())

	text, err := handle.Wait()
	require.NoError(t, err)
	assert.Contains(t, text, `"what is up?"`)
	assert.False(t, handle.IsRunning())
}

func TestSimulatorReplyIsDeterministic(t *testing.T) {
	s := NewSimulator(WithDelay(time.Millisecond))

	first, err := s.RequestReply(context.Background(), "chat_1_abc", "hello")
	require.NoError(t, err)
	second, err := s.RequestReply(context.Background(), "chat_1_abc", "hello")
	require.NoError(t, err)

	firstText, err := first.Wait()
	require.NoError(t, err)
	secondText, err := second.Wait()
	require.NoError(t, err)
	assert.Equal(t, firstText, secondText)
	assert.NotEqual(t, first.RequestID, second.RequestID)
}

func TestSimulatorCustomTemplate(t *testing.T) {
	s := NewSimulator(WithDelay(time.Millisecond), WithTemplate("echo: %q"))

	handle, err := s.RequestReply(context.Background(), "chat_1_abc", "ping")
	require.NoError(t, err)
	text, err := handle.Wait()
	require.NoError(t, err)
	assert.Equal(t, `echo: "ping"`, text)
}

func TestHandleCancel(t *testing.T) {
	s := NewSimulator(WithDelay(time.Hour))

	handle, err := s.RequestReply(context.Background(), "chat_1_abc", "never answered")
	require.NoError(t, err)

	handle.Cancel()
	// cancelling twice is fine
	handle.Cancel()

	_, err = handle.Wait()
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, handle.IsRunning())
}

func TestHandleContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSimulator(WithDelay(time.Hour))

	handle, err := s.RequestReply(ctx, "chat_1_abc", "never answered")
	require.NoError(t, err)

	cancel()
	_, err = handle.Wait()
	require.ErrorIs(t, err, context.Canceled)
}

func TestNilHandle(t *testing.T) {
	var handle *Handle
	handle.Cancel()
	assert.False(t, handle.IsRunning())
	_, err := handle.Wait()
	require.ErrorIs(t, err, ErrHandleNil)
}
