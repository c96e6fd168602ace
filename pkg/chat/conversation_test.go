package chat

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationIDUnique(t *testing.T) {
	seen := map[ConversationID]bool{}
	for i := 0; i < 1000; i++ {
		id := NewConversationID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewConversationIDFormat(t *testing.T) {
	id := NewConversationID()
	assert.True(t, strings.HasPrefix(id.String(), "chat_"))
	parts := strings.Split(id.String(), "_")
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 9)
}

func TestNewConversationDefaults(t *testing.T) {
	conv := NewConversation()
	assert.False(t, conv.ID.IsZero())
	assert.Equal(t, DefaultTitle, conv.Title)
	assert.Empty(t, conv.Messages)
	assert.False(t, conv.CreatedAt.IsZero())
}

func TestConversationCloneIsIndependent(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("hello"))

	clone := conv.Clone()
	clone.Title = "changed"
	clone.Append(NewAssistantMessage("reply"))
	clone.Messages[0].Content = "mutated"

	assert.Equal(t, DefaultTitle, conv.Title)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "hello", conv.Messages[0].Content)
}

func TestConversationWireFormat(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("hi"))

	b, err := json.Marshal(conv)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))
	for _, field := range []string{"id", "title", "messages", "createdAt"} {
		assert.Contains(t, raw, field)
	}

	var decoded Conversation
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, conv.ID, decoded.ID)
	assert.Equal(t, conv.Title, decoded.Title)
	assert.Equal(t, conv.Messages, decoded.Messages)
	assert.True(t, conv.CreatedAt.Equal(decoded.CreatedAt))
}

func TestConversationValidate(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("hi"))
	conv.Append(NewAssistantMessage("hello"))
	require.NoError(t, conv.Validate())

	conv.Messages = append(conv.Messages, Message{Role: "system", Content: "nope"})
	require.Error(t, conv.Validate())

	empty := &Conversation{}
	require.Error(t, empty.Validate())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("system").Valid())
	assert.False(t, Role("").Valid())
}
