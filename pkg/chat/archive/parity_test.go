package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/hexchat/pkg/chat"
)

// Every backend must honor the same slot contract: full overwrite on save,
// empty collection for an absent slot, idempotent clear, structural
// round-trip.
func TestArchiveBackendParity(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) Archive
	}{
		{
			name: "memory",
			open: func(t *testing.T) Archive {
				return NewMemoryArchive()
			},
		},
		{
			name: "file",
			open: func(t *testing.T) Archive {
				a, err := NewFileArchive(filepath.Join(t.TempDir(), "conversations.json"))
				require.NoError(t, err)
				return a
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) Archive {
				dsn, err := SQLiteArchiveDSNForFile(filepath.Join(t.TempDir(), "conversations.db"))
				require.NoError(t, err)
				a, err := NewSQLiteArchive(dsn)
				require.NoError(t, err)
				return a
			},
		},
	}

	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			a := backend.open(t)
			defer func() {
				_ = a.Close()
			}()

			empty, err := a.Load(ctx)
			require.NoError(t, err)
			require.Empty(t, empty)

			first := chat.NewConversation()
			first.Title = "greetings"
			first.Append(chat.NewUserMessage("hello there"))
			first.Append(chat.NewAssistantMessage("hi"))
			second := chat.NewConversation()

			require.NoError(t, a.Save(ctx, []*chat.Conversation{first, second}))

			reloaded, err := a.Load(ctx)
			require.NoError(t, err)
			require.Len(t, reloaded, 2)
			require.Equal(t, first.ID, reloaded[0].ID)
			require.Equal(t, first.Title, reloaded[0].Title)
			require.Equal(t, first.Messages, reloaded[0].Messages)
			require.True(t, first.CreatedAt.Equal(reloaded[0].CreatedAt))
			require.Equal(t, second.ID, reloaded[1].ID)
			require.Empty(t, reloaded[1].Messages)

			// save(load()) keeps the collection structurally equal
			require.NoError(t, a.Save(ctx, reloaded))
			again, err := a.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, conversationIDs(reloaded), conversationIDs(again))

			require.NoError(t, a.Clear(ctx))
			cleared, err := a.Load(ctx)
			require.NoError(t, err)
			require.Empty(t, cleared)
			require.NoError(t, a.Clear(ctx))
		})
	}
}

func TestMemoryArchiveIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryArchive()

	conv := chat.NewConversation()
	conv.Append(chat.NewUserMessage("original"))
	require.NoError(t, a.Save(ctx, []*chat.Conversation{conv}))

	// mutating the saved value must not leak into the archive
	conv.Messages[0].Content = "mutated"

	loaded, err := a.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "original", loaded[0].Messages[0].Content)

	// mutating the loaded value must not leak either
	loaded[0].Messages[0].Content = "mutated again"
	reloaded, err := a.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "original", reloaded[0].Messages[0].Content)
}

func conversationIDs(conversations []*chat.Conversation) []chat.ConversationID {
	out := make([]chat.ConversationID, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, conv.ID)
	}
	return out
}
