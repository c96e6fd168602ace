package archive

import (
	"context"
	"encoding/json"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/go-go-golems/hexchat/pkg/chat"
)

var (
	// ErrCorruptArchive marks a durable slot whose payload could not be
	// decoded into a valid conversation collection. Callers treat the slot
	// as absent and continue with an empty collection.
	ErrCorruptArchive = errors.New("archive payload is corrupt")
	ErrArchiveClosed  = errors.New("archive is closed")
)

// Archive persists the full conversation collection in a single durable
// slot. Every save overwrites the entire slot; there are no partial writes.
//
// All errors returned by an Archive are recoverable: callers log them and
// continue with their in-memory state intact.
type Archive interface {
	// Load reads the slot. An absent slot yields an empty collection and a
	// nil error; a corrupt slot yields an empty collection and an error
	// matching ErrCorruptArchive.
	Load(ctx context.Context) ([]*chat.Conversation, error)
	// Save serializes the collection and overwrites the slot.
	Save(ctx context.Context, conversations []*chat.Conversation) error
	// Clear removes the slot entirely. Clearing an absent slot is a no-op.
	Clear(ctx context.Context) error
	Close() error
}

func encodeConversations(conversations []*chat.Conversation) ([]byte, error) {
	if conversations == nil {
		conversations = []*chat.Conversation{}
	}
	return json.MarshalIndent(conversations, "", "  ")
}

func decodeConversations(data []byte) ([]*chat.Conversation, error) {
	var conversations []*chat.Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		return nil, pkgerrors.Wrapf(ErrCorruptArchive, "decode: %v", err)
	}
	for i, conv := range conversations {
		if conv == nil {
			return nil, pkgerrors.Wrapf(ErrCorruptArchive, "conversation %d is null", i)
		}
		if err := conv.Validate(); err != nil {
			return nil, pkgerrors.Wrapf(ErrCorruptArchive, "%v", err)
		}
		if conv.Messages == nil {
			conv.Messages = []chat.Message{}
		}
	}
	return conversations, nil
}

func cloneConversations(conversations []*chat.Conversation) []*chat.Conversation {
	out := make([]*chat.Conversation, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, conv.Clone())
	}
	return out
}
