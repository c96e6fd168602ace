package archive

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/go-go-golems/hexchat/pkg/chat"
)

// FileArchive persists the collection as a single JSON file on disk. Writes
// go through a temporary file and rename so a crash mid-save never leaves a
// half-written slot behind.
type FileArchive struct {
	mu     sync.Mutex
	path   string
	closed bool
}

var _ Archive = (*FileArchive)(nil)

func NewFileArchive(path string) (*FileArchive, error) {
	if path == "" {
		return nil, errors.New("file archive path is required")
	}
	return &FileArchive{path: path}, nil
}

func (a *FileArchive) Load(_ context.Context) ([]*chat.Conversation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrArchiveClosed
	}

	b, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*chat.Conversation{}, nil
		}
		return []*chat.Conversation{}, errors.Wrap(err, "read archive")
	}

	conversations, err := decodeConversations(b)
	if err != nil {
		return []*chat.Conversation{}, err
	}
	return conversations, nil
}

func (a *FileArchive) Save(_ context.Context, conversations []*chat.Conversation) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrArchiveClosed
	}

	b, err := encodeConversations(conversations)
	if err != nil {
		return errors.Wrap(err, "encode archive")
	}
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return errors.Wrap(err, "create archive directory")
	}
	tmpPath := a.path + ".tmp"
	if err := os.WriteFile(tmpPath, b, 0o644); err != nil {
		return errors.Wrap(err, "write archive")
	}
	return os.Rename(tmpPath, a.path)
}

func (a *FileArchive) Clear(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrArchiveClosed
	}

	err := os.Remove(a.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove archive")
	}
	return nil
}

func (a *FileArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}
