package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/go-go-golems/hexchat/pkg/chat/archive"
	"github.com/go-go-golems/hexchat/pkg/chat/reply"
	"github.com/go-go-golems/hexchat/pkg/chat/store"
)

// chatTopic is the pub/sub topic store events are published on.
const chatTopic = "chat"

func newArchive() (archive.Archive, error) {
	backend := viper.GetString("backend")
	path := viper.GetString("archive")

	switch backend {
	case "memory":
		return archive.NewMemoryArchive(), nil
	case "sqlite":
		if path == "" {
			var err error
			path, err = defaultArchivePath("conversations.db")
			if err != nil {
				return nil, err
			}
		}
		dsn, err := archive.SQLiteArchiveDSNForFile(path)
		if err != nil {
			return nil, err
		}
		return archive.NewSQLiteArchive(dsn)
	case "file":
		if path == "" {
			var err error
			path, err = defaultArchivePath("conversations.json")
			if err != nil {
				return nil, err
			}
		}
		return archive.NewFileArchive(path)
	default:
		return nil, errors.Errorf("unknown archive backend %q", backend)
	}
}

func defaultArchivePath(filename string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	dir := filepath.Join(home, ".hexchat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create archive directory")
	}
	return filepath.Join(dir, filename), nil
}

// openStore builds the archive and store from configuration. The returned
// cleanup closes the archive.
func openStore(ctx context.Context, options ...store.Option) (*store.Store, func(), error) {
	a, err := newArchive()
	if err != nil {
		return nil, nil, err
	}

	simulator := reply.NewSimulator(reply.WithDelay(viper.GetDuration("reply-delay")))
	opts := append([]store.Option{
		store.WithArchive(a),
		store.WithResponder(simulator),
	}, options...)

	s := store.New(ctx, opts...)
	return s, func() { _ = a.Close() }, nil
}
