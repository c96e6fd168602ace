// Package store implements the conversation state machine: an ordered
// collection of conversations plus a single "current conversation" pointer.
//
// Invariants:
//   - conversation ids are unique within the collection
//   - a non-empty collection has exactly one current conversation
//   - a new conversation is inserted at the front and becomes current
//   - message sequences are append-only
//   - the durable slot is rewritten after every mutating operation
//
// Archive failures are recoverable: the store logs them and keeps serving
// its in-memory state.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/hexchat/pkg/chat"
	"github.com/go-go-golems/hexchat/pkg/chat/archive"
	"github.com/go-go-golems/hexchat/pkg/chat/reply"
	"github.com/go-go-golems/hexchat/pkg/events"
)

// Summary is the read-only projection used by conversation lists. A
// conversation with zero messages only shows up while it is current.
type Summary struct {
	ID           chat.ConversationID
	Title        string
	MessageCount int
	CreatedAt    time.Time
	Active       bool
}

type Store struct {
	mu            sync.Mutex
	conversations []*chat.Conversation
	currentID     chat.ConversationID
	pending       map[string]*reply.Handle

	archive   archive.Archive
	responder reply.Responder
	publisher *events.PublisherManager
	logger    zerolog.Logger
}

type Option func(*Store)

func WithArchive(a archive.Archive) Option {
	return func(s *Store) {
		s.archive = a
	}
}

func WithResponder(r reply.Responder) Option {
	return func(s *Store) {
		s.responder = r
	}
}

func WithPublisher(p *events.PublisherManager) Option {
	return func(s *Store) {
		s.publisher = p
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New loads the collection from the archive and guarantees the store starts
// with a current conversation: the first loaded one, or a freshly created
// one when the slot is absent, empty, or corrupt.
func New(ctx context.Context, options ...Option) *Store {
	s := &Store{
		pending:   map[string]*reply.Handle{},
		archive:   archive.NewMemoryArchive(),
		responder: reply.NewSimulator(),
		publisher: events.NewPublisherManager(),
		logger:    log.Logger,
	}
	for _, option := range options {
		option(s)
	}

	conversations, err := s.archive.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load conversation archive, starting empty")
	}
	s.conversations = conversations

	if len(s.conversations) == 0 {
		s.mu.Lock()
		id := s.createConversationLocked(ctx)
		s.mu.Unlock()
		s.publisher.PublishBlind(events.NewConversationCreated(id))
	} else {
		// currentID is not part of the persisted schema; the first
		// conversation becomes current after reload.
		s.currentID = s.conversations[0].ID
	}

	return s
}

// CreateConversation inserts a new empty conversation at the front of the
// collection and makes it current.
func (s *Store) CreateConversation(ctx context.Context) chat.ConversationID {
	s.mu.Lock()
	id := s.createConversationLocked(ctx)
	s.mu.Unlock()

	s.publisher.PublishBlind(events.NewConversationCreated(id))
	return id
}

func (s *Store) createConversationLocked(ctx context.Context) chat.ConversationID {
	conv := chat.NewConversation()
	s.conversations = append([]*chat.Conversation{conv}, s.conversations...)
	s.currentID = conv.ID
	s.persistLocked(ctx)
	return conv.ID
}

// SwitchTo makes the conversation with the given id current. The id is
// always re-validated; switching never mutates message content and is not
// persisted (the current pointer is session-local).
func (s *Store) SwitchTo(id chat.ConversationID) error {
	s.mu.Lock()
	if s.findLocked(id) == nil {
		s.mu.Unlock()
		return errors.Wrapf(ErrConversationNotFound, "switch to %s", id)
	}
	s.currentID = id
	s.mu.Unlock()

	s.publisher.PublishBlind(events.NewConversationSwitched(id))
	return nil
}

// DeleteConversation removes the conversation with the given id. Deleting an
// unknown id is a no-op. Pending replies for the conversation are cancelled.
// If the deleted conversation was current, the new first conversation is
// promoted, or a fresh one is created when none remain.
func (s *Store) DeleteConversation(ctx context.Context, id chat.ConversationID) {
	s.mu.Lock()
	idx := -1
	for i, conv := range s.conversations {
		if conv.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	s.cancelPendingLocked(id)

	wasCurrent := s.currentID == id
	var createdID chat.ConversationID
	if wasCurrent {
		if len(s.conversations) > 0 {
			s.currentID = s.conversations[0].ID
			s.persistLocked(ctx)
		} else {
			s.persistLocked(ctx)
			createdID = s.createConversationLocked(ctx)
		}
	} else {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	s.publisher.PublishBlind(events.NewConversationDeleted(id))
	if !createdID.IsZero() {
		s.publisher.PublishBlind(events.NewConversationCreated(createdID))
	}
}

// AppendUserMessage appends a user turn to the current conversation and
// schedules an asynchronous assistant reply. It returns before the reply
// completes.
//
// The text is trimmed only for the emptiness check and title derivation; the
// stored content is the original text.
func (s *Store) AppendUserMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.Wrap(ErrEmptyMessage, "append user message")
	}

	s.mu.Lock()
	conv := s.findLocked(s.currentID)
	if conv == nil {
		// Invariant violation: self-heal by seeding a fresh conversation
		// instead of surfacing a fatal state.
		s.logger.Warn().Str("current_id", s.currentID.String()).Msg("no current conversation, creating a fresh one")
		id := s.createConversationLocked(ctx)
		conv = s.findLocked(id)
	}

	if len(conv.Messages) == 0 {
		conv.Title = chat.DeriveTitle(text)
	}
	conv.Append(chat.NewUserMessage(text))
	conversationID := conv.ID
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publisher.PublishBlind(events.NewMessageAppended(conversationID, chat.RoleUser, text))
	s.requestReply(ctx, conversationID, text)
	return nil
}

func (s *Store) requestReply(ctx context.Context, conversationID chat.ConversationID, text string) {
	handle, err := s.responder.RequestReply(ctx, conversationID, text)
	if err != nil {
		s.logger.Warn().Err(err).Str("conversation_id", conversationID.String()).Msg("failed to request reply")
		return
	}

	s.mu.Lock()
	s.pending[handle.RequestID] = handle
	s.mu.Unlock()
	s.publisher.PublishBlind(events.NewReplyRequested(conversationID))

	go func() {
		out, err := handle.Wait()

		s.mu.Lock()
		delete(s.pending, handle.RequestID)
		s.mu.Unlock()

		if err != nil {
			s.logger.Debug().Err(err).Str("conversation_id", conversationID.String()).Msg("pending reply cancelled")
			s.publisher.PublishBlind(events.NewReplyCancelled(conversationID))
			return
		}
		s.AppendAssistantMessage(ctx, conversationID, out)
	}()
}

// AppendAssistantMessage appends an assistant turn to the target
// conversation. If the conversation no longer exists the message is silently
// dropped.
func (s *Store) AppendAssistantMessage(ctx context.Context, id chat.ConversationID, text string) {
	s.mu.Lock()
	conv := s.findLocked(id)
	if conv == nil {
		s.mu.Unlock()
		s.logger.Debug().Str("conversation_id", id.String()).Msg("dropping assistant message for deleted conversation")
		return
	}
	conv.Append(chat.NewAssistantMessage(text))
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publisher.PublishBlind(events.NewMessageAppended(id, chat.RoleAssistant, text))
}

// ClearAll cancels pending replies, empties the collection, removes the
// durable slot, and seeds one new empty conversation so a current
// conversation exists immediately afterwards.
func (s *Store) ClearAll(ctx context.Context) {
	s.mu.Lock()
	for _, handle := range s.pending {
		handle.Cancel()
	}
	s.conversations = nil
	s.currentID = ""
	if err := s.archive.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear conversation archive")
	}
	createdID := s.createConversationLocked(ctx)
	s.mu.Unlock()

	s.publisher.PublishBlind(events.NewConversationsCleared())
	s.publisher.PublishBlind(events.NewConversationCreated(createdID))
}

// ListForDisplay returns summaries in collection order. Conversations with
// zero messages are omitted unless current, which keeps the "New Chat"
// placeholder visible only while active.
func (s *Store) ListForDisplay() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Summary, 0, len(s.conversations))
	for _, conv := range s.conversations {
		if len(conv.Messages) == 0 && conv.ID != s.currentID {
			continue
		}
		out = append(out, Summary{
			ID:           conv.ID,
			Title:        conv.Title,
			MessageCount: len(conv.Messages),
			CreatedAt:    conv.CreatedAt,
			Active:       conv.ID == s.currentID,
		})
	}
	return out
}

func (s *Store) CurrentID() chat.ConversationID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Current returns a copy of the current conversation.
func (s *Store) Current() (*chat.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.findLocked(s.currentID)
	if conv == nil {
		return nil, false
	}
	return conv.Clone(), true
}

// Get returns a copy of the conversation with the given id.
func (s *Store) Get(id chat.ConversationID) (*chat.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.findLocked(id)
	if conv == nil {
		return nil, false
	}
	return conv.Clone(), true
}

// Conversations returns copies of all conversations in collection order.
func (s *Store) Conversations() []*chat.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*chat.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, conv.Clone())
	}
	return out
}

// Messages returns a copy of the message sequence of the given conversation.
func (s *Store) Messages(id chat.ConversationID) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.findLocked(id)
	if conv == nil {
		return nil, errors.Wrapf(ErrConversationNotFound, "messages of %s", id)
	}
	out := make([]chat.Message, len(conv.Messages))
	copy(out, conv.Messages)
	return out, nil
}

// PendingReplies reports the number of in-flight reply requests.
func (s *Store) PendingReplies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Store) findLocked(id chat.ConversationID) *chat.Conversation {
	if id.IsZero() {
		return nil
	}
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

func (s *Store) cancelPendingLocked(id chat.ConversationID) {
	for _, handle := range s.pending {
		if handle.ConversationID == id {
			handle.Cancel()
		}
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	if err := s.archive.Save(ctx, s.conversations); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist conversations, keeping in-memory state")
	}
}
