// Package memory provides in-memory store implementations used in
// tests and ephemeral sessions.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/ports/driven"
)

// Ensure MessageStore implements the interface.
var _ driven.MessageStore = (*MessageStore)(nil)

// MessageStore is a mutex-guarded in-memory driven.MessageStore.
// Reads are ordered by message ID to match the SQLite adapter.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[int64]domain.Message
	nextID   int64
}

// NewMessageStore creates an empty in-memory message store.
func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[int64]domain.Message)}
}

// SaveMessage stores or updates a message. A zero ID gets the next
// free identity, written back to msg.
func (s *MessageStore) SaveMessage(_ context.Context, msg *domain.Message) error {
	if msg == nil {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == 0 {
		s.nextID++
		msg.ID = s.nextID
	} else if msg.ID > s.nextID {
		s.nextID = msg.ID
	}
	s.messages[msg.ID] = *msg
	return nil
}

// GetMessage retrieves a message by ID.
func (s *MessageStore) GetMessage(_ context.Context, id int64) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &msg, nil
}

// DeleteMessage removes a message and its stored embedding.
func (s *MessageStore) DeleteMessage(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, id)
	return nil
}

// GetMessagesNeedingEmbedding returns up to limit messages without a
// current-version vector, ordered by ID.
func (s *MessageStore) GetMessagesNeedingEmbedding(_ context.Context, version, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Message
	for _, msg := range s.sortedLocked() {
		if msg.HasEmbedding(version) {
			continue
		}
		out = append(out, msg)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// GetMessagesWithEmbeddings returns every message carrying a
// current-version vector, ordered by ID.
func (s *MessageStore) GetMessagesWithEmbeddings(_ context.Context, version int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Message
	for _, msg := range s.sortedLocked() {
		if msg.HasEmbedding(version) {
			out = append(out, msg)
		}
	}
	return out, nil
}

// GetMessagesWithEmbeddingsPaged returns one page of embedded
// messages, ordered by ID.
func (s *MessageStore) GetMessagesWithEmbeddingsPaged(_ context.Context, version, limit, offset int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var embedded []domain.Message
	for _, msg := range s.sortedLocked() {
		if msg.HasEmbedding(version) {
			embedded = append(embedded, msg)
		}
	}

	if offset >= len(embedded) {
		return nil, nil
	}
	end := offset + limit
	if end > len(embedded) {
		end = len(embedded)
	}
	return embedded[offset:end], nil
}

// UpdateEmbedding writes vector, version and generation timestamp for
// a message as a whole.
func (s *MessageStore) UpdateEmbedding(_ context.Context, id int64, embedding string, version int, generatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return domain.ErrNotFound
	}
	msg.Embedding = embedding
	msg.EmbeddingVersion = version
	msg.EmbeddedAt = generatedAt
	s.messages[id] = msg
	return nil
}

// GetAllMessageBodies returns the body of every message, ordered by ID.
func (s *MessageStore) GetAllMessageBodies(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.sortedLocked()
	bodies := make([]string, len(msgs))
	for i, msg := range msgs {
		bodies[i] = msg.Body
	}
	return bodies, nil
}

// GetTotalMessageCount returns the number of stored messages.
func (s *MessageStore) GetTotalMessageCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages), nil
}

// GetEmbeddedMessageCount returns the number of messages carrying a
// current-version vector.
func (s *MessageStore) GetEmbeddedMessageCount(_ context.Context, version int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, msg := range s.messages {
		if msg.HasEmbedding(version) {
			count++
		}
	}
	return count, nil
}

// ListThreads returns conversation summaries ordered by most recent
// activity.
func (s *MessageStore) ListThreads(_ context.Context, limit int) ([]domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byThread := make(map[int64]*domain.Thread)
	for _, msg := range s.sortedLocked() {
		t, ok := byThread[msg.ThreadID]
		if !ok {
			t = &domain.Thread{ID: msg.ThreadID, Title: msg.Sender}
			byThread[msg.ThreadID] = t
		}
		t.MessageCount++
		if msg.SentAt.After(t.LastActivity) {
			t.LastActivity = msg.SentAt
		}
	}

	threads := make([]domain.Thread, 0, len(byThread))
	for _, t := range byThread {
		threads = append(threads, *t)
	}
	sort.Slice(threads, func(i, j int) bool {
		if !threads[i].LastActivity.Equal(threads[j].LastActivity) {
			return threads[i].LastActivity.After(threads[j].LastActivity)
		}
		return threads[i].ID < threads[j].ID
	})

	if limit > 0 && len(threads) > limit {
		threads = threads[:limit]
	}
	return threads, nil
}

// Close releases resources. A no-op for the in-memory store.
func (s *MessageStore) Close() error {
	return nil
}

// sortedLocked returns all messages ordered by ID.
// Callers must hold at least the read lock.
func (s *MessageStore) sortedLocked() []domain.Message {
	out := make([]domain.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
