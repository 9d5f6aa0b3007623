package driven

import (
	"context"
	"time"

	"github.com/veilchat/recall/internal/core/domain"
)

// MessageStore is the retrieval core's window onto the external message
// store. It persists messages and the per-message embedding index
// (vector string, schema version, generation timestamp).
//
// Paged reads are ordered strictly by message ID, an immutable key, so
// paging never skips or repeats rows even under concurrent writes.
type MessageStore interface {
	// SaveMessage stores or updates a message.
	SaveMessage(ctx context.Context, msg *domain.Message) error

	// GetMessage retrieves a message by ID.
	GetMessage(ctx context.Context, id int64) (*domain.Message, error)

	// DeleteMessage removes a message and its stored embedding.
	DeleteMessage(ctx context.Context, id int64) error

	// GetMessagesNeedingEmbedding returns up to limit messages without
	// a vector for the given schema version, ordered by ID.
	GetMessagesNeedingEmbedding(ctx context.Context, version, limit int) ([]domain.Message, error)

	// GetMessagesWithEmbeddings returns every message carrying a vector
	// for the given schema version, ordered by ID.
	GetMessagesWithEmbeddings(ctx context.Context, version int) ([]domain.Message, error)

	// GetMessagesWithEmbeddingsPaged returns one bounded page of
	// messages carrying a vector for the given schema version,
	// ordered by ID.
	GetMessagesWithEmbeddingsPaged(ctx context.Context, version, limit, offset int) ([]domain.Message, error)

	// UpdateEmbedding writes the vector, version and generation
	// timestamp for a message as a single atomic row update.
	UpdateEmbedding(ctx context.Context, id int64, embedding string, version int, generatedAt time.Time) error

	// GetAllMessageBodies returns the body text of every message.
	// Used to snapshot the corpus before a rebuild.
	GetAllMessageBodies(ctx context.Context) ([]string, error)

	// GetTotalMessageCount returns the number of stored messages.
	GetTotalMessageCount(ctx context.Context) (int, error)

	// GetEmbeddedMessageCount returns the number of messages carrying
	// a vector for the given schema version.
	GetEmbeddedMessageCount(ctx context.Context, version int) (int, error)

	// ListThreads returns up to limit conversation summaries ordered
	// by most recent activity.
	ListThreads(ctx context.Context, limit int) ([]domain.Thread, error)

	// Close releases resources.
	Close() error
}
