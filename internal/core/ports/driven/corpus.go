package driven

import (
	"context"

	"github.com/veilchat/recall/internal/core/domain"
)

// CorpusStore persists corpus-statistics snapshots so the embedder is
// corpus-weighted immediately after a restart, before the first
// rebuild of the session.
type CorpusStore interface {
	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snapshot domain.CorpusSnapshot) error

	// Load returns the persisted snapshot.
	// Returns domain.ErrNotFound if none has been saved.
	Load(ctx context.Context) (*domain.CorpusSnapshot, error)

	// Close releases resources.
	Close() error
}
