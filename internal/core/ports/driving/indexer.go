package driving

import (
	"context"

	"github.com/veilchat/recall/internal/core/domain"
)

// ProgressFunc receives progress updates during an indexing pass.
// May be nil when the caller does not need progress.
type ProgressFunc func(domain.IndexProgress)

// Indexer keeps the embedding index in sync with the message store.
type Indexer interface {
	// RunPass embeds every message lacking a current-version vector,
	// in batches of batchSize (0 means the default). The corpus is
	// rebuilt once, before any embedding, from a snapshot of all
	// message bodies. Interrupting a pass never loses completed work;
	// re-running skips already-embedded messages.
	RunPass(ctx context.Context, batchSize int, progress ProgressFunc) (*domain.TaskResult, error)

	// Reindex clears stored vectors and runs a full pass, re-embedding
	// every message against freshly rebuilt corpus statistics.
	Reindex(ctx context.Context, batchSize int, progress ProgressFunc) (*domain.TaskResult, error)

	// Status reports embedding coverage of the message store.
	Status(ctx context.Context) (*domain.IndexStatus, error)
}
