package domain

import "time"

// DefaultIndexBatchSize is the number of messages embedded per batch
// during an indexing pass.
const DefaultIndexBatchSize = 100

// IndexProgress is a progress update emitted during an indexing pass.
type IndexProgress struct {
	// PassID identifies the indexing pass the update belongs to.
	PassID string

	// Processed is the number of messages embedded so far.
	Processed int

	// Failed is the number of messages skipped due to local errors.
	Failed int

	// Total is the estimated number of messages needing embedding at
	// the start of the pass.
	Total int

	// Done is true on the final update of a pass.
	Done bool
}

// IndexStatus summarises embedding coverage of the message store.
type IndexStatus struct {
	// TotalMessages is the number of messages in the store.
	TotalMessages int

	// EmbeddedMessages is the number carrying a current-version vector.
	EmbeddedMessages int

	// EmbeddingVersion is the active embedding schema version.
	EmbeddingVersion int

	// Running indicates an indexing pass is in progress.
	Running bool
}

// CorpusSnapshot is a persisted copy of the document-frequency
// statistics. It exists so embeddings are corpus-weighted immediately
// at startup; it is fully replaced on every rebuild, never merged.
type CorpusSnapshot struct {
	// DocumentCount is the total number of documents in the corpus.
	DocumentCount int

	// DocFreq maps a normalised token to the number of distinct
	// documents containing it.
	DocFreq map[string]int

	// RebuiltAt is when the snapshot was taken.
	RebuiltAt time.Time
}
