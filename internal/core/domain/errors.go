package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedVector indicates a stored embedding string that
	// cannot be decoded. Readers treat the owning message as having
	// no embedding rather than aborting the scan.
	ErrMalformedVector = errors.New("malformed embedding vector")

	// ErrNotIndexed indicates no message embeddings exist yet.
	// This is a distinct "not ready" state, not an empty result.
	ErrNotIndexed = errors.New("messages not yet indexed")

	// ErrIndexingInProgress indicates an indexing pass is already running.
	ErrIndexingInProgress = errors.New("indexing already in progress")

	// ErrEmbedderUnavailable indicates the embedding engine is not
	// configured. Semantic search is disabled without it.
	ErrEmbedderUnavailable = errors.New("embedding engine unavailable")

	// ErrStoreUnavailable indicates the message store is not configured.
	ErrStoreUnavailable = errors.New("message store unavailable")
)
