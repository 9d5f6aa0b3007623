package driven

import (
	"context"

	"github.com/veilchat/recall/internal/core/domain"
)

// Embedder converts text into fixed-dimension vectors and scores
// vector similarity. Implementations own the corpus-wide
// document-frequency statistics used for term weighting.
//
// Embed is CPU-bound and safe for concurrent use; RebuildCorpus is the
// only mutator of corpus state and replaces it atomically.
type Embedder interface {
	// Embed generates a vector for the given text. Text with no usable
	// tokens embeds to the all-zero vector.
	Embed(ctx context.Context, text string) (domain.Vector, error)

	// Similarity returns the cosine similarity of two vectors, clamped
	// to [0,1]. The zero vector scores 0 against everything, including
	// itself. Vectors of different dimensions are a programming error
	// and cause a panic.
	Similarity(a, b domain.Vector) float64

	// RebuildCorpus atomically replaces the document-frequency table
	// and document count from the given document texts.
	RebuildCorpus(ctx context.Context, documents []string) error

	// Snapshot returns a copy of the current corpus statistics.
	Snapshot() domain.CorpusSnapshot

	// Restore replaces the corpus statistics from a snapshot.
	Restore(snapshot domain.CorpusSnapshot)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// Version identifies the embedding schema. Stored vectors with a
	// different version are re-embedded by the indexer.
	Version() int
}
