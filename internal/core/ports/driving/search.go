package driving

import (
	"context"

	"github.com/veilchat/recall/internal/core/domain"
)

// SearchService provides semantic retrieval over the message corpus.
//
// All operations follow an "always answer" contract: zero-result and
// failure cases produce explanatory notice results rather than errors,
// so a conversational surface always has something to render.
type SearchService interface {
	// Search embeds the query, scans every indexed message, and returns
	// results above the similarity threshold, ranked by similarity
	// descending with more recent messages first on ties.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// SearchBatched is semantically identical to Search but pages
	// through the embedding index in fixed-size batches to bound peak
	// memory. For the same data it returns the same ranked list.
	SearchBatched(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// BuildContext concatenates the top results into a newline-
	// delimited text block no longer than maxLength characters,
	// dropping whole records rather than truncating them. Retrieval is
	// configured by opts exactly as for Search.
	// Returns "" when no message clears the similarity threshold.
	BuildContext(ctx context.Context, query string, opts domain.SearchOptions, maxLength int) (string, error)
}
