package domain

import "time"

// Search defaults applied when options are zero-valued.
const (
	// DefaultMaxResults is the default result cap for a search.
	DefaultMaxResults = 5

	// DefaultSimilarityThreshold is the minimum cosine similarity a
	// message must score to be considered relevant.
	DefaultSimilarityThreshold = 0.15

	// DefaultSearchBatchSize is the page size used by batched scans.
	DefaultSearchBatchSize = 50

	// ExcerptLength is the character budget for result excerpts.
	ExcerptLength = 200
)

// SearchOptions configures a retrieval run.
type SearchOptions struct {
	// MaxResults caps the number of returned results.
	MaxResults int

	// SimilarityThreshold is the minimum similarity score, in [0,1].
	// Messages scoring below it are dropped. Nil selects
	// DefaultSimilarityThreshold; an explicit zero keeps every scored
	// message.
	SimilarityThreshold *float64

	// BatchSize is the page size for batched index scans.
	BatchSize int
}

// Threshold returns a pointer to v, for use in SearchOptions literals.
func Threshold(v float64) *float64 { return &v }

// Normalised returns a copy with unset fields replaced by defaults.
// An explicit zero threshold is a valid value and is kept.
func (o SearchOptions) Normalised() SearchOptions {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.SimilarityThreshold == nil {
		o.SimilarityThreshold = Threshold(DefaultSimilarityThreshold)
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultSearchBatchSize
	}
	return o
}

// SearchResult is a single formatted retrieval hit.
type SearchResult struct {
	// MessageID identifies the matched message. Zero for notices.
	MessageID int64

	// ThreadID identifies the conversation the message belongs to.
	ThreadID int64

	// Sender is the message author.
	Sender string

	// SentAt is the message timestamp.
	SentAt time.Time

	// Relevance is the similarity score as an integer percentage.
	Relevance int

	// Excerpt is the message body truncated to ExcerptLength, with an
	// ellipsis marker when truncated. For notices it carries the
	// explanatory text instead.
	Excerpt string

	// Notice marks explanatory pseudo-results ("not yet indexed",
	// engine failures). Callers render these instead of hits.
	Notice bool
}

// NoticeResult builds an explanatory pseudo-result. Search always
// answers with human-readable text, never a blank response.
func NoticeResult(text string) SearchResult {
	return SearchResult{Excerpt: text, Notice: true}
}
