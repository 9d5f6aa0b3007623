package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/ports/driven"
	"github.com/veilchat/recall/internal/core/ports/driving"
	"github.com/veilchat/recall/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.SearchService = (*RetrievalService)(nil)

// User-facing notices returned instead of errors. Search always
// answers; a conversational surface cannot surface an exception.
const (
	noticeNotIndexed  = "Messages are not yet indexed. Run an indexing pass and try again."
	noticeUnavailable = "Search is temporarily unavailable."
)

// scoredMessage holds an intermediate candidate before formatting.
type scoredMessage struct {
	msg        domain.Message
	similarity float64
}

// RetrievalService ranks indexed messages against a query by cosine
// similarity over their stored embeddings.
type RetrievalService struct {
	store    driven.MessageStore
	embedder driven.Embedder
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(store driven.MessageStore, embedder driven.Embedder) *RetrievalService {
	return &RetrievalService{
		store:    store,
		embedder: embedder,
	}
}

// Search scores every indexed message against the query in a single
// full scan. Suitable for small corpora; SearchBatched is the
// memory-bounded path.
func (s *RetrievalService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	opts = opts.Normalised()

	return s.run(ctx, query, opts, func(queryVec domain.Vector) ([]scoredMessage, error) {
		messages, err := s.store.GetMessagesWithEmbeddings(ctx, s.embedder.Version())
		if err != nil {
			return nil, fmt.Errorf("load indexed messages: %w", err)
		}
		return s.score(messages, queryVec, *opts.SimilarityThreshold), nil
	})
}

// SearchBatched is semantically identical to Search but pages through
// the index in fixed-size batches so the full index never has to fit
// in memory at once. Both paths keep every candidate above the
// threshold before ranking, so the returned set is the same.
func (s *RetrievalService) SearchBatched(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	opts = opts.Normalised()

	return s.run(ctx, query, opts, func(queryVec domain.Vector) ([]scoredMessage, error) {
		var candidates []scoredMessage
		for offset := 0; ; offset += opts.BatchSize {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			page, err := s.store.GetMessagesWithEmbeddingsPaged(ctx, s.embedder.Version(), opts.BatchSize, offset)
			if err != nil {
				return nil, fmt.Errorf("load indexed messages page at %d: %w", offset, err)
			}
			if len(page) == 0 {
				break
			}
			candidates = append(candidates, s.score(page, queryVec, *opts.SimilarityThreshold)...)
			if len(page) < opts.BatchSize {
				break
			}
		}
		return candidates, nil
	})
}

// BuildContext concatenates top search results into a single text
// block bounded by maxLength characters. Retrieval is configured by
// opts exactly as for Search. Records are dropped whole rather than
// truncated mid-record, so a downstream consumer never sees a partial
// message. Returns the empty string when no message clears the
// similarity threshold.
func (s *RetrievalService) BuildContext(
	ctx context.Context, query string, opts domain.SearchOptions, maxLength int,
) (string, error) {
	logger.Section("Context Building")

	results, err := s.Search(ctx, query, opts.Normalised())
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, res := range results {
		if res.Notice {
			continue
		}
		record := formatContextRecord(res)
		need := len(record)
		if b.Len() > 0 {
			need++ // newline separator
		}
		if b.Len()+need > maxLength {
			logger.Debug("Context budget reached at %d/%d characters, stopping", b.Len(), maxLength)
			break
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(record)
	}

	logger.Debug("Context block: %d characters", b.Len())
	return b.String(), nil
}

// run executes the shared search pipeline: embed the query, collect
// scored candidates via scan, rank, and format. The scan strategy is
// the only difference between Search and SearchBatched.
func (s *RetrievalService) run(
	ctx context.Context, query string,
	opts domain.SearchOptions,
	scan func(queryVec domain.Vector) ([]scoredMessage, error),
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	embedded, err := s.store.GetEmbeddedMessageCount(ctx, s.embedder.Version())
	if err != nil {
		logger.Error("Index status check failed: %v", err)
		return []domain.SearchResult{domain.NoticeResult(noticeUnavailable)}, nil
	}
	if embedded == 0 {
		// Callers must be able to tell "no index yet" from "no matches".
		logger.Info("No messages indexed yet")
		return []domain.SearchResult{domain.NoticeResult(noticeNotIndexed)}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Error("Query embedding failed: %v", err)
		return []domain.SearchResult{domain.NoticeResult(noticeUnavailable)}, nil
	}

	candidates, err := scan(queryVec)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Error("Index scan failed: %v", err)
		return []domain.SearchResult{domain.NoticeResult(noticeUnavailable)}, nil
	}
	logger.Debug("Candidates above threshold %.2f: %d", *opts.SimilarityThreshold, len(candidates))

	rankCandidates(candidates)
	if len(candidates) > opts.MaxResults {
		candidates = candidates[:opts.MaxResults]
	}

	results := make([]domain.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, formatResult(c))
	}
	logger.Info("Final results: %d", len(results))

	return results, nil
}

// score computes query similarity for each message and keeps those at
// or above the threshold. Malformed stored vectors are skipped rather
// than aborting the scan.
func (s *RetrievalService) score(
	messages []domain.Message, queryVec domain.Vector, threshold float64,
) []scoredMessage {
	kept := make([]scoredMessage, 0, len(messages))
	for _, msg := range messages {
		vec, err := domain.DecodeVector(msg.Embedding)
		if err != nil {
			logger.Warn("Skipping message %d: %v", msg.ID, err)
			continue
		}
		if len(vec) != s.embedder.Dimensions() {
			logger.Warn("Skipping message %d: stored vector has %d dimensions, want %d",
				msg.ID, len(vec), s.embedder.Dimensions())
			continue
		}
		sim := s.embedder.Similarity(queryVec, vec)
		if sim >= threshold {
			kept = append(kept, scoredMessage{msg: msg, similarity: sim})
		}
	}
	return kept
}

// rankCandidates orders by similarity descending, then most recent
// first, then message ID ascending. The full tie-break chain makes
// the ordering deterministic regardless of scan order.
func rankCandidates(candidates []scoredMessage) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.similarity != b.similarity {
			return a.similarity > b.similarity
		}
		if !a.msg.SentAt.Equal(b.msg.SentAt) {
			return a.msg.SentAt.After(b.msg.SentAt)
		}
		return a.msg.ID < b.msg.ID
	})
}

// formatResult converts a scored candidate into a display record.
func formatResult(c scoredMessage) domain.SearchResult {
	return domain.SearchResult{
		MessageID: c.msg.ID,
		ThreadID:  c.msg.ThreadID,
		Sender:    c.msg.Sender,
		SentAt:    c.msg.SentAt,
		Relevance: int(c.similarity*100 + 0.5),
		Excerpt:   excerpt(c.msg.Body, domain.ExcerptLength),
	}
}

// excerpt truncates body to limit characters, appending an ellipsis
// marker when truncated. Truncation is rune-safe.
func excerpt(body string, limit int) string {
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + "..."
}

// formatContextRecord renders one search result as a context line:
// metadata header followed by the excerpt.
func formatContextRecord(res domain.SearchResult) string {
	return fmt.Sprintf("[%s, %s] %s",
		res.Sender, res.SentAt.Format("2006-01-02 15:04"), res.Excerpt)
}
