package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/ports/driven"
	"github.com/veilchat/recall/internal/core/ports/driving"
	"github.com/veilchat/recall/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.Indexer = (*IndexerService)(nil)

// IndexerService embeds messages in the background and keeps corpus
// statistics current. It is the sole writer of embeddings; searches
// only ever read them.
type IndexerService struct {
	store       driven.MessageStore
	embedder    driven.Embedder
	corpusStore driven.CorpusStore

	mu      sync.Mutex
	limiter *rate.Limiter
	running bool
}

// NewIndexerService creates a new indexer service.
func NewIndexerService(store driven.MessageStore, embedder driven.Embedder) *IndexerService {
	return &IndexerService{
		store:    store,
		embedder: embedder,
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
}

// SetCorpusStore enables persisting corpus snapshots after each
// rebuild so embeddings are corpus-weighted immediately on restart.
func (s *IndexerService) SetCorpusStore(store driven.CorpusStore) {
	s.corpusStore = store
}

// SetBatchRate throttles indexing to at most the given number of
// batches per second, keeping a background pass from monopolizing the
// CPU while the application is in use. Safe to call while a pass is
// running; the config watcher applies rate changes through it.
func (s *IndexerService) SetBatchRate(batchesPerSecond float64) {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if batchesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(batchesPerSecond), 1)
	}

	s.mu.Lock()
	s.limiter = limiter
	s.mu.Unlock()
}

// batchLimiter reads the current limiter under the lock so rate
// changes land between batches of an in-flight pass.
func (s *IndexerService) batchLimiter() *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limiter
}

// RunPass embeds all messages lacking a current-version vector.
// Idempotent: pending is defined purely by the absence of a
// current-version embedding, so a re-run after an interruption picks
// up exactly where the last pass stopped.
func (s *IndexerService) RunPass(
	ctx context.Context, batchSize int, progress driving.ProgressFunc,
) (*domain.TaskResult, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	if batchSize <= 0 {
		batchSize = domain.DefaultIndexBatchSize
	}

	passID := uuid.NewString()
	result := &domain.TaskResult{
		TaskID:    domain.TaskIDMessageIndex,
		StartedAt: time.Now(),
	}

	logger.Section("Indexing Pass")
	logger.Info("Pass %s starting (batch size %d)", passID, batchSize)

	// Rebuild corpus statistics once per pass, from a snapshot of all
	// bodies gathered before any embedding. Every vector written in
	// this pass is weighted against the same corpus.
	bodies, err := s.store.GetAllMessageBodies(ctx)
	if err != nil {
		return s.fail(result, fmt.Errorf("load message bodies: %w", err))
	}
	if err := s.embedder.RebuildCorpus(ctx, bodies); err != nil {
		return s.fail(result, fmt.Errorf("rebuild corpus: %w", err))
	}
	logger.Debug("Corpus rebuilt from %d documents", len(bodies))
	s.persistSnapshot(ctx)

	total, err := s.pendingEstimate(ctx)
	if err != nil {
		return s.fail(result, err)
	}
	logger.Info("Messages needing embedding: %d", total)

	processed, failed := 0, 0
	skip := make(map[int64]bool)

	for {
		if err := ctx.Err(); err != nil {
			// Leave partial progress in place; it is always valid for
			// some messages to be embedded and others not.
			logger.Warn("Pass %s cancelled after %d messages", passID, processed)
			result.ItemsProcessed = processed
			return s.fail(result, err)
		}
		if err := s.batchLimiter().Wait(ctx); err != nil {
			result.ItemsProcessed = processed
			return s.fail(result, err)
		}

		// Messages that failed this pass stay pending in the store, and
		// pending order is stable, so fetch past the skip set: a failed
		// head must not starve the messages behind it.
		batch, err := s.store.GetMessagesNeedingEmbedding(ctx, s.embedder.Version(), batchSize+len(skip))
		if err != nil {
			result.ItemsProcessed = processed
			return s.fail(result, fmt.Errorf("load pending messages: %w", err))
		}

		remaining := make([]domain.Message, 0, batchSize)
		for _, msg := range batch {
			if skip[msg.ID] {
				continue
			}
			remaining = append(remaining, msg)
			if len(remaining) == batchSize {
				break
			}
		}
		if len(remaining) == 0 {
			break
		}

		for _, msg := range remaining {
			if err := s.embedOne(ctx, msg); err != nil {
				if ctx.Err() != nil {
					result.ItemsProcessed = processed
					return s.fail(result, ctx.Err())
				}
				logger.Warn("Message %d failed: %v", msg.ID, err)
				skip[msg.ID] = true
				failed++
				continue
			}
			processed++
		}

		emit(progress, domain.IndexProgress{
			PassID: passID, Processed: processed, Failed: failed, Total: total,
		})
	}

	emit(progress, domain.IndexProgress{
		PassID: passID, Processed: processed, Failed: failed, Total: total, Done: true,
	})

	result.EndedAt = time.Now()
	result.Success = failed == 0
	result.ItemsProcessed = processed
	if failed > 0 {
		result.Error = fmt.Sprintf("%d messages failed to embed", failed)
	}
	logger.Info("Pass %s done: %d embedded, %d failed", passID, processed, failed)

	return result, nil
}

// Reindex clears every current-version vector and runs a full pass,
// re-embedding the whole store against fresh corpus statistics.
func (s *IndexerService) Reindex(
	ctx context.Context, batchSize int, progress driving.ProgressFunc,
) (*domain.TaskResult, error) {
	logger.Section("Reindex")

	messages, err := s.store.GetMessagesWithEmbeddings(ctx, s.embedder.Version())
	if err != nil {
		return nil, fmt.Errorf("load indexed messages: %w", err)
	}
	for _, msg := range messages {
		if err := s.store.UpdateEmbedding(ctx, msg.ID, "", 0, time.Time{}); err != nil {
			return nil, fmt.Errorf("clear embedding for message %d: %w", msg.ID, err)
		}
	}
	logger.Info("Cleared %d stored vectors", len(messages))

	return s.RunPass(ctx, batchSize, progress)
}

// Status reports embedding coverage of the message store.
func (s *IndexerService) Status(ctx context.Context) (*domain.IndexStatus, error) {
	total, err := s.store.GetTotalMessageCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	embedded, err := s.store.GetEmbeddedMessageCount(ctx, s.embedder.Version())
	if err != nil {
		return nil, fmt.Errorf("count embedded messages: %w", err)
	}

	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return &domain.IndexStatus{
		TotalMessages:    total,
		EmbeddedMessages: embedded,
		EmbeddingVersion: s.embedder.Version(),
		Running:          running,
	}, nil
}

// embedOne generates and stores the vector for a single message.
func (s *IndexerService) embedOne(ctx context.Context, msg domain.Message) error {
	vec, err := s.embedder.Embed(ctx, msg.Body)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if err := s.store.UpdateEmbedding(ctx, msg.ID, vec.Encode(), s.embedder.Version(), time.Now()); err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	return nil
}

// persistSnapshot saves the rebuilt corpus statistics. Failure is
// logged, not fatal: the snapshot only speeds up the next startup.
func (s *IndexerService) persistSnapshot(ctx context.Context) {
	if s.corpusStore == nil {
		return
	}
	if err := s.corpusStore.Save(ctx, s.embedder.Snapshot()); err != nil {
		logger.Warn("Persisting corpus snapshot failed: %v", err)
	}
}

// pendingEstimate computes the total estimate reported in progress
// updates.
func (s *IndexerService) pendingEstimate(ctx context.Context) (int, error) {
	total, err := s.store.GetTotalMessageCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	embedded, err := s.store.GetEmbeddedMessageCount(ctx, s.embedder.Version())
	if err != nil {
		return 0, fmt.Errorf("count embedded messages: %w", err)
	}
	return total - embedded, nil
}

// acquire marks a pass as running. Only one pass runs at a time.
func (s *IndexerService) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrIndexingInProgress
	}
	s.running = true
	return nil
}

func (s *IndexerService) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// fail finalises a result with an error outcome.
func (s *IndexerService) fail(result *domain.TaskResult, err error) (*domain.TaskResult, error) {
	result.EndedAt = time.Now()
	result.Success = false
	result.Error = err.Error()
	return result, err
}

func emit(progress driving.ProgressFunc, update domain.IndexProgress) {
	if progress != nil {
		progress(update)
	}
}
