package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilchat/recall/internal/adapters/driven/embedding/hashtf"
	"github.com/veilchat/recall/internal/adapters/driven/storage/memory"
	"github.com/veilchat/recall/internal/core/domain"
)

// mockCorpusStore implements driven.CorpusStore in memory.
type mockCorpusStore struct {
	saved   *domain.CorpusSnapshot
	saveErr error
}

func (m *mockCorpusStore) Save(_ context.Context, snapshot domain.CorpusSnapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &snapshot
	return nil
}

func (m *mockCorpusStore) Load(_ context.Context) (*domain.CorpusSnapshot, error) {
	if m.saved == nil {
		return nil, domain.ErrNotFound
	}
	return m.saved, nil
}

func (m *mockCorpusStore) Close() error { return nil }

// faultyEmbedder wraps a real embedder but fails for selected bodies.
type faultyEmbedder struct {
	*hashtf.Embedder
	bad map[string]bool
}

func (e *faultyEmbedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	if e.bad[text] {
		return nil, errors.New("embed exploded")
	}
	return e.Embedder.Embed(ctx, text)
}

func seedUnindexed(t *testing.T, bodies []string) *memory.MessageStore {
	t.Helper()
	store := memory.NewMessageStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, body := range bodies {
		require.NoError(t, store.SaveMessage(context.Background(), &domain.Message{
			ThreadID: 1,
			Sender:   "alice",
			Body:     body,
			SentAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
	return store
}

func TestRunPassEmbedsAllPending(t *testing.T) {
	store := seedUnindexed(t, fixtureBodies)
	embedder := hashtf.New()
	svc := NewIndexerService(store, embedder)
	ctx := context.Background()

	var updates []domain.IndexProgress
	result, err := svc.RunPass(ctx, 2, func(p domain.IndexProgress) {
		updates = append(updates, p)
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, len(fixtureBodies), result.ItemsProcessed)

	// Corpus was rebuilt from all bodies before embedding.
	assert.Equal(t, len(fixtureBodies), embedder.Snapshot().DocumentCount)

	// Every message now carries a current-version vector.
	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, status.TotalMessages, status.EmbeddedMessages)

	require.NotEmpty(t, updates)
	final := updates[len(updates)-1]
	assert.True(t, final.Done)
	assert.Equal(t, len(fixtureBodies), final.Processed)
	assert.Zero(t, final.Failed)
	for _, p := range updates {
		assert.Equal(t, final.PassID, p.PassID)
		assert.Equal(t, len(fixtureBodies), p.Total)
	}
}

func TestRunPassIsIdempotent(t *testing.T) {
	store := seedUnindexed(t, fixtureBodies)
	svc := NewIndexerService(store, hashtf.New())
	ctx := context.Background()

	first, err := svc.RunPass(ctx, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, len(fixtureBodies), first.ItemsProcessed)

	second, err := svc.RunPass(ctx, 0, nil)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Zero(t, second.ItemsProcessed)
}

func TestRunPassContinuesPastFailedBatch(t *testing.T) {
	bodies := []string{
		"first message that cannot embed",
		"second message that cannot embed",
		"dinner plans for tonight at seven",
	}
	store := seedUnindexed(t, bodies)
	embedder := &faultyEmbedder{
		Embedder: hashtf.New(),
		bad:      map[string]bool{bodies[0]: true, bodies[1]: true},
	}
	svc := NewIndexerService(store, embedder)
	ctx := context.Background()

	// The first fetched batch fails entirely. Pending order is stable,
	// so the pass must still reach the embeddable message behind it.
	result, err := svc.RunPass(ctx, 2, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.ItemsProcessed)
	assert.Contains(t, result.Error, "2 messages failed")

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.EmbeddedMessages)

	msg, err := store.GetMessage(ctx, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Embedding)
}

func TestSetBatchRateDuringPass(t *testing.T) {
	store := seedUnindexed(t, fixtureBodies)
	svc := NewIndexerService(store, hashtf.New())

	// Config reloads retune the rate while a pass is in flight; the
	// change lands between batches without disturbing the pass.
	stop := make(chan struct{})
	go func() {
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				svc.SetBatchRate(float64(1000 + i))
			}
		}
	}()

	result, err := svc.RunPass(context.Background(), 1, nil)
	close(stop)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, len(fixtureBodies), result.ItemsProcessed)
}

func TestRunPassCancellationKeepsProgress(t *testing.T) {
	store := seedUnindexed(t, fixtureBodies)
	svc := NewIndexerService(store, hashtf.New())

	ctx, cancel := context.WithCancel(context.Background())
	result, err := svc.RunPass(ctx, 1, func(p domain.IndexProgress) {
		if p.Processed >= 2 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.GreaterOrEqual(t, result.ItemsProcessed, 2)

	// Completed work survives cancellation; a re-run finishes the rest
	// without repeating it.
	resumed, err := svc.RunPass(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, len(fixtureBodies)-result.ItemsProcessed, resumed.ItemsProcessed)
}

func TestRunPassRejectsConcurrentPass(t *testing.T) {
	store := seedUnindexed(t, fixtureBodies)
	svc := NewIndexerService(store, hashtf.New())
	ctx := context.Background()

	var nested error
	called := false
	_, err := svc.RunPass(ctx, 1, func(domain.IndexProgress) {
		if !called {
			called = true
			_, nested = svc.RunPass(ctx, 1, nil)
		}
	})
	require.NoError(t, err)
	assert.ErrorIs(t, nested, domain.ErrIndexingInProgress)
}

func TestRunPassPersistsCorpusSnapshot(t *testing.T) {
	store := seedUnindexed(t, fixtureBodies)
	svc := NewIndexerService(store, hashtf.New())
	corpus := &mockCorpusStore{}
	svc.SetCorpusStore(corpus)

	_, err := svc.RunPass(context.Background(), 0, nil)
	require.NoError(t, err)
	require.NotNil(t, corpus.saved)
	assert.Equal(t, len(fixtureBodies), corpus.saved.DocumentCount)
}

func TestRunPassSnapshotFailureIsNotFatal(t *testing.T) {
	store := seedUnindexed(t, fixtureBodies)
	svc := NewIndexerService(store, hashtf.New())
	svc.SetCorpusStore(&mockCorpusStore{saveErr: assert.AnError})

	result, err := svc.RunPass(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestReindexReembedsEverything(t *testing.T) {
	store := seedUnindexed(t, fixtureBodies)
	svc := NewIndexerService(store, hashtf.New())
	ctx := context.Background()

	_, err := svc.RunPass(ctx, 0, nil)
	require.NoError(t, err)

	result, err := svc.Reindex(ctx, 0, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, len(fixtureBodies), result.ItemsProcessed)
}

func TestStatusReportsCoverage(t *testing.T) {
	store := seedUnindexed(t, fixtureBodies)
	embedder := hashtf.New()
	svc := NewIndexerService(store, embedder)
	ctx := context.Background()

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(fixtureBodies), status.TotalMessages)
	assert.Zero(t, status.EmbeddedMessages)
	assert.Equal(t, embedder.Version(), status.EmbeddingVersion)
	assert.False(t, status.Running)

	_, err = svc.RunPass(ctx, 0, nil)
	require.NoError(t, err)

	status, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(fixtureBodies), status.EmbeddedMessages)
}
