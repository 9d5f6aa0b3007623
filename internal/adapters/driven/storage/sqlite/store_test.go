package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilchat/recall/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedMessage(t *testing.T, store *Store, id, threadID int64, body string, sentAt time.Time) *domain.Message {
	t.Helper()
	msg := &domain.Message{
		ID:        id,
		ThreadID:  threadID,
		Sender:    "alice",
		Body:      body,
		SentAt:    sentAt,
		Direction: domain.DirectionReceived,
	}
	require.NoError(t, store.SaveMessage(context.Background(), msg))
	return msg
}

func TestSaveAndGetMessage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sentAt := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

	seedMessage(t, store, 1, 10, "dinner at seven", sentAt)

	got, err := store.GetMessage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ThreadID)
	assert.Equal(t, "dinner at seven", got.Body)
	assert.Equal(t, domain.DirectionReceived, got.Direction)
	assert.True(t, sentAt.Equal(got.SentAt))
	assert.Empty(t, got.Embedding)
}

func TestSaveMessageAssignsID(t *testing.T) {
	store := newTestStore(t)

	msg := &domain.Message{ThreadID: 1, Body: "hello", SentAt: time.Now()}
	require.NoError(t, store.SaveMessage(context.Background(), msg))
	assert.NotZero(t, msg.ID)
}

func TestGetMessageNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetMessage(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateEmbedding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedMessage(t, store, 1, 10, "dinner at seven", time.Now())

	generatedAt := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateEmbedding(ctx, 1, "0.5,0.5", 1, generatedAt))

	got, err := store.GetMessage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "0.5,0.5", got.Embedding)
	assert.Equal(t, 1, got.EmbeddingVersion)
	assert.True(t, generatedAt.Equal(got.EmbeddedAt))
}

func TestUpdateEmbeddingMissingMessage(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateEmbedding(context.Background(), 99, "0.5", 1, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPendingAndEmbeddedPartition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		seedMessage(t, store, i, 1, "message body", time.Now())
	}
	require.NoError(t, store.UpdateEmbedding(ctx, 2, "0.1,0.2", 1, time.Now()))
	require.NoError(t, store.UpdateEmbedding(ctx, 4, "0.3,0.4", 1, time.Now()))

	pending, err := store.GetMessagesNeedingEmbedding(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, int64(1), pending[0].ID)
	assert.Equal(t, int64(3), pending[1].ID)
	assert.Equal(t, int64(5), pending[2].ID)

	embedded, err := store.GetMessagesWithEmbeddings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, embedded, 2)
	assert.Equal(t, int64(2), embedded[0].ID)
	assert.Equal(t, int64(4), embedded[1].ID)

	count, err := store.GetEmbeddedMessageCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	total, err := store.GetTotalMessageCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestVersionBumpInvalidatesEmbeddings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMessage(t, store, 1, 1, "dinner", time.Now())
	require.NoError(t, store.UpdateEmbedding(ctx, 1, "0.9", 1, time.Now()))

	// Under version 2, the old vector no longer counts.
	pending, err := store.GetMessagesNeedingEmbedding(ctx, 2, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	embedded, err := store.GetMessagesWithEmbeddings(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, embedded)
}

func TestPagedScanIsStableAndComplete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 12; i++ {
		seedMessage(t, store, i, 1, "message body", time.Now())
		require.NoError(t, store.UpdateEmbedding(ctx, i, "0.5", 1, time.Now()))
	}

	var seen []int64
	for offset := 0; ; offset += 5 {
		page, err := store.GetMessagesWithEmbeddingsPaged(ctx, 1, 5, offset)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			seen = append(seen, m.ID)
		}
	}

	require.Len(t, seen, 12)
	for i, id := range seen {
		assert.Equal(t, int64(i+1), id)
	}
}

func TestGetAllMessageBodies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMessage(t, store, 1, 1, "dinner at seven", time.Now())
	seedMessage(t, store, 2, 1, "lunch plans tomorrow", time.Now())

	bodies, err := store.GetAllMessageBodies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dinner at seven", "lunch plans tomorrow"}, bodies)
}

func TestDeleteMessage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedMessage(t, store, 1, 1, "dinner", time.Now())

	require.NoError(t, store.DeleteMessage(ctx, 1))
	_, err := store.GetMessage(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListThreads(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seedMessage(t, store, 1, 100, "old thread", base)
	seedMessage(t, store, 2, 200, "newer thread", base.Add(time.Hour))
	seedMessage(t, store, 3, 200, "newest message", base.Add(2*time.Hour))

	threads, err := store.ListThreads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	// Most recent activity first.
	assert.Equal(t, int64(200), threads[0].ID)
	assert.Equal(t, 2, threads[0].MessageCount)
	assert.Equal(t, int64(100), threads[1].ID)
}
