package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilchat/recall/internal/core/domain"
)

func TestSaveAssignsSequentialIDs(t *testing.T) {
	store := NewMessageStore()
	ctx := context.Background()

	first := &domain.Message{Body: "one", SentAt: time.Now()}
	second := &domain.Message{Body: "two", SentAt: time.Now()}
	require.NoError(t, store.SaveMessage(ctx, first))
	require.NoError(t, store.SaveMessage(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func TestPendingExcludesCurrentVersionOnly(t *testing.T) {
	store := NewMessageStore()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.SaveMessage(ctx, &domain.Message{Body: "m", SentAt: time.Now()}))
	}
	require.NoError(t, store.UpdateEmbedding(ctx, 1, "0.5", 1, time.Now()))
	require.NoError(t, store.UpdateEmbedding(ctx, 3, "0.5", 2, time.Now()))

	// Version 1: message 3 is stale (version 2 vector != version 1).
	pending, err := store.GetMessagesNeedingEmbedding(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, int64(2), pending[0].ID)
	assert.Equal(t, int64(3), pending[1].ID)
	assert.Equal(t, int64(4), pending[2].ID)
}

func TestPagedMatchesFullScan(t *testing.T) {
	store := NewMessageStore()
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		msg := &domain.Message{Body: "m", SentAt: time.Now()}
		require.NoError(t, store.SaveMessage(ctx, msg))
		require.NoError(t, store.UpdateEmbedding(ctx, msg.ID, "0.5", 1, time.Now()))
	}

	full, err := store.GetMessagesWithEmbeddings(ctx, 1)
	require.NoError(t, err)

	var paged []domain.Message
	for offset := 0; ; offset += 4 {
		page, err := store.GetMessagesWithEmbeddingsPaged(ctx, 1, 4, offset)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		paged = append(paged, page...)
	}

	assert.Equal(t, full, paged)
}

func TestUpdateEmbeddingMissing(t *testing.T) {
	store := NewMessageStore()

	err := store.UpdateEmbedding(context.Background(), 7, "0.5", 1, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListThreadsOrdering(t *testing.T) {
	store := NewMessageStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveMessage(ctx, &domain.Message{ThreadID: 1, Sender: "bob", Body: "a", SentAt: base}))
	require.NoError(t, store.SaveMessage(ctx, &domain.Message{ThreadID: 2, Sender: "carol", Body: "b", SentAt: base.Add(time.Hour)}))
	require.NoError(t, store.SaveMessage(ctx, &domain.Message{ThreadID: 2, Sender: "carol", Body: "c", SentAt: base.Add(2 * time.Hour)}))

	threads, err := store.ListThreads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, int64(2), threads[0].ID)
	assert.Equal(t, 2, threads[0].MessageCount)
	assert.Equal(t, int64(1), threads[1].ID)
}
