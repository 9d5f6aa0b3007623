package bolt

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

func TestLoadWithoutSnapshot(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snapshot := domain.CorpusSnapshot{
		DocumentCount: 3,
		DocFreq:       map[string]int{"dinner": 2, "lunch": 1},
		RebuiltAt:     time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(ctx, snapshot))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.DocumentCount, loaded.DocumentCount)
	assert.Equal(t, snapshot.DocFreq, loaded.DocFreq)
	assert.True(t, snapshot.RebuiltAt.Equal(loaded.RebuiltAt))
}

func TestSaveReplacesSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.CorpusSnapshot{
		DocumentCount: 1,
		DocFreq:       map[string]int{"dinner": 1},
	}))
	require.NoError(t, store.Save(ctx, domain.CorpusSnapshot{
		DocumentCount: 2,
		DocFreq:       map[string]int{"lunch": 2},
	}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.DocumentCount)
	assert.Zero(t, loaded.DocFreq["dinner"])
	assert.Equal(t, 2, loaded.DocFreq["lunch"])
}
