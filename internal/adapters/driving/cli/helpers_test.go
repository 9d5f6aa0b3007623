package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veilchat/recall/internal/adapters/driven/embedding/hashtf"
	"github.com/veilchat/recall/internal/adapters/driven/storage/memory"
	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/services"
)

// setupTestServices wires the commands to in-memory services seeded
// with a few indexed messages, returning a cleanup func.
func setupTestServices(t *testing.T) func() {
	t.Helper()
	ctx := context.Background()
	store := memory.NewMessageStore()
	embedder := hashtf.New()

	bodies := []string{
		"see you at dinner tonight at seven",
		"lunch plans for tomorrow are cancelled",
		"package delivery arriving tomorrow morning",
	}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, body := range bodies {
		require.NoError(t, store.SaveMessage(ctx, &domain.Message{
			ThreadID: 1,
			Sender:   "alice",
			Body:     body,
			SentAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	search := services.NewRetrievalService(store, embedder)
	indexer := services.NewIndexerService(store, embedder)
	registry := services.NewToolRegistryService()
	services.RegisterMessageTools(registry, search, indexer, store)

	_, err := indexer.RunPass(ctx, 0, nil)
	require.NoError(t, err)

	SetServices(search, indexer, registry)
	return func() {
		SetServices(nil, nil, nil)
	}
}
