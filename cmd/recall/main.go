// Command recall is the entry point for the Recall CLI and MCP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/veilchat/recall/internal/adapters/driven/config/file"
	"github.com/veilchat/recall/internal/adapters/driven/corpus/bolt"
	"github.com/veilchat/recall/internal/adapters/driven/embedding/hashtf"
	"github.com/veilchat/recall/internal/adapters/driven/storage/sqlite"
	"github.com/veilchat/recall/internal/adapters/driving/cli"
	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/services"
	"github.com/veilchat/recall/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, cfgPath := loadConfig()
	logger.SetVerbose(cfg.Verbose)

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening message store: %w", err)
	}
	defer store.Close()

	embedder := hashtf.New()

	// The corpus snapshot only speeds up the first searches after a
	// restart; Recall works without it, so failures are not fatal.
	corpusStore, err := bolt.NewStore(cfg.DataDir)
	if err != nil {
		logger.Warn("Corpus snapshot store unavailable: %v", err)
		corpusStore = nil
	} else {
		defer corpusStore.Close()
		if snapshot, err := corpusStore.Load(ctx); err == nil {
			embedder.Restore(*snapshot)
			logger.Debug("Restored corpus snapshot: %d documents", snapshot.DocumentCount)
		} else if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Loading corpus snapshot failed: %v", err)
		}
	}

	search := services.NewRetrievalService(store, embedder)
	indexer := services.NewIndexerService(store, embedder)
	if corpusStore != nil {
		indexer.SetCorpusStore(corpusStore)
	}
	indexer.SetBatchRate(cfg.Indexer.BatchesPerSecond)

	registry := services.NewToolRegistryService()
	services.RegisterMessageTools(registry, search, indexer, store)

	scheduler := services.NewScheduler(cfg.SchedulerConfig(), store.SchedulerStore(), indexer)

	cli.SetConfig(cfg)
	cli.SetServices(search, indexer, registry)
	cli.SetScheduler(scheduler)
	cli.SetVersion(version)

	if cfgPath != "" {
		go watchConfig(ctx, cfgPath, indexer)
	}

	return cli.Execute()
}

// loadConfig reads the config file, falling back to defaults when the
// path cannot be determined or the file is unreadable.
func loadConfig() (file.Config, string) {
	path, err := file.DefaultPath()
	if err != nil {
		logger.Warn("Cannot determine config path: %v", err)
		return file.Default(), ""
	}

	cfg, err := file.Load(path)
	if err != nil {
		logger.Warn("Loading config failed, using defaults: %v", err)
		return file.Default(), path
	}
	return cfg, path
}

// watchConfig applies config changes while a long-running command is
// active.
func watchConfig(ctx context.Context, path string, indexer *services.IndexerService) {
	err := file.Watch(ctx, path, func(next file.Config) {
		cli.SetConfig(next)
		logger.SetVerbose(next.Verbose)
		indexer.SetBatchRate(next.Indexer.BatchesPerSecond)
	})
	if err != nil && ctx.Err() == nil {
		logger.Warn("Config watcher exited: %v", err)
	}
}
