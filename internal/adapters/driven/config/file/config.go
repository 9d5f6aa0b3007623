package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/veilchat/recall/internal/core/domain"
)

// Config is the full application configuration, persisted as TOML in
// the Recall config directory.
type Config struct {
	// DataDir is where databases live. Empty means ~/.recall/data.
	DataDir string `toml:"data_dir"`

	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`

	Search  SearchConfig  `toml:"search"`
	Indexer IndexerConfig `toml:"indexer"`
}

// SearchConfig holds retrieval defaults.
type SearchConfig struct {
	// MaxResults caps results per search.
	MaxResults int `toml:"max_results"`

	// SimilarityThreshold is the minimum similarity in [0,1].
	SimilarityThreshold float64 `toml:"similarity_threshold"`

	// BatchSize is the index page size for batched scans.
	BatchSize int `toml:"batch_size"`
}

// IndexerConfig holds background indexing settings.
type IndexerConfig struct {
	// Enabled is the master switch for scheduled indexing.
	Enabled bool `toml:"enabled"`

	// BatchSize is the number of messages embedded per batch.
	BatchSize int `toml:"batch_size"`

	// IntervalMinutes is how often a scheduled pass runs.
	IntervalMinutes int `toml:"interval_minutes"`

	// BatchesPerSecond throttles indexing; 0 means unthrottled.
	BatchesPerSecond float64 `toml:"batches_per_second"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Search: SearchConfig{
			MaxResults:          domain.DefaultMaxResults,
			SimilarityThreshold: domain.DefaultSimilarityThreshold,
			BatchSize:           domain.DefaultSearchBatchSize,
		},
		Indexer: IndexerConfig{
			Enabled:         true,
			BatchSize:       domain.DefaultIndexBatchSize,
			IntervalMinutes: 15,
		},
	}
}

// SearchOptions converts the search section into retrieval options.
// A zero threshold in the file means "not set" and falls back to the
// default; explicit zeros only exist on the programmatic surfaces.
func (c Config) SearchOptions() domain.SearchOptions {
	opts := domain.SearchOptions{
		MaxResults: c.Search.MaxResults,
		BatchSize:  c.Search.BatchSize,
	}
	if c.Search.SimilarityThreshold > 0 {
		opts.SimilarityThreshold = domain.Threshold(c.Search.SimilarityThreshold)
	}
	return opts.Normalised()
}

// SchedulerConfig converts the indexer section into scheduler
// configuration.
func (c Config) SchedulerConfig() domain.SchedulerConfig {
	interval := time.Duration(c.Indexer.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return domain.SchedulerConfig{
		Enabled: c.Indexer.Enabled,
		TaskConfigs: map[string]domain.TaskConfig{
			domain.TaskIDMessageIndex: {
				Enabled:  c.Indexer.Enabled,
				Interval: interval,
			},
		},
	}
}

// DefaultPath returns the default config file location,
// ~/.recall/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".recall", "config.toml"), nil
}

// Load reads the configuration at path. A missing file yields the
// defaults; fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating the directory if
// needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	// Restricted permissions: the config directory is per-user state.
	return os.WriteFile(path, data, 0600)
}
