// Package bolt persists corpus-statistics snapshots in a bbolt file.
// The snapshot is transient state - it can always be rebuilt from
// message bodies - but keeping it across restarts means embeddings are
// corpus-weighted from the first query of a session.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/ports/driven"
)

var (
	bucketCorpus = []byte("corpus")
	keySnapshot  = []byte("snapshot")
)

// Ensure Store implements the interface.
var _ driven.CorpusStore = (*Store)(nil)

// Store is a bbolt-backed CorpusStore. A single bucket holds a single
// JSON-encoded snapshot; Save replaces it wholesale.
type Store struct {
	db *bbolt.DB
}

// NewStore opens (or creates) the snapshot database at dataDir.
// If dataDir is empty, defaults to ~/.recall/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recall", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dataDir, "corpus.db"), 0600, &bbolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("opening corpus database: %w", err)
	}

	return &Store{db: db}, nil
}

// Save replaces the persisted snapshot.
func (s *Store) Save(_ context.Context, snapshot domain.CorpusSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketCorpus)
		if err != nil {
			return err
		}
		return b.Put(keySnapshot, data)
	})
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted snapshot, or domain.ErrNotFound if no
// snapshot has been saved yet.
func (s *Store) Load(_ context.Context) (*domain.CorpusSnapshot, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCorpus)
		if b == nil {
			return nil
		}
		if v := b.Get(keySnapshot); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if data == nil {
		return nil, domain.ErrNotFound
	}

	var snapshot domain.CorpusSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snapshot, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
