package hashtf

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/ports/driven"
)

const (
	// Dimensions is the fixed vector size D. Every token hashes onto
	// one of D positions.
	Dimensions = 384

	// SchemaVersion identifies the (model, dimension) pair stored
	// vectors were computed under. Bump it to force a full re-embed.
	SchemaVersion = 1
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// Embedder generates feature-hashed TF-IDF vectors.
//
// The document-frequency table and document count are guarded by a
// read-write mutex: Embed and Similarity take read locks, while
// RebuildCorpus and Restore replace the whole table under the write
// lock. A rebuild is therefore atomic from the embedding side - no
// vector is ever generated against a half-updated corpus.
type Embedder struct {
	mu        sync.RWMutex
	docFreq   map[string]int
	docCount  int
	rebuiltAt time.Time
}

// New creates an embedder with empty corpus statistics. Until the
// first RebuildCorpus (or Restore), IDF defaults to 1.0 and vectors
// are weighted by term frequency alone.
func New() *Embedder {
	return &Embedder{docFreq: make(map[string]int)}
}

// Embed generates the vector for the given text. Text with no usable
// tokens embeds to the all-zero vector.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make(domain.Vector, Dimensions)
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	e.mu.RLock()
	acc := make([]float64, Dimensions)
	total := float64(len(tokens))
	for tok, count := range counts {
		tf := float64(count) / total
		acc[bucket(tok)] += tf * e.idfLocked(tok)
	}
	e.mu.RUnlock()

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i, v := range acc {
			vec[i] = float32(v / norm)
		}
	}

	return vec, nil
}

// idfLocked computes the smoothed inverse document frequency for a
// token. Callers must hold at least the read lock. With an empty
// corpus (docCount == 0) every token weighs 1.0, which keeps
// embeddings well-defined before any indexing has occurred.
func (e *Embedder) idfLocked(tok string) float64 {
	if e.docCount == 0 {
		return 1.0
	}
	n := float64(e.docCount)
	df := float64(e.docFreq[tok])
	return math.Log((n+1)/(df+1)) + 1
}

// bucket maps a token onto a deterministic vector position.
// Collisions are accepted; see the package comment.
func bucket(tok string) int {
	h := fnv.New32a()
	h.Write([]byte(tok)) //nolint:errcheck // fnv never fails
	return int(h.Sum32() % Dimensions)
}

// Similarity returns the cosine similarity of two vectors clamped to
// [0,1]. The zero vector scores 0 against everything, including
// itself, by convention.
//
// A dimension mismatch indicates version skew between stored vectors,
// which is a bug, not a recoverable runtime condition.
func (e *Embedder) Similarity(a, b domain.Vector) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("hashtf: vector dimension mismatch: %d != %d", len(a), len(b)))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}

// RebuildCorpus atomically replaces the document-frequency table and
// document count from the given document texts. Each document
// contributes the set of its unique tokens, so a token repeated within
// one document still increments its frequency by exactly one.
func (e *Embedder) RebuildCorpus(ctx context.Context, documents []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	docFreq := make(map[string]int)
	for _, doc := range documents {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}

	e.mu.Lock()
	e.docFreq = docFreq
	e.docCount = len(documents)
	e.rebuiltAt = time.Now()
	e.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the current corpus statistics.
func (e *Embedder) Snapshot() domain.CorpusSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	df := make(map[string]int, len(e.docFreq))
	for tok, n := range e.docFreq {
		df[tok] = n
	}
	return domain.CorpusSnapshot{
		DocumentCount: e.docCount,
		DocFreq:       df,
		RebuiltAt:     e.rebuiltAt,
	}
}

// Restore replaces the corpus statistics from a snapshot, typically
// one persisted by a previous session.
func (e *Embedder) Restore(snapshot domain.CorpusSnapshot) {
	df := make(map[string]int, len(snapshot.DocFreq))
	for tok, n := range snapshot.DocFreq {
		df[tok] = n
	}

	e.mu.Lock()
	e.docFreq = df
	e.docCount = snapshot.DocumentCount
	e.rebuiltAt = snapshot.RebuiltAt
	e.mu.Unlock()
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int { return Dimensions }

// Version returns the embedding schema version.
func (e *Embedder) Version() int { return SchemaVersion }
