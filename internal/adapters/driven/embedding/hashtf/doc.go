// Package hashtf implements the embedding engine as a feature-hashed
// TF-IDF vectoriser.
//
// Instead of a vocabulary table, tokens are hashed onto a fixed number
// of vector positions. Collisions are accepted and intentional: the
// vector size stays constant regardless of corpus size, which matters
// on a storage- and memory-constrained device. The cost is a slight
// loss of discrimination when unrelated tokens share a bucket.
//
// Document-frequency statistics are process-wide mutable state with an
// explicit rebuild lifecycle: RebuildCorpus replaces them atomically,
// never merges. Embeddings generated before the first rebuild are
// weighted by term frequency alone (IDF = 1).
package hashtf
