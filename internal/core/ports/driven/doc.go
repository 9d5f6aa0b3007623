// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - MessageStore: message persistence and the embedding index columns
//   - Embedder: converts text into fixed-dimension vectors and scores them
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CorpusStore: persisted corpus-statistics snapshots (warm start).
//     Without it, the first embeddings after a cold start are weighted
//     by term frequency alone until the first corpus rebuild.
//   - SchedulerStore: scheduler state persistence. Without it, periodic
//     indexing is disabled and passes run on demand only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
