// Package services implements the driving port interfaces.
// Services contain the retrieval, indexing, and tool-dispatch logic
// and orchestrate calls to driven ports (adapters).
//
// RetrievalService and IndexerService share the embedding index but
// never write concurrently: the indexer is the sole writer, searches
// only read. The ToolRegistryService is the fault boundary for the
// natural-language front end.
package services
