package services

import (
	"context"
	"time"

	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/ports/driven"
	"github.com/veilchat/recall/internal/core/ports/driving"
)

// Bounds and defaults for tool parameters. Clamping is applied inside
// the tool bodies, after dispatcher validation.
const (
	toolMaxResultsDefault = 10
	toolMaxResultsCeiling = 20

	toolThreadLimitDefault = 20
	toolThreadLimitCeiling = 100

	toolContextResultsDefault = 5
	toolContextLengthDefault  = 2000
	toolContextLengthFloor    = 100
	toolContextLengthCeiling  = 10000

	toolReindexBatchCeiling = 1000
)

// RegisterMessageTools wires the retrieval tools into a registry. The
// registered set is the complete capability surface exposed to the
// natural-language front end.
func RegisterMessageTools(
	registry *ToolRegistryService,
	search driving.SearchService,
	indexer driving.Indexer,
	store driven.MessageStore,
) {
	registry.Register(searchMessagesDescriptor(), searchMessagesTool(search))
	registry.Register(listThreadsDescriptor(), listThreadsTool(store))
	registry.Register(buildContextDescriptor(), buildContextTool(search))
	registry.Register(indexStatusDescriptor(), indexStatusTool(indexer))
	registry.Register(reindexMessagesDescriptor(), reindexMessagesTool(indexer))
}

func searchMessagesDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        "search_messages",
		Description: "Search indexed messages by semantic similarity to a query.",
		Params: []domain.ToolParam{
			{Name: "query", Type: domain.ParamString, Description: "Search query text.", Required: true},
			{Name: "max_results", Type: domain.ParamInt, Description: "Maximum results to return (1-20).", Default: toolMaxResultsDefault},
			{Name: "similarity_threshold", Type: domain.ParamFloat, Description: "Minimum similarity in [0,1].", Default: domain.DefaultSimilarityThreshold},
		},
	}
}

func searchMessagesTool(search driving.SearchService) ToolHandler {
	return func(ctx context.Context, args map[string]any) domain.ToolResult {
		// An explicit zero threshold is honoured: raising the threshold
		// from there can only shrink the result set.
		opts := domain.SearchOptions{
			MaxResults:          clampInt(argInt(args, "max_results"), 1, toolMaxResultsCeiling),
			SimilarityThreshold: domain.Threshold(clampFloat(argFloat(args, "similarity_threshold"), 0, 1)),
		}

		results, err := search.SearchBatched(ctx, argString(args, "query"), opts)
		if err != nil {
			return domain.ToolFailure(domain.ToolErrInternal, "search failed: %v", err)
		}

		formatted := make([]map[string]any, 0, len(results))
		for _, res := range results {
			formatted = append(formatted, formatResultPayload(res))
		}
		return domain.ToolSuccess(map[string]any{
			"results": formatted,
			"count":   len(formatted),
		})
	}
}

func listThreadsDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        "list_threads",
		Description: "List conversation threads ordered by most recent activity.",
		Params: []domain.ToolParam{
			{Name: "limit", Type: domain.ParamInt, Description: "Maximum threads to return (1-100).", Default: toolThreadLimitDefault},
		},
	}
}

func listThreadsTool(store driven.MessageStore) ToolHandler {
	return func(ctx context.Context, args map[string]any) domain.ToolResult {
		limit := clampInt(argInt(args, "limit"), 1, toolThreadLimitCeiling)

		threads, err := store.ListThreads(ctx, limit)
		if err != nil {
			return domain.ToolFailure(domain.ToolErrInternal, "list threads failed: %v", err)
		}

		formatted := make([]map[string]any, 0, len(threads))
		for _, thread := range threads {
			formatted = append(formatted, map[string]any{
				"thread_id":     thread.ID,
				"title":         thread.Title,
				"message_count": thread.MessageCount,
				"last_activity": thread.LastActivity.Format(time.RFC3339),
			})
		}
		return domain.ToolSuccess(map[string]any{
			"threads": formatted,
			"count":   len(formatted),
		})
	}
}

func buildContextDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        "build_context",
		Description: "Build a bounded text block of messages relevant to a query.",
		Params: []domain.ToolParam{
			{Name: "query", Type: domain.ParamString, Description: "Query to retrieve context for.", Required: true},
			{Name: "max_results", Type: domain.ParamInt, Description: "Maximum messages to include (1-20).", Default: toolContextResultsDefault},
			{Name: "max_length", Type: domain.ParamInt, Description: "Character budget for the block.", Default: toolContextLengthDefault},
			{Name: "similarity_threshold", Type: domain.ParamFloat, Description: "Minimum similarity in [0,1].", Default: domain.DefaultSimilarityThreshold},
		},
	}
}

func buildContextTool(search driving.SearchService) ToolHandler {
	return func(ctx context.Context, args map[string]any) domain.ToolResult {
		opts := domain.SearchOptions{
			MaxResults:          clampInt(argInt(args, "max_results"), 1, toolMaxResultsCeiling),
			SimilarityThreshold: domain.Threshold(clampFloat(argFloat(args, "similarity_threshold"), 0, 1)),
		}
		maxLength := clampInt(argInt(args, "max_length"), toolContextLengthFloor, toolContextLengthCeiling)

		block, err := search.BuildContext(ctx, argString(args, "query"), opts, maxLength)
		if err != nil {
			return domain.ToolFailure(domain.ToolErrInternal, "build context failed: %v", err)
		}
		return domain.ToolSuccess(map[string]any{
			"context": block,
			"length":  len(block),
		})
	}
}

func indexStatusDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        "index_status",
		Description: "Report how many messages are indexed for search.",
	}
}

func indexStatusTool(indexer driving.Indexer) ToolHandler {
	return func(ctx context.Context, _ map[string]any) domain.ToolResult {
		status, err := indexer.Status(ctx)
		if err != nil {
			return domain.ToolFailure(domain.ToolErrInternal, "index status failed: %v", err)
		}
		return domain.ToolSuccess(map[string]any{
			"total_messages":    status.TotalMessages,
			"embedded_messages": status.EmbeddedMessages,
			"embedding_version": status.EmbeddingVersion,
			"running":           status.Running,
		})
	}
}

func reindexMessagesDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        "reindex_messages",
		Description: "Clear stored vectors and rebuild the embedding index.",
		Params: []domain.ToolParam{
			{Name: "batch_size", Type: domain.ParamInt, Description: "Messages embedded per batch (1-1000).", Default: domain.DefaultIndexBatchSize},
		},
	}
}

func reindexMessagesTool(indexer driving.Indexer) ToolHandler {
	return func(ctx context.Context, args map[string]any) domain.ToolResult {
		batchSize := clampInt(argInt(args, "batch_size"), 1, toolReindexBatchCeiling)

		result, err := indexer.Reindex(ctx, batchSize, nil)
		if err != nil {
			return domain.ToolFailure(domain.ToolErrInternal, "reindex failed: %v", err)
		}
		return domain.ToolSuccess(map[string]any{
			"items_processed": result.ItemsProcessed,
			"success":         result.Success,
		})
	}
}

// formatResultPayload renders one search result for the tool response.
func formatResultPayload(res domain.SearchResult) map[string]any {
	if res.Notice {
		return map[string]any{
			"notice": res.Excerpt,
		}
	}
	return map[string]any{
		"message_id": res.MessageID,
		"thread_id":  res.ThreadID,
		"sender":     res.Sender,
		"sent_at":    res.SentAt.Format(time.RFC3339),
		"relevance":  res.Relevance,
		"excerpt":    res.Excerpt,
	}
}

// Argument accessors. The dispatcher has already validated and
// defaulted values, so a missing or mistyped value here means a
// descriptor bug; zero values keep the tools total.

func argString(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func argInt(args map[string]any, name string) int {
	switch v := args[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func argFloat(args map[string]any, name string) float64 {
	switch v := args[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
