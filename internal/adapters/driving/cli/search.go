package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veilchat/recall/internal/core/domain"
)

var (
	searchLimit     int
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed messages",
	Long: `Searches your message history by semantic similarity.
Messages are ranked by how closely their meaning matches the query,
so "dinner plans" finds "see you at seven tonight" even without
shared keywords.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultMaxResults, "maximum number of results")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", domain.DefaultSimilarityThreshold, "minimum similarity in [0,1]")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		MaxResults:          searchLimit,
		SimilarityThreshold: domain.Threshold(searchThreshold),
		BatchSize:           currentConfig().Search.BatchSize,
	}

	results, err := searchService.SearchBatched(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	payload := make([]map[string]any, len(results))
	for i, res := range results {
		if res.Notice {
			payload[i] = map[string]any{"notice": res.Excerpt}
			continue
		}
		payload[i] = map[string]any{
			"message_id": res.MessageID,
			"thread_id":  res.ThreadID,
			"sender":     res.Sender,
			"sent_at":    res.SentAt,
			"relevance":  res.Relevance,
			"excerpt":    res.Excerpt,
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	if len(results) == 1 && results[0].Notice {
		cmd.Println(results[0].Excerpt)
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		res := results[i]
		cmd.Printf("  [%d] %s (%d%%)\n", i+1, res.Sender, res.Relevance)
		cmd.Printf("      %s\n", res.SentAt.Format("2006-01-02 15:04"))
		cmd.Printf("      %s\n", res.Excerpt)
		cmd.Println()
	}

	return nil
}
