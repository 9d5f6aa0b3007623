package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/veilchat/recall/internal/core/domain"
)

var indexBatchSize int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the message embedding index",
}

var indexRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Embed messages that are not yet indexed",
	Long: `Runs one indexing pass: rebuilds corpus statistics from all
message bodies, then embeds every message without a current vector.
Safe to interrupt; completed work is kept and the next run resumes
where this one stopped.`,
	RunE: runIndexPass,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show embedding coverage of the message store",
	RunE:  runIndexStatus,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Discard all stored vectors and re-embed every message",
	RunE:  runIndexRebuild,
}

func init() {
	indexCmd.PersistentFlags().IntVarP(&indexBatchSize, "batch-size", "b", domain.DefaultIndexBatchSize, "messages embedded per batch")
	indexCmd.AddCommand(indexRunCmd)
	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexPass(cmd *cobra.Command, _ []string) error {
	return runPass(cmd, false)
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	return runPass(cmd, true)
}

func runPass(cmd *cobra.Command, rebuild bool) error {
	if indexService == nil {
		return errors.New("indexer not configured")
	}

	var bar *progressbar.ProgressBar
	progress := func(p domain.IndexProgress) {
		if bar == nil {
			bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("Embedding messages"),
				progressbar.OptionShowCount(),
			)
		}
		_ = bar.Set(p.Processed + p.Failed)
	}

	run := indexService.RunPass
	if rebuild {
		run = indexService.Reindex
	}

	result, err := run(cmd.Context(), indexBatchSize, progress)
	if err != nil {
		if errors.Is(err, domain.ErrIndexingInProgress) {
			return errors.New("an indexing pass is already running")
		}
		return fmt.Errorf("indexing failed: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
		cmd.PrintErrln()
	}

	cmd.Printf("Indexed %d messages in %s\n",
		result.ItemsProcessed, result.EndedAt.Sub(result.StartedAt).Round(10*time.Millisecond))
	if result.Error != "" {
		cmd.Printf("Warning: %s\n", result.Error)
	}
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("indexer not configured")
	}

	status, err := indexService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("index status failed: %w", err)
	}

	cmd.Printf("Messages:          %d\n", status.TotalMessages)
	cmd.Printf("Indexed:           %d\n", status.EmbeddedMessages)
	cmd.Printf("Embedding version: %d\n", status.EmbeddingVersion)
	if status.Running {
		cmd.Println("An indexing pass is currently running.")
	}
	return nil
}
