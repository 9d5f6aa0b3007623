// Package cli implements the recall command-line interface.
package cli

import (
	"sync"

	"github.com/spf13/cobra"

	"github.com/veilchat/recall/internal/adapters/driven/config/file"
	"github.com/veilchat/recall/internal/core/ports/driving"
	"github.com/veilchat/recall/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	searchService driving.SearchService
	indexService  driving.Indexer
	toolRegistry  driving.ToolRegistry
)

// The config watcher reloads appConfig while long-running commands are
// active, so every access goes through the mutex.
var (
	configMu  sync.RWMutex
	appConfig = file.Default()
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Semantic search over your message history",
	Long: `Recall indexes your messages locally and retrieves them by meaning,
not just keywords. All embedding and search happens on-device; nothing
leaves your machine.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag || currentConfig().Verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the driving ports the commands operate on.
func SetServices(search driving.SearchService, indexer driving.Indexer, registry driving.ToolRegistry) {
	searchService = search
	indexService = indexer
	toolRegistry = registry
}

// SetConfig injects the loaded application configuration. Safe to call
// concurrently with running commands.
func SetConfig(cfg file.Config) {
	configMu.Lock()
	appConfig = cfg
	configMu.Unlock()
}

// currentConfig returns a snapshot of the active configuration.
func currentConfig() file.Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
