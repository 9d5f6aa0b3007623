package cli

import (
	"context"

	"github.com/veilchat/recall/internal/logger"
)

// backgroundScheduler is the slice of the scheduler the CLI needs.
type backgroundScheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

var scheduler backgroundScheduler

// SetScheduler injects the background scheduler. When set, long-running
// commands (mcp serve) run scheduled indexing passes alongside their
// own work.
func SetScheduler(s backgroundScheduler) {
	scheduler = s
}

// startScheduler launches the scheduler for the lifetime of ctx.
// Returns a stop func; a no-op when no scheduler is configured.
func startScheduler(ctx context.Context) func() {
	if scheduler == nil {
		return func() {}
	}

	go func() {
		if err := scheduler.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Scheduler stopped: %v", err)
		}
	}()
	return func() {
		_ = scheduler.Stop()
	}
}
