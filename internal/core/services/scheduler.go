package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/ports/driven"
	"github.com/veilchat/recall/internal/core/ports/driving"
	"github.com/veilchat/recall/internal/logger"
)

// Scheduler manages background task execution.
// It is a pure core service with no external control API.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	indexer driving.Indexer

	checkInterval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	indexer driving.Indexer,
) *Scheduler {
	return &Scheduler{
		config:        config,
		store:         store,
		indexer:       indexer,
		checkInterval: time.Minute,
	}
}

// SetCheckInterval overrides how often the scheduler checks for due
// tasks. Useful for testing.
func (s *Scheduler) SetCheckInterval(interval time.Duration) {
	s.checkInterval = interval
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Error("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if taskCfg := s.config.GetTaskConfig(domain.TaskIDMessageIndex); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDMessageIndex, "Message Indexing", taskCfg); err != nil {
			return err
		}
	}

	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		// A new task runs immediately on the first due-check rather
		// than waiting a full interval: a fresh install should index
		// without delay.
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now(),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if task.Due(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		started := time.Now()
		var result *domain.TaskResult
		var err error

		switch task.ID {
		case domain.TaskIDMessageIndex:
			result, err = s.runMessageIndex(ctx)
		default:
			logger.Warn("scheduler: unknown task ID: %s", task.ID)
			return
		}

		ended := time.Now()
		if result == nil {
			result = &domain.TaskResult{
				TaskID:    task.ID,
				StartedAt: started,
				EndedAt:   ended,
				Success:   err == nil,
			}
		}
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			task.LastError = ""
			task.LastSuccess = ended
		}

		// Update task state
		task.LastRun = started
		task.NextRun = ended.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Error("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}

		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Error("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}

		// Keep the last 100 results per task
		if pruneErr := s.store.PruneHistory(ctx, 100); pruneErr != nil {
			logger.Error("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// runMessageIndex runs one background indexing pass. An already
// running pass is not an error; the next due-check picks up whatever
// is still pending.
func (s *Scheduler) runMessageIndex(ctx context.Context) (*domain.TaskResult, error) {
	if s.indexer == nil {
		return nil, nil
	}

	result, err := s.indexer.RunPass(ctx, domain.DefaultIndexBatchSize, nil)
	if errors.Is(err, domain.ErrIndexingInProgress) {
		logger.Debug("scheduler: indexing already in progress, skipping")
		return nil, nil
	}
	return result, err
}
