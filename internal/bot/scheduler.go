package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/VDAgency/RiskBotCrypto/internal/bot/tasks"
	"github.com/VDAgency/RiskBotCrypto/internal/config"
)

// ErrSchedulerRunning is returned by Start on a scheduler that is already running.
var ErrSchedulerRunning = errors.New("scheduler is already running")

// Scheduler runs the registered tasks on their configured cron schedules.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc
	mu        sync.Mutex
	running   bool
	scheduled int
}

// NewScheduler creates a scheduler for taskMap. Nothing runs until Start.
func NewScheduler(logger *slog.Logger, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    logger.With("component", "scheduler"),
		cfg:       cfg,
		taskMap:   taskMap,
	}, nil
}

// Start schedules every enabled task and starts ticking. Tasks that are
// unknown, unscheduled or carry an invalid cron expression are skipped
// with a log entry.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerRunning
	}

	if s.cfg == nil || len(s.cfg.Tasks) == 0 {
		s.logger.Warn("No scheduler tasks configured")
	} else {
		for name, taskCfg := range s.cfg.Tasks {
			if s.schedule(name, taskCfg) {
				s.scheduled++
			}
		}
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", s.scheduled)
	return nil
}

func (s *Scheduler) schedule(name string, taskCfg config.TaskConfig) bool {
	if !taskCfg.Enabled {
		s.logger.Info("Skipping disabled task", "task_name", name)
		return false
	}
	taskFunc, ok := s.taskMap[name]
	if !ok {
		s.logger.Warn("Scheduled task configured but not found in registry, skipping", "task_name", name)
		return false
	}
	if taskCfg.Schedule == "" {
		s.logger.Warn("Scheduled task enabled but has empty schedule, skipping", "task_name", name)
		return false
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob(taskCfg.Schedule, true),
		gocron.NewTask(s.wrap(name, taskFunc)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.logger.Error("Failed to schedule task", "task_name", name, "schedule", taskCfg.Schedule, "error", err)
		return false
	}

	s.logger.Info("Scheduled task", "task_name", name, "schedule", taskCfg.Schedule)
	return true
}

// wrap adds timing and error logging around a task. gocron injects the job
// context, which is cancelled on Shutdown.
func (s *Scheduler) wrap(name string, taskFunc tasks.ScheduledTaskFunc) func(ctx context.Context) {
	return func(ctx context.Context) {
		s.logger.Info("Running scheduled task", "task_name", name)
		startTime := time.Now()
		if err := taskFunc(ctx); err != nil {
			s.logger.Error("Scheduled task failed", "task_name", name, "error", err)
		}
		s.logger.Info("Finished scheduled task", "task_name", name, "duration", time.Since(startTime))
	}
}

// Scheduled reports how many jobs the last Start registered.
func (s *Scheduler) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled
}

// Stop shuts the scheduler down, waiting for running jobs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped")
	}

	s.running = false
	return err
}
