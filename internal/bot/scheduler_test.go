package bot_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/VDAgency/RiskBotCrypto/internal/bot"
	"github.com/VDAgency/RiskBotCrypto/internal/bot/tasks"
	"github.com/VDAgency/RiskBotCrypto/internal/config"
)

func TestScheduler_SkipsUnusableTasks(t *testing.T) {
	t.Parallel()
	noop := func(context.Context) error { return nil }

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"good":     {Enabled: true, Schedule: "0 0 4 * * *"},
		"disabled": {Enabled: false, Schedule: "0 0 4 * * *"},
		"unknown":  {Enabled: true, Schedule: "0 0 4 * * *"},
		"empty":    {Enabled: true},
		"invalid":  {Enabled: true, Schedule: "not a cron"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"good": noop, "disabled": noop, "empty": noop, "invalid": noop,
	}

	s, err := bot.NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, taskMap)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })

	if got := s.Scheduled(); got != 1 {
		t.Errorf("Scheduled() = %d, want 1", got)
	}
	if err := s.Start(); !errors.Is(err, bot.ErrSchedulerRunning) {
		t.Errorf("second Start err = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestScheduler_NoTasks(t *testing.T) {
	t.Parallel()
	s, err := bot.NewScheduler(nil, nil, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

type stubListener struct{}

func (stubListener) Start(ctx context.Context) { <-ctx.Done() }

func TestBot_RunStopsOnCancel(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := bot.NewScheduler(logger, nil, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.NewBot(logger, stubListener{}, s).Run(ctx) }()
	cancel()

	if err := <-done; err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
}
