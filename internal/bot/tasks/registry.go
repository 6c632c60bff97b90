package tasks

import (
	"context"
)

// ScheduledTaskFunc is the signature of every scheduled task. The context is
// cancelled when the scheduler shuts down.
type ScheduledTaskFunc func(ctx context.Context) error

// Task names, matching the keys of the scheduler.tasks config section.
const (
	TaskSQLMaintenance        = "sql_maintenance"
	TaskOpenQuestionsReminder = "open_questions_reminder"
	TaskSessionCleanup        = "session_cleanup"
)

// RegisterAllTasks initializes and returns a map of all registered scheduled
// tasks keyed by name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		TaskSQLMaintenance:        newSQLMaintenanceTask(deps),
		TaskOpenQuestionsReminder: newOpenQuestionsReminderTask(deps),
		TaskSessionCleanup:        newSessionCleanupTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
