package tasks

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// newOpenQuestionsReminderTask nudges the inbox admin when questions are
// still waiting for an answer. Nothing is sent when the queue is empty.
func newOpenQuestionsReminderTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskOpenQuestionsReminder)

	return func(ctx context.Context) error {
		open, err := deps.Store.ListOpenTickets(ctx)
		if err != nil {
			return fmt.Errorf("failed to list open questions: %w", err)
		}
		if len(open) == 0 {
			log.DebugContext(ctx, "No open questions")
			return nil
		}

		inbox := deps.Config.Admin.InboxID
		text := fmt.Sprintf(deps.Config.Messages.ReminderFormat, len(open), open[0].ID)
		if _, err := deps.Sender.SendMessage(ctx, &bot.SendMessageParams{ChatID: inbox, Text: text}); err != nil {
			return fmt.Errorf("failed to send reminder: %w", err)
		}

		log.InfoContext(ctx, "Reminder sent", "inbox_id", inbox, "open", len(open))
		return nil
	}
}
