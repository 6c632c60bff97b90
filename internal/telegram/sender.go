package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Sender is the subset of the Bot API the handlers and tasks call.
// *bot.Bot satisfies it; tests substitute a recorder.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	EditMessageReplyMarkup(ctx context.Context, params *bot.EditMessageReplyMarkupParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

var _ Sender = (*bot.Bot)(nil)

// DisplayName renders a Telegram user as "First Last (@username)", dropping
// whatever parts are empty.
func DisplayName(u *models.User) string {
	if u == nil {
		return "unknown"
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if u.Username != "" {
		if name != "" {
			name += " "
		}
		name += "(@" + u.Username + ")"
	}
	if name == "" {
		return "unknown"
	}
	return name
}
