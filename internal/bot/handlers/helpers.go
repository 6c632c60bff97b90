package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/VDAgency/RiskBotCrypto/internal/telegram"
)

// updateUser returns the Telegram user behind a message or callback update.
func updateUser(update *models.Update) *models.User {
	switch {
	case update.Message != nil:
		return update.Message.From
	case update.CallbackQuery != nil:
		return &update.CallbackQuery.From
	default:
		return nil
	}
}

// updateChatID returns the chat to reply in. Callbacks on inaccessible
// messages fall back to the user's private chat.
func updateChatID(update *models.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.Message.Message != nil {
			return cq.Message.Message.Chat.ID
		}
		if cq.Message.InaccessibleMessage != nil {
			return cq.Message.InaccessibleMessage.Chat.ID
		}
		return cq.From.ID
	default:
		return 0
	}
}

// reply sends text to chatID and logs a failed send. markup may be nil.
func reply(ctx context.Context, s telegram.Sender, log *slog.Logger, chatID int64, text string, markup models.ReplyMarkup) *models.Message {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	msg, err := s.SendMessage(ctx, params)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
		return nil
	}
	return msg
}

// replyMarkdown is reply with Telegram's legacy Markdown parse mode.
func replyMarkdown(ctx context.Context, s telegram.Sender, log *slog.Logger, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text, ParseMode: models.ParseModeMarkdownV1}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := s.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

// ackCallback answers a callback query so the client stops its spinner.
// A non-empty text is shown as a toast, or as an alert when alert is set.
func ackCallback(ctx context.Context, s telegram.Sender, log *slog.Logger, update *models.Update, text string, alert bool) {
	if update.CallbackQuery == nil {
		return
	}
	_, err := s.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err, "callback_query_id", update.CallbackQuery.ID)
	}
}
