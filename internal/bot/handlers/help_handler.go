package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/VDAgency/RiskBotCrypto/internal/session"
)

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

// helpHandler processes the /help command using injected dependencies.
type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Help handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /help command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	msgs := h.deps.Config.Messages
	helpMsg := msgs.Help
	if info := h.deps.Config.Telegram.BotInfo; info != nil && info.Username != "" {
		helpMsg = strings.ReplaceAll(helpMsg, "@botname", "@"+info.Username)
	}
	if reply(ctx, h.deps.sender(b), log, update.Message.Chat.ID, helpMsg, helpKeyboard(msgs)) != nil {
		log.DebugContext(ctx, "Successfully sent help message", "chat_id", update.Message.Chat.ID)
	}
}

// NewAskQuestionHandler returns the handler for the "Ask a question" button.
// It switches the user into question mode; the next text becomes a ticket.
func NewAskQuestionHandler(deps HandlerDeps) bot.HandlerFunc {
	return askQuestionHandler{deps}.Handle
}

type askQuestionHandler struct {
	deps HandlerDeps
}

func (h askQuestionHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "ask_question")

	if update.CallbackQuery == nil {
		log.WarnContext(ctx, "Ask handler received update without callback query", "update_id", update.ID)
		return
	}

	s := h.deps.sender(b)
	userID := update.CallbackQuery.From.ID
	msgs := h.deps.Config.Messages

	if err := h.deps.Sessions.Save(ctx, userID, session.State{Mode: session.ModeAwaitingQuestion}); err != nil {
		log.ErrorContext(ctx, "Failed to enter question mode", "error", err, "user_id", userID)
		ackCallback(ctx, s, log, update, msgs.GeneralError, true)
		return
	}

	ackCallback(ctx, s, log, update, "", false)
	reply(ctx, s, log, updateChatID(update), msgs.AskPrompt, cancelKeyboard(msgs))
	log.InfoContext(ctx, "Awaiting user question", "user_id", userID)
}
