package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/VDAgency/RiskBotCrypto/internal/session"
	"github.com/VDAgency/RiskBotCrypto/internal/telegram"
	"github.com/VDAgency/RiskBotCrypto/internal/ticket"
)

// NewDefaultHandler returns the handler for every update no registered
// pattern claimed. Free text is routed by the sender's session mode.
func NewDefaultHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{deps}.Handle
}

type textHandler struct {
	deps HandlerDeps
}

func (h textHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "text")
	s := h.deps.sender(b)

	if update.CallbackQuery != nil {
		log.DebugContext(ctx, "Unhandled callback", "data", update.CallbackQuery.Data)
		ackCallback(ctx, s, log, update, "", false)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		log.DebugContext(ctx, "Ignoring message without text", "chat_id", msg.Chat.ID)
		return
	}

	chatID := msg.Chat.ID
	userID := msg.From.ID
	msgs := h.deps.Config.Messages

	state, err := h.deps.Sessions.Load(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load session", "error", err, "user_id", userID)
		reply(ctx, s, log, chatID, msgs.GeneralError, nil)
		return
	}

	log = log.With("mode", string(state.Mode), "user_id", userID)

	if text == msgs.CancelButton && state.Mode.Cancellable() {
		h.clear(ctx, log, userID)
		reply(ctx, s, log, chatID, msgs.Cancelled, removeKeyboard())
		log.InfoContext(ctx, "Input cancelled")
		return
	}

	switch state.Mode {
	case session.ModeQuiz:
		quizFlow{h.deps}.answer(ctx, s, log, chatID, userID, state, text)

	case session.ModeAwaitingQuestion:
		h.clear(ctx, log, userID)
		_, err := h.deps.Tickets.Submit(ctx, s, msg.From, text)
		switch {
		case err == nil:
			reply(ctx, s, log, chatID, msgs.QuestionReceived, removeKeyboard())
		case errors.Is(err, ticket.ErrDelivery):
			reply(ctx, s, log, chatID, msgs.QuestionNotSent, removeKeyboard())
		default:
			log.ErrorContext(ctx, "Failed to submit question", "error", err)
			reply(ctx, s, log, chatID, msgs.GeneralError, removeKeyboard())
		}

	case session.ModeAwaitingAnswer:
		if !h.deps.Config.Admin.IsAdmin(userID) {
			log.WarnContext(ctx, "Non-admin in answer mode")
			h.clear(ctx, log, userID)
			reply(ctx, s, log, chatID, msgs.Unauthorized, removeKeyboard())
			return
		}
		h.clear(ctx, log, userID)
		h.answer(ctx, s, log, chatID, state.TicketID, text)

	case session.ModeAwaitingUsername:
		if !h.deps.Config.Admin.IsAdmin(userID) {
			log.WarnContext(ctx, "Non-admin in username lookup mode")
			h.clear(ctx, log, userID)
			reply(ctx, s, log, chatID, msgs.Unauthorized, removeKeyboard())
			return
		}
		h.clear(ctx, log, userID)
		lookupUser(ctx, h.deps, s, log, chatID, text)

	case session.ModeConsent:
		reply(ctx, s, log, chatID, msgs.ConsentRequired, nil)

	default:
		reply(ctx, s, log, chatID, msgs.Fallback, nil)
	}
}

func (h textHandler) answer(ctx context.Context, s telegram.Sender, log *slog.Logger, chatID, ticketID int64, text string) {
	msgs := h.deps.Config.Messages

	t, err := h.deps.Tickets.Answer(ctx, s, ticketID, text)
	switch {
	case err == nil:
		log.InfoContext(ctx, "Answer relayed", "ticket_id", t.ID, "asker_id", t.UserID)
		reply(ctx, s, log, chatID, msgs.AnswerSent, removeKeyboard())
	case errors.Is(err, ticket.ErrDelivery):
		reply(ctx, s, log, chatID, msgs.AnswerNotSent, removeKeyboard())
	case errors.Is(err, ticket.ErrNotFound):
		reply(ctx, s, log, chatID, msgs.TicketNotFound, removeKeyboard())
	case errors.Is(err, ticket.ErrAlreadyAnswered):
		reply(ctx, s, log, chatID, msgs.TicketAnswered, removeKeyboard())
	default:
		log.ErrorContext(ctx, "Failed to answer ticket", "error", err, "ticket_id", ticketID)
		reply(ctx, s, log, chatID, msgs.GeneralError, removeKeyboard())
	}
}

func (h textHandler) clear(ctx context.Context, log *slog.Logger, userID int64) {
	if err := h.deps.Sessions.Clear(ctx, userID); err != nil {
		log.WarnContext(ctx, "Failed to clear session", "error", err, "user_id", userID)
	}
}
