package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/VDAgency/RiskBotCrypto/internal/session"
	"github.com/VDAgency/RiskBotCrypto/internal/ticket"
)

// maxListedQuestions caps the open-question list so the message and its
// keyboard stay within Telegram limits.
const maxListedQuestions = 40

// NewQuestionsHandler returns the handler listing open questions. It serves
// both the /questions command and the admin menu button.
func NewQuestionsHandler(deps HandlerDeps) bot.HandlerFunc {
	return questionsHandler{deps}.Handle
}

type questionsHandler struct {
	deps HandlerDeps
}

func (h questionsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "questions")
	s := h.deps.sender(b)
	chatID := updateChatID(update)
	msgs := h.deps.Config.Messages

	ackCallback(ctx, s, log, update, "", false)

	open, err := h.deps.Tickets.Open(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list open questions", "error", err)
		reply(ctx, s, log, chatID, msgs.GeneralError, nil)
		return
	}
	if len(open) == 0 {
		reply(ctx, s, log, chatID, msgs.NoOpenQuestions, backKeyboard(msgs))
		return
	}

	shown := open
	if len(shown) > maxListedQuestions {
		shown = shown[:maxListedQuestions]
	}
	ids := make([]int64, 0, len(shown))
	for _, t := range shown {
		ids = append(ids, t.ID)
	}

	text := ticket.FormatOpenList(shown)
	if rest := len(open) - len(shown); rest > 0 {
		text += fmt.Sprintf("\n\n…and %d more", rest)
	}

	kb := ticket.ReplyKeyboard(msgs.ReplyButton, ids...)
	kb.InlineKeyboard = append(kb.InlineKeyboard, backKeyboard(msgs).InlineKeyboard...)
	reply(ctx, s, log, chatID, text, kb)

	log.InfoContext(ctx, "Listed open questions", "count", len(open))
}

// NewAnswerCallbackHandler returns the handler for the per-ticket "Reply"
// buttons. It puts the administrator into answer mode for that ticket.
func NewAnswerCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return answerCallbackHandler{deps}.Handle
}

type answerCallbackHandler struct {
	deps HandlerDeps
}

func (h answerCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "answer_callback")

	if update.CallbackQuery == nil {
		log.WarnContext(ctx, "Answer handler received update without callback query", "update_id", update.ID)
		return
	}

	s := h.deps.sender(b)
	cq := update.CallbackQuery
	adminID := cq.From.ID
	chatID := updateChatID(update)
	msgs := h.deps.Config.Messages

	id, ok := ticket.ParseAnswerCallback(cq.Data)
	if !ok {
		log.WarnContext(ctx, "Malformed answer callback", "data", cq.Data)
		ackCallback(ctx, s, log, update, msgs.TicketNotFound, true)
		return
	}

	t, err := h.deps.Tickets.Get(ctx, id)
	switch {
	case errors.Is(err, ticket.ErrNotFound):
		ackCallback(ctx, s, log, update, msgs.TicketNotFound, true)
		return
	case errors.Is(err, ticket.ErrAlreadyAnswered):
		ackCallback(ctx, s, log, update, msgs.TicketAnswered, true)
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to load ticket", "error", err, "ticket_id", id)
		ackCallback(ctx, s, log, update, msgs.GeneralError, true)
		return
	}

	state := session.State{Mode: session.ModeAwaitingAnswer, TicketID: t.ID, AskerID: t.UserID}
	if err := h.deps.Sessions.Save(ctx, adminID, state); err != nil {
		log.ErrorContext(ctx, "Failed to enter answer mode", "error", err, "admin_id", adminID)
		ackCallback(ctx, s, log, update, msgs.GeneralError, true)
		return
	}

	ackCallback(ctx, s, log, update, "", false)
	reply(ctx, s, log, chatID, fmt.Sprintf(msgs.AnswerPromptFormat, t.ID, t.Question), cancelKeyboard(msgs))
	log.InfoContext(ctx, "Awaiting answer", "admin_id", adminID, "ticket_id", t.ID)
}
