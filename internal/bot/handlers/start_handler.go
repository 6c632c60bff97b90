package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/VDAgency/RiskBotCrypto/internal/session"
	"github.com/VDAgency/RiskBotCrypto/internal/telegram"
)

// NewStartHandler returns a handler for the /start command. Users who already
// accepted both documents go straight to the quiz; others get the consent prompt.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	s := h.deps.sender(b)
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	msgs := h.deps.Config.Messages

	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", userID)

	profile, err := h.deps.Store.GetUser(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load user profile", "error", err, "user_id", userID)
		reply(ctx, s, log, chatID, msgs.GeneralError, nil)
		return
	}

	if profile != nil && profile.ConsentGiven() {
		log.DebugContext(ctx, "Consent already given, starting quiz", "user_id", userID)
		quizFlow{h.deps}.begin(ctx, s, log, chatID, userID)
		return
	}

	state := session.State{Mode: session.ModeConsent}
	if msg := reply(ctx, s, log, chatID, msgs.Welcome, consentKeyboard(state, msgs)); msg != nil {
		state.PromptMessageID = msg.ID
	}
	if err := h.deps.Sessions.Save(ctx, userID, state); err != nil {
		log.ErrorContext(ctx, "Failed to save consent state", "error", err, "user_id", userID)
	}
}

// NewConsentHandler returns the handler for the consent toggles and the
// accept button.
func NewConsentHandler(deps HandlerDeps) bot.HandlerFunc {
	return consentHandler{deps}.Handle
}

type consentHandler struct {
	deps HandlerDeps
}

func (h consentHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "consent")

	if update.CallbackQuery == nil {
		log.WarnContext(ctx, "Consent handler received update without callback query", "update_id", update.ID)
		return
	}

	s := h.deps.sender(b)
	cq := update.CallbackQuery
	userID := cq.From.ID
	chatID := updateChatID(update)
	msgs := h.deps.Config.Messages

	profile, err := h.deps.Store.GetUser(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load user profile", "error", err, "user_id", userID)
		ackCallback(ctx, s, log, update, msgs.GeneralError, true)
		return
	}
	if profile != nil && profile.ConsentGiven() {
		// Stale prompt; whatever the user is doing now must survive the tap.
		log.DebugContext(ctx, "Consent already given, ignoring toggle", "user_id", userID, "data", cq.Data)
		ackCallback(ctx, s, log, update, "", false)
		return
	}

	state, err := h.deps.Sessions.Load(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load session", "error", err, "user_id", userID)
		ackCallback(ctx, s, log, update, msgs.GeneralError, true)
		return
	}
	switch state.Mode {
	case session.ModeConsent:
	case session.ModeIdle:
		state = session.State{Mode: session.ModeConsent}
	default:
		log.DebugContext(ctx, "Consent toggle outside consent flow, ignoring", "user_id", userID, "mode", state.Mode)
		ackCallback(ctx, s, log, update, "", false)
		return
	}
	if cq.Message.Message != nil {
		state.PromptMessageID = cq.Message.Message.ID
	}

	switch cq.Data {
	case CallbackConsentPolicy:
		state.PolicyChecked = !state.PolicyChecked
	case CallbackConsentOffer:
		state.OfferChecked = !state.OfferChecked
	case CallbackConsentAccept:
		h.accept(ctx, s, update, chatID, userID, state)
		return
	default:
		log.WarnContext(ctx, "Unknown consent callback", "data", cq.Data)
		ackCallback(ctx, s, log, update, "", false)
		return
	}

	if err := h.deps.Sessions.Save(ctx, userID, state); err != nil {
		log.ErrorContext(ctx, "Failed to save consent toggles", "error", err, "user_id", userID)
		ackCallback(ctx, s, log, update, msgs.GeneralError, true)
		return
	}

	if state.PromptMessageID != 0 {
		_, err := s.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
			ChatID:      chatID,
			MessageID:   state.PromptMessageID,
			ReplyMarkup: consentKeyboard(state, msgs),
		})
		if err != nil {
			log.WarnContext(ctx, "Failed to re-render consent keyboard", "error", err, "chat_id", chatID)
		}
	}
	ackCallback(ctx, s, log, update, "", false)

	log.DebugContext(ctx, "Consent toggled", "user_id", userID, "policy", state.PolicyChecked, "offer", state.OfferChecked)
}

func (h consentHandler) accept(ctx context.Context, s telegram.Sender, update *models.Update, chatID, userID int64, state session.State) {
	log := h.deps.Logger.With("handler", "consent")
	msgs := h.deps.Config.Messages

	if !state.PolicyChecked || !state.OfferChecked {
		log.InfoContext(ctx, "Consent submitted incomplete", "user_id", userID, "policy", state.PolicyChecked, "offer", state.OfferChecked)
		ackCallback(ctx, s, log, update, msgs.ConsentRequired, true)
		return
	}

	if err := h.deps.Store.UpdateConsent(ctx, userID, true, true); err != nil {
		log.ErrorContext(ctx, "Failed to store consent", "error", err, "user_id", userID)
		ackCallback(ctx, s, log, update, msgs.GeneralError, true)
		return
	}
	ackCallback(ctx, s, log, update, "", false)
	log.InfoContext(ctx, "Consent accepted", "user_id", userID)

	if state.PromptMessageID != 0 {
		_, err := s.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
			ChatID:      chatID,
			MessageID:   state.PromptMessageID,
			ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}},
		})
		if err != nil {
			log.WarnContext(ctx, "Failed to clear consent keyboard", "error", err, "chat_id", chatID)
		}
	}

	reply(ctx, s, log, chatID, msgs.ConsentAccepted, nil)
	quizFlow{h.deps}.begin(ctx, s, log, chatID, userID)
}
