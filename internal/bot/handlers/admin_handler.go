package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/VDAgency/RiskBotCrypto/internal/config"
	"github.com/VDAgency/RiskBotCrypto/internal/database"
	"github.com/VDAgency/RiskBotCrypto/internal/session"
	"github.com/VDAgency/RiskBotCrypto/internal/telegram"
)

// NewAdminMenuHandler returns the handler for /admin and the "Back" button.
func NewAdminMenuHandler(deps HandlerDeps) bot.HandlerFunc {
	return adminMenuHandler{deps}.Handle
}

type adminMenuHandler struct {
	deps HandlerDeps
}

func (h adminMenuHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin_menu")
	s := h.deps.sender(b)

	if user := updateUser(update); user != nil {
		// Leaving any half-finished admin input behind.
		if err := h.deps.Sessions.Clear(ctx, user.ID); err != nil {
			log.WarnContext(ctx, "Failed to clear session", "error", err, "user_id", user.ID)
		}
	}

	ackCallback(ctx, s, log, update, "", false)
	reply(ctx, s, log, updateChatID(update), h.deps.Config.Messages.AdminMenu, adminMenuKeyboard(h.deps.Config.Messages))
}

// NewStatsHandler returns the handler for the statistics button.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin_stats")
	s := h.deps.sender(b)
	chatID := updateChatID(update)
	msgs := h.deps.Config.Messages

	ackCallback(ctx, s, log, update, "", false)

	stats, err := h.deps.Store.GetStats(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load stats", "error", err)
		reply(ctx, s, log, chatID, msgs.GeneralError, nil)
		return
	}

	text := fmt.Sprintf(msgs.StatsFormat, stats.TotalUsers, stats.ConsentAccepted, stats.QuizCompleted, stats.GuideDownloaded)
	reply(ctx, s, log, chatID, text, backKeyboard(msgs))
}

// NewUserInfoHandler returns the handler for the user lookup button. The
// username itself arrives as the next text message.
func NewUserInfoHandler(deps HandlerDeps) bot.HandlerFunc {
	return userInfoHandler{deps}.Handle
}

type userInfoHandler struct {
	deps HandlerDeps
}

func (h userInfoHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin_user_info")
	s := h.deps.sender(b)
	msgs := h.deps.Config.Messages

	user := updateUser(update)
	if user == nil {
		return
	}

	if err := h.deps.Sessions.Save(ctx, user.ID, session.State{Mode: session.ModeAwaitingUsername}); err != nil {
		log.ErrorContext(ctx, "Failed to enter lookup mode", "error", err, "user_id", user.ID)
		ackCallback(ctx, s, log, update, msgs.GeneralError, true)
		return
	}

	ackCallback(ctx, s, log, update, "", false)
	reply(ctx, s, log, updateChatID(update), msgs.UsernamePrompt, cancelKeyboard(msgs))
}

// lookupUser answers an admin's username query.
func lookupUser(ctx context.Context, deps HandlerDeps, s telegram.Sender, log *slog.Logger, chatID int64, input string) {
	msgs := deps.Config.Messages
	username := strings.TrimPrefix(strings.TrimSpace(input), "@")

	summary, err := deps.Store.FindUserByUsername(ctx, username)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up user", "error", err, "username", username)
		reply(ctx, s, log, chatID, msgs.GeneralError, removeKeyboard())
		return
	}
	if summary == nil {
		reply(ctx, s, log, chatID, msgs.UserNotFound, removeKeyboard())
		reply(ctx, s, log, chatID, msgs.AdminMenu, adminMenuKeyboard(msgs))
		return
	}

	reply(ctx, s, log, chatID, formatUserSummary(msgs, summary), removeKeyboard())
	reply(ctx, s, log, chatID, msgs.AdminMenu, adminMenuKeyboard(msgs))
}

func formatUserSummary(msgs config.MessagesConfig, u *database.UserSummary) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = "-"
	}

	category := msgs.NotDetermined
	if u.RiskCategory.Valid {
		category = u.RiskCategory.String
	}
	score := "-"
	if u.Score.Valid {
		score = fmt.Sprint(u.Score.Int64)
	}
	guide := msgs.No
	if u.GuideDownloaded {
		guide = msgs.Yes
	}

	return fmt.Sprintf(msgs.UserSummaryFormat,
		name, u.Username, u.RegisteredAt.Format("2006-01-02 15:04"), category, score, guide)
}
