// Package telegram handles the setup of the Telegram bot client, handler
// registration and the per-scope command menus.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RegisteredHandler describes one route: the update kind, the pattern it
// matches and the middleware wrapped around it.
type RegisteredHandler struct {
	HandlerType bot.HandlerType
	Pattern     string
	Handler     bot.HandlerFunc
	Middleware  []bot.Middleware
	MatchType   bot.MatchType
}

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	prefix := token
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	log.Info("Telegram bot instance created successfully", "token_prefix", prefix+"...")
	return b, nil
}

// ApplyMiddleware wraps a handler with a slice of middleware.
// The first middleware in the slice is the outermost.
func ApplyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers every route with the bot, applying each route's middleware.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registeredHandlers map[string]RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registeredHandlers) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	log.Info("Registering Telegram handlers...", "count", len(registeredHandlers))

	for name, regHandler := range registeredHandlers {
		if regHandler.Handler == nil {
			log.Warn("Skipping registration for nil handler", "name", name, "pattern", regHandler.Pattern)
			continue
		}

		finalHandler := ApplyMiddleware(regHandler.Handler, regHandler.Middleware)
		b.RegisterHandler(regHandler.HandlerType, regHandler.Pattern, regHandler.MatchType, finalHandler)
		log.Debug("Registered handler",
			"name", name,
			"pattern", regHandler.Pattern,
			"match_type", regHandler.MatchType,
			"middleware_count", len(regHandler.Middleware))
	}

	log.Info("Registered Telegram handlers successfully", "count", len(registeredHandlers))
	return nil
}

// PublicCommands are shown to every user.
var PublicCommands = []models.BotCommand{
	{Command: "start", Description: "Start the risk profile quiz"},
	{Command: "help", Description: "Help and contact"},
}

// AdminCommands are added to the menu in each administrator's private chat.
var AdminCommands = []models.BotCommand{
	{Command: "admin", Description: "Admin panel"},
	{Command: "questions", Description: "Open user questions"},
}

// SetCommands publishes the public menu for everyone and the extended menu in
// each administrator's chat. A failure for one admin is logged and skipped.
func SetCommands(ctx context.Context, s Sender, adminIDs []int64, logger *slog.Logger) error {
	log := logger.With("component", "command_menu")

	if _, err := s.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: PublicCommands,
		Scope:    &models.BotCommandScopeDefault{},
	}); err != nil {
		return fmt.Errorf("failed to set default commands: %w", err)
	}

	adminMenu := make([]models.BotCommand, 0, len(PublicCommands)+len(AdminCommands))
	adminMenu = append(adminMenu, PublicCommands...)
	adminMenu = append(adminMenu, AdminCommands...)

	for _, id := range adminIDs {
		if _, err := s.SetMyCommands(ctx, &bot.SetMyCommandsParams{
			Commands: adminMenu,
			Scope:    &models.BotCommandScopeChat{ChatID: id},
		}); err != nil {
			log.WarnContext(ctx, "Failed to set admin commands", "admin_id", id, "error", err)
			continue
		}
		log.DebugContext(ctx, "Admin commands set", "admin_id", id)
	}

	log.InfoContext(ctx, "Command menus published", "admins", len(adminIDs))
	return nil
}
