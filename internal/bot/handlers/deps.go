package handlers

import (
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/VDAgency/RiskBotCrypto/internal/config"
	"github.com/VDAgency/RiskBotCrypto/internal/database"
	"github.com/VDAgency/RiskBotCrypto/internal/session"
	"github.com/VDAgency/RiskBotCrypto/internal/telegram"
	"github.com/VDAgency/RiskBotCrypto/internal/ticket"
)

// HandlerDeps provides dependencies for Telegram command and callback handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Sessions session.Store
	Tickets  *ticket.Service

	// Sender overrides the *bot.Bot passed to handlers. Nil in production.
	Sender telegram.Sender
}

func (d HandlerDeps) sender(b *bot.Bot) telegram.Sender {
	if d.Sender != nil {
		return d.Sender
	}
	return b
}
