// Package tasks implements the bot's scheduled jobs and their registry.
package tasks

import (
	"log/slog"

	"github.com/VDAgency/RiskBotCrypto/internal/config"
	"github.com/VDAgency/RiskBotCrypto/internal/database"
	"github.com/VDAgency/RiskBotCrypto/internal/session"
	"github.com/VDAgency/RiskBotCrypto/internal/telegram"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Sessions session.Store
	Sender   telegram.Sender
}
