// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/VDAgency/RiskBotCrypto/internal/bot"
	"github.com/VDAgency/RiskBotCrypto/internal/bot/handlers"
	"github.com/VDAgency/RiskBotCrypto/internal/bot/tasks"
	"github.com/VDAgency/RiskBotCrypto/internal/config"
	"github.com/VDAgency/RiskBotCrypto/internal/database"
	"github.com/VDAgency/RiskBotCrypto/internal/gemini"
	"github.com/VDAgency/RiskBotCrypto/internal/logger"
	"github.com/VDAgency/RiskBotCrypto/internal/session"
	"github.com/VDAgency/RiskBotCrypto/internal/telegram"
	"github.com/VDAgency/RiskBotCrypto/internal/ticket"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, blocks until shutdown and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var sessions session.Store
	switch cfg.Session.Backend {
	case "redis":
		rdb, err := session.NewRedisClient(ctx, cfg.Session.Redis.Addr, cfg.Session.Redis.Password, cfg.Session.Redis.DB)
		if err != nil {
			log.Error("Failed to connect to Redis", "addr", cfg.Session.Redis.Addr, "error", err)
			return 1
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("Error closing Redis client", "error", err)
			}
		}()
		sessions = session.NewRedisStore(rdb, cfg.Session.Redis.KeyPrefix, cfg.Session.TTL, log)
	default:
		sessions = session.NewSQLiteStore(db, log)
	}
	log.Info("Session store ready", "backend", cfg.Session.Backend)

	ticketOpts := ticket.Options{
		InboxID:        cfg.Admin.InboxID,
		ReplyButton:    cfg.Messages.ReplyButton,
		AnswerFormat:   cfg.Messages.AnswerFormat,
		SuggestTimeout: time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
	}
	if cfg.Gemini.Enabled() {
		gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			return 1
		}
		ticketOpts.Suggester = gemClient
	} else {
		log.Info("Gemini API key not set, answer drafts disabled")
	}
	tickets := ticket.NewService(store, ticketOpts, log)

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Sessions: sessions,
		Tickets:  tickets,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.TrackInteraction(hDeps)),
		tgbot.WithDefaultHandler(handlers.NewDefaultHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllHandlers(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommands(ctx, tg, cfg.Admin.IDs, log); err != nil {
		// The menu is cosmetic; the bot works without it.
		log.Warn("Failed to publish bot commands", "error", err)
	}

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Sessions: sessions,
		Sender:   tg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, tg, sched)

	log.Info("Starting bot")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully")
	return 0
}
