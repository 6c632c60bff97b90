// Package handlers contains the Telegram command, callback and text handlers
// of the quiz bot, along with their registration and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/VDAgency/RiskBotCrypto/internal/database"
)

// AdminOnly lets the update through only when its sender is on the admin
// allow-list. Others get the unauthorized text, as a message or a callback
// alert, and nothing else happens.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			user := updateUser(update)
			if user == nil {
				return
			}

			if !deps.Config.Admin.IsAdmin(user.ID) {
				s := deps.sender(b)
				log := deps.Logger.With("middleware", "AdminOnly")
				log.WarnContext(ctx, "Unauthorized access attempt", "user_id", user.ID, "chat_id", updateChatID(update))

				if update.CallbackQuery != nil {
					ackCallback(ctx, s, log, update, deps.Config.Messages.Unauthorized, true)
					return
				}
				reply(ctx, s, log, updateChatID(update), deps.Config.Messages.Unauthorized, nil)
				return
			}

			next(ctx, b, update)
		}
	}
}

// TrackInteraction registers first-time users and refreshes
// last_interaction_at for returning ones before the handler runs. Store
// failures are logged and never block the update.
func TrackInteraction(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			user := updateUser(update)
			if user != nil && !user.IsBot {
				log := deps.Logger.With("middleware", "TrackInteraction")
				_, created, err := deps.Store.UpsertUser(ctx, &database.UserProfile{
					UserID:       user.ID,
					FirstName:    user.FirstName,
					LastName:     user.LastName,
					Username:     user.Username,
					LanguageCode: user.LanguageCode,
				})
				switch {
				case err != nil:
					log.ErrorContext(ctx, "Failed to register user", "user_id", user.ID, "error", err)
				case !created:
					if err := deps.Store.TouchInteraction(ctx, user.ID); err != nil {
						log.WarnContext(ctx, "Failed to update last interaction", "user_id", user.ID, "error", err)
					}
				}
			}

			next(ctx, b, update)
		}
	}
}
