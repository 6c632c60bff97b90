package telegram_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/VDAgency/RiskBotCrypto/internal/telegram"
	"github.com/VDAgency/RiskBotCrypto/internal/telegram/telegramtest"
)

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		user     *models.User
		expected string
	}{
		{name: "nil user", user: nil, expected: "unknown"},
		{name: "empty user", user: &models.User{}, expected: "unknown"},
		{name: "first name only", user: &models.User{FirstName: "Ann"}, expected: "Ann"},
		{name: "full name", user: &models.User{FirstName: "Ann", LastName: "Lee"}, expected: "Ann Lee"},
		{name: "full name and handle", user: &models.User{FirstName: "Ann", LastName: "Lee", Username: "annlee"}, expected: "Ann Lee (@annlee)"},
		{name: "handle only", user: &models.User{Username: "ghost"}, expected: "(@ghost)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := telegram.DisplayName(tt.user); got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestApplyMiddleware_Order(t *testing.T) {
	t.Parallel()

	var calls []string
	mark := func(name string) bot.Middleware {
		return func(next bot.HandlerFunc) bot.HandlerFunc {
			return func(ctx context.Context, b *bot.Bot, update *models.Update) {
				calls = append(calls, name)
				next(ctx, b, update)
			}
		}
	}
	handler := func(context.Context, *bot.Bot, *models.Update) { calls = append(calls, "handler") }

	wrapped := telegram.ApplyMiddleware(handler, []bot.Middleware{mark("outer"), mark("inner")})
	wrapped(context.Background(), nil, &models.Update{})

	want := []string{"outer", "inner", "handler"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
}

func TestSetCommands(t *testing.T) {
	t.Parallel()

	rec := &telegramtest.Recorder{FailChats: map[int64]bool{300: true}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := telegram.SetCommands(context.Background(), rec, []int64{100, 300, 200}, logger); err != nil {
		t.Fatalf("SetCommands: %v", err)
	}

	if len(rec.CommandSets) != 3 {
		t.Fatalf("command sets = %d, want 3 (default + two reachable admins)", len(rec.CommandSets))
	}
	if _, ok := rec.CommandSets[0].Scope.(*models.BotCommandScopeDefault); !ok {
		t.Errorf("first scope = %T, want default", rec.CommandSets[0].Scope)
	}
	if len(rec.CommandSets[0].Commands) != len(telegram.PublicCommands) {
		t.Errorf("default menu has %d commands", len(rec.CommandSets[0].Commands))
	}

	for _, set := range rec.CommandSets[1:] {
		scope, ok := set.Scope.(*models.BotCommandScopeChat)
		if !ok {
			t.Fatalf("admin scope = %T", set.Scope)
		}
		if scope.ChatID == int64(300) {
			t.Error("failing admin should have been skipped")
		}
		if len(set.Commands) != len(telegram.PublicCommands)+len(telegram.AdminCommands) {
			t.Errorf("admin menu has %d commands", len(set.Commands))
		}
	}
}
