// Package logger provides structured logging for the bot using log/slog,
// plus a go-telegram middleware that logs every update with a trace id.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// NewLogger creates a slog Logger writing to stdout and makes it the default.
// If jsonOutput is true, logs are formatted as JSON, otherwise as text.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	logger := New(os.Stdout, levelStr, jsonOutput)
	slog.SetDefault(logger)
	return logger
}

// New creates a slog Logger writing to w.
func New(w io.Writer, levelStr string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(levelStr),
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a configuration level name to a slog.Level, defaulting to info.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type traceKey struct{}

// WithTraceID returns a context carrying id as the update trace id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// TraceID returns the trace id stored by Middleware, or "".
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// Middleware logs each incoming update before and after it is handled and
// attaches a fresh trace id to the handler context.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()
			traceID := uuid.NewString()
			ctx = WithTraceID(ctx, traceID)

			logEntry := log.With(UpdateAttrs(update)...).With("trace_id", traceID)
			logEntry.InfoContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.InfoContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

// UpdateAttrs extracts the identifying fields of an update as slog key/value pairs.
func UpdateAttrs(update *models.Update) []any {
	attrs := []any{"update_id", update.ID}

	switch {
	case update.Message != nil:
		m := update.Message
		attrs = append(attrs,
			"update_type", "message",
			"message_id", m.ID,
			"chat_id", m.Chat.ID,
			"text_preview", truncateString(m.Text, 50),
		)
		if m.From != nil {
			attrs = append(attrs, "user_id", m.From.ID)
		}

	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		attrs = append(attrs,
			"update_type", "callback_query",
			"callback_query_id", cq.ID,
			"user_id", cq.From.ID,
			"data", cq.Data,
		)
		switch {
		case cq.Message.Message != nil:
			attrs = append(attrs, "chat_id", cq.Message.Message.Chat.ID, "message_accessible", true)
		case cq.Message.InaccessibleMessage != nil:
			attrs = append(attrs, "chat_id", cq.Message.InaccessibleMessage.Chat.ID, "message_accessible", false)
		}

	default:
		attrs = append(attrs, "update_type", "other")
	}
	return attrs
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
