// Package telegramtest provides a recording telegram.Sender for tests.
package telegramtest

import (
	"context"
	"errors"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrSend is returned by a Recorder whose chat is listed in FailChats.
var ErrSend = errors.New("telegramtest: send failed")

// Recorder captures every call made through it. The zero value is ready to use.
type Recorder struct {
	mu sync.Mutex

	Messages    []*bot.SendMessageParams
	Documents   []*bot.SendDocumentParams
	Edits       []*bot.EditMessageReplyMarkupParams
	Callbacks   []*bot.AnswerCallbackQueryParams
	CommandSets []*bot.SetMyCommandsParams

	// FailChats makes sends to these chat ids return ErrSend.
	FailChats map[int64]bool

	nextID int
}

func (r *Recorder) fails(chatID any) bool {
	id, ok := chatID.(int64)
	return ok && r.FailChats[id]
}

func (r *Recorder) message(chatID any) *models.Message {
	r.nextID++
	id, _ := chatID.(int64)
	return &models.Message{ID: r.nextID, Chat: models.Chat{ID: id}}
}

func (r *Recorder) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fails(params.ChatID) {
		return nil, ErrSend
	}
	r.Messages = append(r.Messages, params)
	return r.message(params.ChatID), nil
}

func (r *Recorder) SendDocument(_ context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fails(params.ChatID) {
		return nil, ErrSend
	}
	r.Documents = append(r.Documents, params)
	return r.message(params.ChatID), nil
}

func (r *Recorder) EditMessageReplyMarkup(_ context.Context, params *bot.EditMessageReplyMarkupParams) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Edits = append(r.Edits, params)
	return r.message(params.ChatID), nil
}

func (r *Recorder) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Callbacks = append(r.Callbacks, params)
	return true, nil
}

func (r *Recorder) SetMyCommands(_ context.Context, params *bot.SetMyCommandsParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scope, ok := params.Scope.(*models.BotCommandScopeChat); ok && r.fails(scope.ChatID) {
		return false, ErrSend
	}
	r.CommandSets = append(r.CommandSets, params)
	return true, nil
}

// MessagesTo returns the texts sent to chatID, in order.
func (r *Recorder) MessagesTo(chatID int64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.Messages {
		if id, ok := m.ChatID.(int64); ok && id == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

// LastMessage returns the most recent SendMessage call, or nil.
func (r *Recorder) LastMessage() *bot.SendMessageParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return nil
	}
	return r.Messages[len(r.Messages)-1]
}
