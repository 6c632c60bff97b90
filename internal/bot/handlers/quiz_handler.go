package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/VDAgency/RiskBotCrypto/internal/quiz"
	"github.com/VDAgency/RiskBotCrypto/internal/session"
	"github.com/VDAgency/RiskBotCrypto/internal/telegram"
)

// quizFlow drives a user through the questionnaire. Progress lives in the
// session store; the database is written only when the quiz completes.
type quizFlow struct {
	deps HandlerDeps
}

// begin enters the Start state: score reset, first question sent.
func (f quizFlow) begin(ctx context.Context, s telegram.Sender, log *slog.Logger, chatID, userID int64) {
	state := session.State{Mode: session.ModeQuiz, Quiz: quiz.Begin()}
	if err := f.deps.Sessions.Save(ctx, userID, state); err != nil {
		log.ErrorContext(ctx, "Failed to save quiz progress", "error", err, "user_id", userID)
		reply(ctx, s, log, chatID, f.deps.Config.Messages.GeneralError, nil)
		return
	}

	q, _ := state.Quiz.Question()
	reply(ctx, s, log, chatID, q.Prompt(), questionKeyboard(q))
	log.InfoContext(ctx, "Quiz started", "user_id", userID)
}

// answer applies a reply to the current question. Text that is not an answer
// marker, or an answer outside a question step, is dropped without a reply.
func (f quizFlow) answer(ctx context.Context, s telegram.Sender, log *slog.Logger, chatID, userID int64, state session.State, text string) {
	option, ok := quiz.ParseOption(text)
	if !ok {
		log.DebugContext(ctx, "Ignoring non-answer text during quiz", "user_id", userID, "step", state.Quiz.Step.String())
		return
	}

	next, err := state.Quiz.Advance(option)
	if err != nil {
		log.DebugContext(ctx, "Quiz answer rejected", "user_id", userID, "step", state.Quiz.Step.String(), "error", err)
		return
	}

	if !next.Done() {
		state.Quiz = next
		if err := f.deps.Sessions.Save(ctx, userID, state); err != nil {
			log.ErrorContext(ctx, "Failed to save quiz progress", "error", err, "user_id", userID)
			reply(ctx, s, log, chatID, f.deps.Config.Messages.GeneralError, nil)
			return
		}
		q, _ := next.Question()
		reply(ctx, s, log, chatID, q.Prompt(), questionKeyboard(q))
		return
	}

	f.complete(ctx, s, log, chatID, userID, next.Score)
}

func (f quizFlow) complete(ctx context.Context, s telegram.Sender, log *slog.Logger, chatID, userID int64, score int) {
	msgs := f.deps.Config.Messages
	category := quiz.Classify(score)

	if err := f.deps.Store.SaveQuizResult(ctx, userID, score, string(category)); err != nil {
		log.ErrorContext(ctx, "Failed to save quiz result", "error", err, "user_id", userID, "score", score)
		reply(ctx, s, log, chatID, msgs.GeneralError, nil)
		return
	}
	if err := f.deps.Sessions.Clear(ctx, userID); err != nil {
		log.WarnContext(ctx, "Failed to clear quiz session", "error", err, "user_id", userID)
	}

	log.InfoContext(ctx, "Quiz completed", "user_id", userID, "score", score, "category", category)

	text := fmt.Sprintf(msgs.ResultFormat, score, category, category.Recommendation())
	replyMarkdown(ctx, s, log, chatID, text, resultKeyboard(msgs))
}

// NewRestartQuizHandler returns the handler for the "Retake the test" button.
func NewRestartQuizHandler(deps HandlerDeps) bot.HandlerFunc {
	return restartQuizHandler{deps}.Handle
}

type restartQuizHandler struct {
	deps HandlerDeps
}

func (h restartQuizHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "restart_quiz")

	if update.CallbackQuery == nil {
		log.WarnContext(ctx, "Restart handler received update without callback query", "update_id", update.ID)
		return
	}

	s := h.deps.sender(b)
	ackCallback(ctx, s, log, update, "", false)
	quizFlow{h.deps}.begin(ctx, s, log, updateChatID(update), update.CallbackQuery.From.ID)
}

// NewDownloadGuideHandler returns the handler that uploads the guide document.
func NewDownloadGuideHandler(deps HandlerDeps) bot.HandlerFunc {
	return downloadGuideHandler{deps}.Handle
}

type downloadGuideHandler struct {
	deps HandlerDeps
}

func (h downloadGuideHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "download_guide")

	if update.CallbackQuery == nil {
		log.WarnContext(ctx, "Guide handler received update without callback query", "update_id", update.ID)
		return
	}

	s := h.deps.sender(b)
	chatID := updateChatID(update)
	userID := update.CallbackQuery.From.ID
	guide := h.deps.Config.Guide
	msgs := h.deps.Config.Messages

	ackCallback(ctx, s, log, update, "", false)

	f, err := os.Open(guide.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.ErrorContext(ctx, "Guide file is missing", "path", guide.Path)
		} else {
			log.ErrorContext(ctx, "Failed to open guide file", "path", guide.Path, "error", err)
		}
		reply(ctx, s, log, chatID, msgs.GuideUnavailable, nil)
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.WarnContext(ctx, "Failed to close guide file", "error", cerr)
		}
	}()

	fileName := guide.FileName
	if fileName == "" {
		fileName = filepath.Base(guide.Path)
	}

	_, err = s.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: fileName, Data: f},
		Caption:  msgs.GuideCaption,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send guide", "error", err, "chat_id", chatID)
		reply(ctx, s, log, chatID, msgs.GuideUnavailable, nil)
		return
	}

	if err := h.deps.Store.MarkGuideDownloaded(ctx, userID); err != nil {
		log.ErrorContext(ctx, "Failed to flag guide download", "error", err, "user_id", userID)
		return
	}
	log.InfoContext(ctx, "Guide sent", "user_id", userID)
}
