// Package ticket relays user questions to the administrator inbox and
// administrator answers back to the asker.
//
// Tickets are persisted before any message is sent. A failed send never
// rolls back the write: the caller gets the stored ticket together with an
// error wrapping ErrDelivery.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/VDAgency/RiskBotCrypto/internal/database"
	"github.com/VDAgency/RiskBotCrypto/internal/gemini"
	"github.com/VDAgency/RiskBotCrypto/internal/telegram"
)

var (
	// ErrNotFound is returned when a ticket id does not exist.
	ErrNotFound = errors.New("ticket not found")
	// ErrAlreadyAnswered is returned when answering a closed ticket.
	ErrAlreadyAnswered = errors.New("ticket already answered")
	// ErrDelivery wraps a failed Telegram send after the ticket was stored.
	ErrDelivery = errors.New("ticket delivery failed")
)

// AnswerCallbackPrefix starts the callback data of the inbox "Reply" button.
const AnswerCallbackPrefix = "answer_"

// PreviewLength is the number of runes of a question shown in listings.
const PreviewLength = 50

// Options configures a Service.
type Options struct {
	// InboxID receives new questions.
	InboxID int64
	// ReplyButton labels the inline button attached to inbox notifications.
	ReplyButton string
	// AnswerFormat wraps the administrator's answer for the asker; one %s verb.
	AnswerFormat string
	// Suggester drafts an answer shown to the administrator. Optional.
	Suggester      gemini.Client
	SuggestTimeout time.Duration
}

// Service implements the question and answer workflow.
type Service struct {
	store  database.Store
	opts   Options
	logger *slog.Logger
}

// NewService creates a ticket service.
func NewService(store database.Store, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.ReplyButton == "" {
		opts.ReplyButton = "Reply"
	}
	if opts.AnswerFormat == "" {
		opts.AnswerFormat = "%s"
	}
	if opts.SuggestTimeout <= 0 {
		opts.SuggestTimeout = 20 * time.Second
	}
	return &Service{
		store:  store,
		opts:   opts,
		logger: logger.With("component", "ticket_service"),
	}
}

// Submit stores the question and notifies the inbox. When the notification
// fails the stored ticket is still returned, with an error wrapping ErrDelivery.
func (s *Service) Submit(ctx context.Context, sender telegram.Sender, asker *models.User, question string) (*database.Ticket, error) {
	if asker == nil {
		return nil, fmt.Errorf("asker cannot be nil")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}
	log := s.logger.With("user_id", asker.ID)

	t, err := s.store.CreateTicket(ctx, asker.ID, question)
	if err != nil {
		return nil, fmt.Errorf("failed to store question: %w", err)
	}
	log = log.With("ticket_id", t.ID)

	if err := s.store.MarkQuestionAsked(ctx, asker.ID); err != nil {
		log.WarnContext(ctx, "Failed to flag user as having asked a question", "error", err)
	}

	draft := s.suggest(ctx, asker.ID, question)

	_, err = sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      s.opts.InboxID,
		Text:        FormatNotification(t, asker, draft),
		ReplyMarkup: ReplyKeyboard(s.opts.ReplyButton, t.ID),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to notify inbox about new question", "inbox_id", s.opts.InboxID, "error", err)
		return t, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	if err := s.store.MarkAdminNotified(ctx, asker.ID); err != nil {
		log.WarnContext(ctx, "Failed to flag admin notification", "error", err)
	}

	log.InfoContext(ctx, "Question delivered to inbox", "draft_attached", draft != "")
	return t, nil
}

// suggest asks the AI client for a draft. Failures only cost the draft.
func (s *Service) suggest(ctx context.Context, userID int64, question string) string {
	if s.opts.Suggester == nil {
		return ""
	}

	var category string
	if profile, err := s.store.GetUser(ctx, userID); err == nil && profile != nil && profile.RiskCategory.Valid {
		category = profile.RiskCategory.String
	}

	draftCtx, cancel := context.WithTimeout(ctx, s.opts.SuggestTimeout)
	defer cancel()

	draft, err := s.opts.Suggester.SuggestAnswer(draftCtx, question, category)
	if err != nil {
		s.logger.WarnContext(ctx, "Answer draft unavailable", "user_id", userID, "error", err)
		return ""
	}
	return draft
}

// Get loads an open ticket for answering. It returns ErrNotFound or
// ErrAlreadyAnswered when the ticket cannot be answered.
func (s *Service) Get(ctx context.Context, id int64) (*database.Ticket, error) {
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if t.Answered {
		return t, ErrAlreadyAnswered
	}
	return t, nil
}

// Answer records the answer on the ticket and relays it to the asker. When
// the relay fails the ticket stays answered and the error wraps ErrDelivery.
func (s *Service) Answer(ctx context.Context, sender telegram.Sender, id int64, answer string) (*database.Ticket, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("answer cannot be empty")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	t, err := s.store.AnswerTicket(ctx, id, answer)
	if err != nil {
		return nil, fmt.Errorf("failed to store answer: %w", err)
	}
	if t == nil {
		return nil, ErrNotFound
	}
	log := s.logger.With("ticket_id", t.ID, "user_id", t.UserID)

	_, err = sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.UserID,
		Text:   fmt.Sprintf(s.opts.AnswerFormat, answer),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to relay answer to user", "error", err)
		return t, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	log.InfoContext(ctx, "Answer relayed to user")
	return t, nil
}

// Open returns unanswered questions, oldest first.
func (s *Service) Open(ctx context.Context) ([]database.Ticket, error) {
	return s.store.ListOpenTickets(ctx)
}

// Preview returns the first PreviewLength runes of a question, with "..."
// appended only when something was cut.
func Preview(question string) string {
	r := []rune(question)
	if len(r) <= PreviewLength {
		return question
	}
	return string(r[:PreviewLength]) + "..."
}

// FormatNotification renders the inbox message for a new ticket.
func FormatNotification(t *database.Ticket, asker *models.User, draft string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📩 New question #%d\n", t.ID)
	fmt.Fprintf(&sb, "From: %s\n", telegram.DisplayName(asker))
	fmt.Fprintf(&sb, "User ID: %d\n\n", asker.ID)
	sb.WriteString(t.Question)
	if draft != "" {
		sb.WriteString("\n\n🤖 Suggested answer:\n")
		sb.WriteString(draft)
	}
	return sb.String()
}

// FormatOpenList renders one line per open ticket.
func FormatOpenList(tickets []database.Ticket) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📬 Open questions: %d\n", len(tickets))
	for _, t := range tickets {
		fmt.Fprintf(&sb, "\n#%d User_%d (id %d): %s", t.ID, t.UserID, t.UserID, Preview(t.Question))
	}
	return sb.String()
}

// ReplyKeyboard builds one "Reply" button per ticket id.
func ReplyKeyboard(label string, ids ...int64) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(ids))
	for _, id := range ids {
		text := label
		if len(ids) > 1 {
			text = fmt.Sprintf("%s #%d", label, id)
		}
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         text,
			CallbackData: AnswerCallbackPrefix + strconv.FormatInt(id, 10),
		}})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ParseAnswerCallback extracts the ticket id from "answer_<id>" callback data.
func ParseAnswerCallback(data string) (int64, bool) {
	rest, ok := strings.CutPrefix(data, AnswerCallbackPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
