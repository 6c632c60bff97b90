package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by update operations whose target row does not exist.
var ErrNotFound = errors.New("database: record not found")

// Store defines the persistence operations used by the bot.
// Lookups return nil, nil when nothing matches.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertUser inserts the profile if its user id is unknown and returns
	// the stored row. An existing row is returned unmodified; created reports
	// which case happened.
	UpsertUser(ctx context.Context, profile *UserProfile) (stored *UserProfile, created bool, err error)

	// GetUser retrieves a profile by Telegram user id.
	GetUser(ctx context.Context, userID int64) (*UserProfile, error)

	// TouchInteraction sets last_interaction_at to now.
	TouchInteraction(ctx context.Context, userID int64) error

	// UpdateConsent stores both consent flags.
	UpdateConsent(ctx context.Context, userID int64, policyAccepted, offerAccepted bool) error

	// SaveQuizResult stores score and risk category together and touches last_interaction_at.
	SaveQuizResult(ctx context.Context, userID int64, score int, category string) error

	// MarkGuideDownloaded sets guide_downloaded.
	MarkGuideDownloaded(ctx context.Context, userID int64) error

	// MarkQuestionAsked sets has_asked_question.
	MarkQuestionAsked(ctx context.Context, userID int64) error

	// MarkAdminNotified sets admin_notified.
	MarkAdminNotified(ctx context.Context, userID int64) error

	// GetStats computes the admin panel counters in one pass over users.
	GetStats(ctx context.Context) (*Stats, error)

	// FindUserByUsername does a case-insensitive exact match on username.
	// When several rows match, the lowest user id wins.
	FindUserByUsername(ctx context.Context, username string) (*UserSummary, error)

	// CreateTicket stores a new unanswered question.
	CreateTicket(ctx context.Context, userID int64, question string) (*Ticket, error)

	// GetTicket retrieves a ticket by id.
	GetTicket(ctx context.Context, id int64) (*Ticket, error)

	// AnswerTicket records the answer on the ticket itself and marks it answered.
	AnswerTicket(ctx context.Context, id int64, answer string) (*Ticket, error)

	// ListOpenTickets returns unanswered questions, oldest first.
	ListOpenTickets(ctx context.Context) ([]Ticket, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

const userColumns = `user_id, first_name, last_name, username, language_code,
	registered_at, last_interaction_at, policy_accepted, offer_accepted,
	score, risk_category, guide_downloaded, has_asked_question, admin_notified`

const ticketColumns = `id, user_id, question, answer, answered, parent_id, created_at, answered_at`

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *sqlxStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil
	return nil
}

// UpsertUser inserts a profile for an unseen user id inside a transaction.
func (s *sqlxStore) UpsertUser(ctx context.Context, profile *UserProfile) (*UserProfile, bool, error) {
	if profile == nil {
		return nil, false, errors.New("cannot upsert nil user profile")
	}
	if profile.UserID == 0 {
		return nil, false, errors.New("user profile must have a non-zero user_id")
	}

	now := s.now()
	row := *profile
	if row.RegisteredAt.IsZero() {
		row.RegisteredAt = now
	}
	if row.LastInteractionAt.IsZero() {
		row.LastInteractionAt = now
	}

	var stored UserProfile
	var created bool
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.NamedExecContext(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES (:user_id, :first_name, :last_name, :username, :language_code,
				:registered_at, :last_interaction_at, :policy_accepted, :offer_accepted,
				:score, :risk_category, :guide_downloaded, :has_asked_question, :admin_notified)
			ON CONFLICT (user_id) DO NOTHING`, &row)
		if err != nil {
			return fmt.Errorf("failed to insert user %d: %w", row.UserID, err)
		}
		if affected, err := result.RowsAffected(); err == nil {
			created = affected == 1
		}
		if err := tx.GetContext(ctx, &stored, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, row.UserID); err != nil {
			return fmt.Errorf("failed to read back user %d: %w", row.UserID, err)
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user", "user_id", profile.UserID, "error", err)
		return nil, false, err
	}

	if created {
		s.logger.InfoContext(ctx, "Registered new user", "user_id", stored.UserID, "username", stored.Username)
	}
	return &stored, created, nil
}

// GetUser retrieves a profile by user id. Returns nil, nil if not found.
func (s *sqlxStore) GetUser(ctx context.Context, userID int64) (*UserProfile, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var profile UserProfile
	err := s.db.GetContext(ctx, &profile, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No user profile found", "user_id", userID)
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching user", "user_id", userID, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user by ID", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &profile, nil
}

// updateUser runs a single-row UPDATE on users and maps "no rows" to ErrNotFound.
func (s *sqlxStore) updateUser(ctx context.Context, op string, userID int64, query string, args ...any) error {
	if userID == 0 {
		return fmt.Errorf("%s: user_id cannot be zero", op)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating user", "op", op, "user_id", userID, "error", err)
		return fmt.Errorf("%s for user %d: %w", op, userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count", "op", op, "user_id", userID, "error", err)
		return nil
	}
	if affected == 0 {
		return fmt.Errorf("%s for user %d: %w", op, userID, ErrNotFound)
	}

	s.logger.DebugContext(ctx, "User updated", "op", op, "user_id", userID)
	return nil
}

func (s *sqlxStore) TouchInteraction(ctx context.Context, userID int64) error {
	return s.updateUser(ctx, "touch interaction", userID,
		`UPDATE users SET last_interaction_at = ? WHERE user_id = ?`, s.now(), userID)
}

func (s *sqlxStore) UpdateConsent(ctx context.Context, userID int64, policyAccepted, offerAccepted bool) error {
	return s.updateUser(ctx, "update consent", userID,
		`UPDATE users SET policy_accepted = ?, offer_accepted = ?, last_interaction_at = ? WHERE user_id = ?`,
		policyAccepted, offerAccepted, s.now(), userID)
}

func (s *sqlxStore) SaveQuizResult(ctx context.Context, userID int64, score int, category string) error {
	if category == "" {
		return fmt.Errorf("save quiz result: category cannot be empty")
	}
	return s.updateUser(ctx, "save quiz result", userID,
		`UPDATE users SET score = ?, risk_category = ?, last_interaction_at = ? WHERE user_id = ?`,
		score, category, s.now(), userID)
}

func (s *sqlxStore) MarkGuideDownloaded(ctx context.Context, userID int64) error {
	return s.updateUser(ctx, "mark guide downloaded", userID,
		`UPDATE users SET guide_downloaded = 1, last_interaction_at = ? WHERE user_id = ?`, s.now(), userID)
}

func (s *sqlxStore) MarkQuestionAsked(ctx context.Context, userID int64) error {
	return s.updateUser(ctx, "mark question asked", userID,
		`UPDATE users SET has_asked_question = 1 WHERE user_id = ?`, userID)
}

func (s *sqlxStore) MarkAdminNotified(ctx context.Context, userID int64) error {
	return s.updateUser(ctx, "mark admin notified", userID,
		`UPDATE users SET admin_notified = 1 WHERE user_id = ?`, userID)
}

// GetStats counts users with four independent predicates in one query.
func (s *sqlxStore) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := s.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total_users,
			COALESCE(SUM(CASE WHEN policy_accepted AND offer_accepted THEN 1 ELSE 0 END), 0) AS consent_accepted,
			COALESCE(SUM(CASE WHEN score > 0 AND risk_category IS NOT NULL THEN 1 ELSE 0 END), 0) AS quiz_completed,
			COALESCE(SUM(CASE WHEN guide_downloaded THEN 1 ELSE 0 END), 0) AS guide_downloaded
		FROM users`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error computing statistics", "error", err)
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return &stats, nil
}

// FindUserByUsername looks a user up by handle. Returns nil, nil if not found.
func (s *sqlxStore) FindUserByUsername(ctx context.Context, username string) (*UserSummary, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}

	var summary UserSummary
	err := s.db.GetContext(ctx, &summary, `
		SELECT first_name, last_name, username, registered_at, risk_category, score, guide_downloaded
		FROM users
		WHERE lower(username) = lower(?)
		ORDER BY user_id
		LIMIT 1`, username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No user found for username", "username", username)
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error looking up user by username", "username", username, "error", err)
		return nil, fmt.Errorf("failed to find user %q: %w", username, err)
	}
	return &summary, nil
}

// CreateTicket inserts an unanswered question and returns it with its id.
func (s *sqlxStore) CreateTicket(ctx context.Context, userID int64, question string) (*Ticket, error) {
	if userID == 0 {
		return nil, fmt.Errorf("ticket must have a non-zero user_id")
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("ticket must have non-empty question")
	}

	ticket := &Ticket{
		UserID:    userID,
		Question:  question,
		CreatedAt: s.now(),
	}
	result, err := s.db.NamedExecContext(ctx, `
		INSERT INTO tickets (user_id, question, answered, created_at)
		VALUES (:user_id, :question, 0, :created_at)`, ticket)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving ticket", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to save ticket for user %d: %w", userID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket id: %w", err)
	}
	ticket.ID = id

	s.logger.InfoContext(ctx, "Ticket created", "ticket_id", ticket.ID, "user_id", userID)
	return ticket, nil
}

// GetTicket retrieves a ticket by id. Returns nil, nil if not found.
func (s *sqlxStore) GetTicket(ctx context.Context, id int64) (*Ticket, error) {
	var ticket Ticket
	err := s.db.GetContext(ctx, &ticket, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting ticket", "ticket_id", id, "error", err)
		return nil, fmt.Errorf("failed to get ticket %d: %w", id, err)
	}
	return &ticket, nil
}

// AnswerTicket stores the answer in place. Returns nil, nil if the ticket does not exist.
func (s *sqlxStore) AnswerTicket(ctx context.Context, id int64, answer string) (*Ticket, error) {
	var ticket Ticket
	found := true
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE tickets SET answer = ?, answered = 1, answered_at = ? WHERE id = ?`,
			answer, s.now(), id)
		if err != nil {
			return fmt.Errorf("failed to answer ticket %d: %w", id, err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			found = false
			return nil
		}
		return tx.GetContext(ctx, &ticket, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error answering ticket", "ticket_id", id, "error", err)
		return nil, err
	}
	if !found {
		return nil, nil
	}

	s.logger.InfoContext(ctx, "Ticket answered", "ticket_id", id, "user_id", ticket.UserID)
	return &ticket, nil
}

// ListOpenTickets returns questions that have no answer yet.
func (s *sqlxStore) ListOpenTickets(ctx context.Context) ([]Ticket, error) {
	var tickets []Ticket
	err := s.db.SelectContext(ctx, &tickets, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE answered = 0 AND parent_id IS NULL
		ORDER BY id`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing open tickets", "error", err)
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}
	return tickets, nil
}

// RunSQLMaintenance executes VACUUM, which SQLite requires outside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
