package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

type sqliteStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore keeps session state in the conversation_states table of the
// bot database.
func NewSQLiteStore(db *sqlx.DB, logger *slog.Logger) Store {
	return &sqliteStore{
		db:     db,
		logger: logger.With("component", "session_store", "backend", "sqlite"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *sqliteStore) Load(ctx context.Context, userID int64) (State, error) {
	var data string
	err := s.db.GetContext(ctx, &data, `SELECT data FROM conversation_states WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to load session for user %d: %w", userID, err)
	}

	state, err := decode([]byte(data))
	if err != nil {
		// Undecodable state is treated as absent so the user can start over.
		s.logger.WarnContext(ctx, "Discarding corrupt session state", "user_id", userID, "error", err)
		return State{}, nil
	}
	return state, nil
}

func (s *sqliteStore) Save(ctx context.Context, userID int64, state State) error {
	state.UpdatedAt = s.now()
	data, err := encode(state)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_states (user_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, string(data), state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session for user %d: %w", userID, err)
	}
	return nil
}

func (s *sqliteStore) Clear(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear session for user %d: %w", userID, err)
	}
	return nil
}

func (s *sqliteStore) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan)
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
