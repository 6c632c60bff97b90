// Package session keeps the per-user conversation state that lives between
// updates: which flow the user is in, quiz progress, consent toggles and the
// ticket an administrator is currently answering.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/VDAgency/RiskBotCrypto/internal/quiz"
)

// Mode selects how the next free-text message from the user is interpreted.
type Mode string

// Conversation modes. ModeIdle is the zero value.
const (
	ModeIdle             Mode = ""
	ModeConsent          Mode = "consent"
	ModeQuiz             Mode = "quiz"
	ModeAwaitingQuestion Mode = "awaiting_question"
	ModeAwaitingAnswer   Mode = "awaiting_answer"
	ModeAwaitingUsername Mode = "awaiting_username"
)

// Cancellable reports whether the mode waits for free-text input that the
// Cancel button can abort.
func (m Mode) Cancellable() bool {
	switch m {
	case ModeAwaitingQuestion, ModeAwaitingAnswer, ModeAwaitingUsername:
		return true
	default:
		return false
	}
}

// State is one user's conversation state.
type State struct {
	Mode Mode          `json:"mode,omitempty"`
	Quiz quiz.Progress `json:"quiz"`

	// Consent toggles shown on the onboarding keyboard before submission.
	PolicyChecked bool `json:"policy_checked,omitempty"`
	OfferChecked  bool `json:"offer_checked,omitempty"`

	// Set while an administrator is writing a reply.
	TicketID int64 `json:"ticket_id,omitempty"`
	AskerID  int64 `json:"asker_id,omitempty"`

	// Message carrying the consent keyboard, edited in place on toggle.
	PromptMessageID int `json:"prompt_message_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists conversation state keyed by Telegram user id.
type Store interface {
	// Load returns the stored state, or a zero State if none exists.
	Load(ctx context.Context, userID int64) (State, error)

	// Save overwrites the state and stamps UpdatedAt.
	Save(ctx context.Context, userID int64, state State) error

	// Clear removes any state for the user.
	Clear(ctx context.Context, userID int64) error

	// Purge drops states untouched for longer than olderThan and reports how
	// many were removed. Backends with native expiry return 0.
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
}

func encode(state State) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session state: %w", err)
	}
	return data, nil
}

func decode(data []byte) (State, error) {
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to decode session state: %w", err)
	}
	return state, nil
}
