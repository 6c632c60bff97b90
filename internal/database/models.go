package database

import (
	"database/sql"
	"time"
)

// UserProfile is the persisted record of a Telegram user: identity, consent,
// quiz outcome and ticketing flags. Score and RiskCategory are written
// together once the questionnaire is complete.
type UserProfile struct {
	UserID       int64  `db:"user_id"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	Username     string `db:"username"`
	LanguageCode string `db:"language_code"`

	RegisteredAt      time.Time `db:"registered_at"`
	LastInteractionAt time.Time `db:"last_interaction_at"`

	PolicyAccepted bool `db:"policy_accepted"`
	OfferAccepted  bool `db:"offer_accepted"`

	Score        sql.NullInt64  `db:"score"`
	RiskCategory sql.NullString `db:"risk_category"`

	GuideDownloaded  bool `db:"guide_downloaded"`
	HasAskedQuestion bool `db:"has_asked_question"`
	AdminNotified    bool `db:"admin_notified"`
}

// ConsentGiven reports whether both the privacy policy and the offer were accepted.
func (p *UserProfile) ConsentGiven() bool {
	return p.PolicyAccepted && p.OfferAccepted
}

// Ticket is a user question and, once answered, the administrator's reply.
// Answers are stored on the question row itself; ParentID is only set on
// rows that represent an answer to another ticket.
type Ticket struct {
	ID         int64          `db:"id"`
	UserID     int64          `db:"user_id"`
	Question   string         `db:"question"`
	Answer     sql.NullString `db:"answer"`
	Answered   bool           `db:"answered"`
	ParentID   sql.NullInt64  `db:"parent_id"`
	CreatedAt  time.Time      `db:"created_at"`
	AnsweredAt sql.NullTime   `db:"answered_at"`
}

// Stats holds the aggregate counters shown in the admin panel.
type Stats struct {
	TotalUsers      int `db:"total_users"`
	ConsentAccepted int `db:"consent_accepted"`
	QuizCompleted   int `db:"quiz_completed"`
	GuideDownloaded int `db:"guide_downloaded"`
}

// UserSummary is the subset of a profile returned by the admin user lookup.
type UserSummary struct {
	FirstName       string         `db:"first_name"`
	LastName        string         `db:"last_name"`
	Username        string         `db:"username"`
	RegisteredAt    time.Time      `db:"registered_at"`
	RiskCategory    sql.NullString `db:"risk_category"`
	Score           sql.NullInt64  `db:"score"`
	GuideDownloaded bool           `db:"guide_downloaded"`
}
