package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/VDAgency/RiskBotCrypto/internal/database"
)

func newTestStore(t *testing.T) (database.Store, *sqlx.DB) {
	t.Helper()
	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })
	return database.NewStore(db, nil), db
}

func mustUpsert(t *testing.T, store database.Store, id int64, username string) *database.UserProfile {
	t.Helper()
	p, _, err := store.UpsertUser(context.Background(), &database.UserProfile{
		UserID:    id,
		FirstName: "User",
		Username:  username,
	})
	if err != nil {
		t.Fatalf("UpsertUser(%d): %v", id, err)
	}
	return p
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"bot.db", "bot.db"},
		{"file:bot.db", "bot.db"},
		{"file:bot.db?_pragma=busy_timeout(5000)", "bot.db"},
		{"/var/lib/bot/my%20data.db", "/var/lib/bot/my data.db"},
		{":memory:", ":memory:"},
	}
	for _, tt := range tests {
		if got := database.ExtractDBNameFromPath(tt.input); got != tt.expected {
			t.Errorf("ExtractDBNameFromPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestUpsertUser_CreatesOnceAndKeepsExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newTestStore(t)

	first, created, err := store.UpsertUser(ctx, &database.UserProfile{UserID: 42, FirstName: "Ann", Username: "ann"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Fatal("first upsert should create the row")
	}
	if first.RegisteredAt.IsZero() || first.LastInteractionAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", first)
	}
	if first.PolicyAccepted || first.OfferAccepted || first.Score.Valid || first.RiskCategory.Valid {
		t.Fatalf("new profile should start empty: %+v", first)
	}

	if err := store.SaveQuizResult(ctx, 42, 15, "Moderate"); err != nil {
		t.Fatalf("SaveQuizResult: %v", err)
	}

	second, created, err := store.UpsertUser(ctx, &database.UserProfile{UserID: 42, FirstName: "Changed"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Error("second upsert should not create a row")
	}
	if second.FirstName != "Ann" {
		t.Errorf("existing profile overwritten: first_name = %q", second.FirstName)
	}
	if !second.Score.Valid || second.Score.Int64 != 15 {
		t.Errorf("score lost on re-upsert: %+v", second.Score)
	}
}

func TestUpsertUser_RejectsInvalidInput(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	if _, _, err := store.UpsertUser(context.Background(), nil); err == nil {
		t.Error("expected error for nil profile")
	}
	if _, _, err := store.UpsertUser(context.Background(), &database.UserProfile{}); err == nil {
		t.Error("expected error for zero user id")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	p, err := store.GetUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile, got %+v", p)
	}
}

func TestUserUpdates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newTestStore(t)
	mustUpsert(t, store, 7, "seven")

	if err := store.UpdateConsent(ctx, 7, true, true); err != nil {
		t.Fatalf("UpdateConsent: %v", err)
	}
	if err := store.SaveQuizResult(ctx, 7, 22, "Aggressive"); err != nil {
		t.Fatalf("SaveQuizResult: %v", err)
	}
	if err := store.MarkGuideDownloaded(ctx, 7); err != nil {
		t.Fatalf("MarkGuideDownloaded: %v", err)
	}
	if err := store.MarkQuestionAsked(ctx, 7); err != nil {
		t.Fatalf("MarkQuestionAsked: %v", err)
	}
	if err := store.MarkAdminNotified(ctx, 7); err != nil {
		t.Fatalf("MarkAdminNotified: %v", err)
	}
	if err := store.TouchInteraction(ctx, 7); err != nil {
		t.Fatalf("TouchInteraction: %v", err)
	}

	p, err := store.GetUser(ctx, 7)
	if err != nil || p == nil {
		t.Fatalf("GetUser: %v, %v", p, err)
	}
	if !p.ConsentGiven() {
		t.Error("consent not stored")
	}
	if p.Score.Int64 != 22 || p.RiskCategory.String != "Aggressive" {
		t.Errorf("quiz result = %v/%v", p.Score, p.RiskCategory)
	}
	if !p.GuideDownloaded || !p.HasAskedQuestion || !p.AdminNotified {
		t.Errorf("flags not set: %+v", p)
	}
	if p.LastInteractionAt.Before(p.RegisteredAt) {
		t.Errorf("last interaction %v before registration %v", p.LastInteractionAt, p.RegisteredAt)
	}
}

func TestUserUpdates_UnknownUser(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	err := store.UpdateConsent(context.Background(), 404, true, false)
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := store.SaveQuizResult(context.Background(), 404, 10, ""); err == nil {
		t.Error("expected error for empty category")
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newTestStore(t)

	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats on empty db: %v", err)
	}
	if *stats != (database.Stats{}) {
		t.Fatalf("empty stats = %+v", stats)
	}

	for id := int64(1); id <= 4; id++ {
		mustUpsert(t, store, id, "")
	}
	_ = store.UpdateConsent(ctx, 1, true, true)
	_ = store.UpdateConsent(ctx, 2, true, true)
	_ = store.UpdateConsent(ctx, 3, true, false)
	_ = store.SaveQuizResult(ctx, 1, 9, "Conservative")
	_ = store.MarkGuideDownloaded(ctx, 1)
	_ = store.MarkGuideDownloaded(ctx, 4)

	stats, err = store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	want := database.Stats{TotalUsers: 4, ConsentAccepted: 2, QuizCompleted: 1, GuideDownloaded: 2}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}

func TestFindUserByUsername(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newTestStore(t)
	mustUpsert(t, store, 20, "Trader")
	mustUpsert(t, store, 10, "trader")
	mustUpsert(t, store, 30, "other")

	got, err := store.FindUserByUsername(ctx, "TRADER")
	if err != nil {
		t.Fatalf("FindUserByUsername: %v", err)
	}
	if got == nil || got.Username != "trader" {
		t.Fatalf("expected lowest user id match, got %+v", got)
	}

	got, err = store.FindUserByUsername(ctx, "nobody")
	if err != nil || got != nil {
		t.Fatalf("unknown username = %+v, %v", got, err)
	}

	got, err = store.FindUserByUsername(ctx, "   ")
	if err != nil || got != nil {
		t.Fatalf("blank username = %+v, %v", got, err)
	}
}

func TestTickets_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newTestStore(t)
	mustUpsert(t, store, 5, "asker")

	first, err := store.CreateTicket(ctx, 5, "What leverage should I use?")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	second, err := store.CreateTicket(ctx, 5, "Is spot safer?")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("ids not increasing: %d, %d", first.ID, second.ID)
	}

	open, err := store.ListOpenTickets(ctx)
	if err != nil {
		t.Fatalf("ListOpenTickets: %v", err)
	}
	if len(open) != 2 || open[0].ID != first.ID {
		t.Fatalf("open tickets = %+v", open)
	}

	answered, err := store.AnswerTicket(ctx, first.ID, "Start with 1x.")
	if err != nil {
		t.Fatalf("AnswerTicket: %v", err)
	}
	if answered == nil || !answered.Answered || answered.Answer.String != "Start with 1x." || !answered.AnsweredAt.Valid {
		t.Fatalf("answered ticket = %+v", answered)
	}
	if answered.ParentID.Valid {
		t.Error("answer should be stored in place, not as a child row")
	}

	open, err = store.ListOpenTickets(ctx)
	if err != nil {
		t.Fatalf("ListOpenTickets: %v", err)
	}
	if len(open) != 1 || open[0].ID != second.ID {
		t.Fatalf("open tickets after answer = %+v", open)
	}

	got, err := store.GetTicket(ctx, first.ID)
	if err != nil || got == nil || !got.Answered {
		t.Fatalf("GetTicket = %+v, %v", got, err)
	}
}

func TestTickets_Missing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newTestStore(t)

	got, err := store.GetTicket(ctx, 99)
	if err != nil || got != nil {
		t.Fatalf("GetTicket(99) = %+v, %v", got, err)
	}
	answered, err := store.AnswerTicket(ctx, 99, "nobody asked")
	if err != nil || answered != nil {
		t.Fatalf("AnswerTicket(99) = %+v, %v", answered, err)
	}
	if _, err := store.CreateTicket(ctx, 1, "  "); err == nil {
		t.Error("expected error for blank question")
	}
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := store.RunSQLMaintenance(context.Background()); err != nil {
		t.Fatalf("RunSQLMaintenance: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.RunSQLMaintenance(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled maintenance err = %v", err)
	}
}
