package session_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/VDAgency/RiskBotCrypto/internal/database"
	"github.com/VDAgency/RiskBotCrypto/internal/quiz"
	"github.com/VDAgency/RiskBotCrypto/internal/session"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newSQLiteStore(t *testing.T) session.Store {
	t.Helper()
	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })
	return session.NewSQLiteStore(db, discard)
}

func newRedisStore(t *testing.T, ttl time.Duration) (session.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return session.NewRedisStore(client, "riskbot:session:", ttl, discard), mr
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()

	empty, err := store.Load(ctx, 1)
	if err != nil {
		t.Fatalf("Load of unknown user: %v", err)
	}
	if empty.Mode != session.ModeIdle || empty.Quiz != (quiz.Progress{}) {
		t.Fatalf("unknown user state = %+v, want zero", empty)
	}

	p, _ := quiz.Begin().Advance(quiz.OptionC)
	want := session.State{
		Mode:            session.ModeQuiz,
		Quiz:            p,
		PolicyChecked:   true,
		PromptMessageID: 77,
	}
	if err := store.Save(ctx, 1, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Mode != want.Mode || got.Quiz != want.Quiz || !got.PolicyChecked || got.OfferChecked || got.PromptMessageID != 77 {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("Save should stamp UpdatedAt")
	}

	got.Mode = session.ModeAwaitingAnswer
	got.TicketID = 12
	got.AskerID = 99
	if err := store.Save(ctx, 1, got); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	again, _ := store.Load(ctx, 1)
	if again.Mode != session.ModeAwaitingAnswer || again.TicketID != 12 || again.AskerID != 99 {
		t.Errorf("overwrite not visible: %+v", again)
	}

	if err := store.Clear(ctx, 1); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cleared, _ := store.Load(ctx, 1)
	if cleared.Mode != session.ModeIdle {
		t.Errorf("state after Clear = %+v", cleared)
	}
	if err := store.Clear(ctx, 1); err != nil {
		t.Errorf("Clear of missing state: %v", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, newSQLiteStore(t))
}

func TestRedisStore(t *testing.T) {
	t.Parallel()
	store, _ := newRedisStore(t, time.Hour)
	exerciseStore(t, store)
}

func TestSQLiteStore_Purge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newSQLiteStore(t)

	for _, id := range []int64{1, 2, 3} {
		if err := store.Save(ctx, id, session.State{Mode: session.ModeQuiz}); err != nil {
			t.Fatalf("Save(%d): %v", id, err)
		}
	}

	n, err := store.Purge(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 0 {
		t.Fatalf("fresh states purged: %d", n)
	}

	// A negative age puts the cutoff in the future, so everything is stale.
	n, err = store.Purge(ctx, -time.Hour)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 3 {
		t.Errorf("purged %d states, want 3", n)
	}
}

func TestRedisStore_ExpiresAndIgnoresPurge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	if err := store.Save(ctx, 5, session.State{Mode: session.ModeAwaitingQuestion}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists("riskbot:session:5") {
		t.Fatal("expected key riskbot:session:5")
	}

	n, err := store.Purge(ctx, 0)
	if err != nil || n != 0 {
		t.Fatalf("Purge = %d, %v", n, err)
	}

	mr.FastForward(2 * time.Minute)
	got, err := store.Load(ctx, 5)
	if err != nil {
		t.Fatalf("Load after expiry: %v", err)
	}
	if got.Mode != session.ModeIdle {
		t.Errorf("state survived ttl: %+v", got)
	}
}

func TestRedisStore_CorruptStateIsDropped(t *testing.T) {
	t.Parallel()
	store, mr := newRedisStore(t, 0)

	if err := mr.Set("riskbot:session:8", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := store.Load(context.Background(), 8)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Mode != session.ModeIdle {
		t.Errorf("corrupt state = %+v, want zero", got)
	}
}
