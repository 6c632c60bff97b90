package tasks_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/VDAgency/RiskBotCrypto/internal/bot/tasks"
	"github.com/VDAgency/RiskBotCrypto/internal/config"
	"github.com/VDAgency/RiskBotCrypto/internal/database"
	"github.com/VDAgency/RiskBotCrypto/internal/session"
	"github.com/VDAgency/RiskBotCrypto/internal/telegram/telegramtest"
)

const inboxID int64 = 900

func newDeps(t *testing.T) (tasks.TaskDeps, *telegramtest.Recorder) {
	t.Helper()
	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := &telegramtest.Recorder{}
	return tasks.TaskDeps{
		Logger: logger,
		Config: &config.Config{
			Admin:    config.AdminConfig{IDs: []int64{inboxID}, InboxID: inboxID},
			Session:  config.SessionConfig{TTL: time.Hour},
			Messages: config.DefaultMessages,
		},
		Store:    database.NewStore(db, logger),
		Sessions: session.NewSQLiteStore(db, logger),
		Sender:   rec,
	}, rec
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()
	deps, _ := newDeps(t)
	registered := tasks.RegisterAllTasks(deps)

	for _, name := range []string{tasks.TaskSQLMaintenance, tasks.TaskOpenQuestionsReminder, tasks.TaskSessionCleanup} {
		if registered[name] == nil {
			t.Errorf("task %q not registered", name)
		}
	}
	// Every default schedule must point at a registered task.
	for name := range config.DefaultTasks {
		if registered[name] == nil {
			t.Errorf("default task %q has no implementation", name)
		}
	}
}

func TestSQLMaintenance(t *testing.T) {
	t.Parallel()
	deps, _ := newDeps(t)
	run := tasks.RegisterAllTasks(deps)[tasks.TaskSQLMaintenance]

	if err := run(context.Background()); err != nil {
		t.Fatalf("maintenance: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled maintenance err = %v", err)
	}
}

func TestOpenQuestionsReminder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	deps, rec := newDeps(t)
	run := tasks.RegisterAllTasks(deps)[tasks.TaskOpenQuestionsReminder]

	if err := run(ctx); err != nil {
		t.Fatalf("empty reminder: %v", err)
	}
	if len(rec.Messages) != 0 {
		t.Fatalf("reminder sent with no open questions")
	}

	if _, _, err := deps.Store.UpsertUser(ctx, &database.UserProfile{UserID: 1, FirstName: "A"}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	first, _ := deps.Store.CreateTicket(ctx, 1, "one")
	if _, err := deps.Store.CreateTicket(ctx, 1, "two"); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if err := run(ctx); err != nil {
		t.Fatalf("reminder: %v", err)
	}
	got := rec.MessagesTo(inboxID)
	if len(got) != 1 || !strings.Contains(got[0], "2 open question") || !strings.Contains(got[0], "#"+strconv.FormatInt(first.ID, 10)) {
		t.Errorf("reminder = %q", got)
	}

	rec.FailChats = map[int64]bool{inboxID: true}
	if err := run(ctx); !errors.Is(err, telegramtest.ErrSend) {
		t.Errorf("failed send err = %v", err)
	}
}

func TestOpenQuestionsReminder_UsesConfiguredText(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	deps, rec := newDeps(t)
	deps.Config.Messages.ReminderFormat = "Открытых вопросов: %d, первый #%d"
	run := tasks.RegisterAllTasks(deps)[tasks.TaskOpenQuestionsReminder]

	if _, _, err := deps.Store.UpsertUser(ctx, &database.UserProfile{UserID: 1, FirstName: "A"}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	first, err := deps.Store.CreateTicket(ctx, 1, "one")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if err := run(ctx); err != nil {
		t.Fatalf("reminder: %v", err)
	}
	want := "Открытых вопросов: 1, первый #" + strconv.FormatInt(first.ID, 10)
	if got := rec.MessagesTo(inboxID); len(got) != 1 || got[0] != want {
		t.Errorf("reminder = %q, want %q", got, want)
	}
}

func TestSessionCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	deps, _ := newDeps(t)

	if err := deps.Sessions.Save(ctx, 5, session.State{Mode: session.ModeQuiz}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	run := tasks.RegisterAllTasks(deps)[tasks.TaskSessionCleanup]
	if err := run(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if st, _ := deps.Sessions.Load(ctx, 5); st.Mode != session.ModeQuiz {
		t.Errorf("fresh session purged: %+v", st)
	}

	deps.Config.Session.TTL = 0
	if err := run(ctx); err != nil {
		t.Fatalf("cleanup with ttl 0: %v", err)
	}
	if st, _ := deps.Sessions.Load(ctx, 5); st.Mode != session.ModeQuiz {
		t.Errorf("zero ttl purged session: %+v", st)
	}
}
