package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/dragonlog/internal/auth"
	"github.com/julianstephens/dragonlog/internal/constants"
	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/storage/sqlite"
)

var cheapHasher = auth.Hasher{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 16, SaltLength: 8}

// flakyStore fails checklist writes on demand
type flakyStore struct {
	*sqlite.Store
	failUpsert bool
}

func (f *flakyStore) UpsertDaily(ctx context.Context, userID string, inst models.DailyInstance) error {
	if f.failUpsert {
		return apperrors.Unavailable("upsert daily", errors.New("database is locked"))
	}
	return f.Store.UpsertDaily(ctx, userID, inst)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time       { return c.t }
func (c *clock) advance(days int)     { c.t = c.t.AddDate(0, 0, days) }
func (c *clock) today() string        { return c.t.Format(constants.DateFormat) }
func (c *clock) daysAgo(n int) string { return c.t.AddDate(0, 0, -n).Format(constants.DateFormat) }

func setup(t *testing.T, opts ...Option) (*Session, *flakyStore, *clock) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	fs := &flakyStore{Store: store}
	clk := &clock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}

	n := 0
	base := []Option{
		WithClock(clk.now),
		WithLocation(time.UTC),
		WithHasher(cheapHasher),
		WithIDFunc(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	}
	return New(fs, append(base, opts...)...), fs, clk
}

func register(t *testing.T, s *Session, id string) models.UserProfile {
	t.Helper()
	user, err := s.Register(context.Background(), auth.RegisterRequest{ID: id, Password: "secret1", GoalDays: 4})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return user
}

// completeDay checks every item on date's checklist
func completeDay(t *testing.T, s *Session, date string) {
	t.Helper()
	inst, err := s.EnsureDailyChecklist(context.Background(), date)
	if err != nil {
		t.Fatalf("EnsureDailyChecklist(%s) error = %v", date, err)
	}
	for _, sec := range inst.Sections {
		for _, item := range sec.Items {
			if item.Checked {
				continue
			}
			if _, ok, err := s.ToggleItem(context.Background(), date, sec.ID, item.ID); err != nil || !ok {
				t.Fatalf("ToggleItem(%s) = %v, %v", item.ID, ok, err)
			}
		}
	}
}

func actions(entries []models.LogEntry) map[string]int {
	out := map[string]int{}
	for _, e := range entries {
		out[e.Action]++
	}
	return out
}

func TestRequiresActiveUser(t *testing.T) {
	ctx := context.Background()
	s, store, clk := setup(t)

	checks := map[string]func() error{
		"EnsureDailyChecklist": func() error { _, err := s.EnsureDailyChecklist(ctx, clk.today()); return err },
		"ToggleItem":           func() error { _, _, err := s.ToggleItem(ctx, clk.today(), "a", "b"); return err },
		"Template":             func() error { _, err := s.Template(); return err },
		"RefreshTemplate":      func() error { _, err := s.RefreshTemplate(ctx); return err },
		"SaveTemplate":         func() error { _, err := s.SaveTemplate(ctx, models.Template{}); return err },
		"LoadHistory":          func() error { _, err := s.LoadHistory(ctx); return err },
		"Streak":               func() error { _, err := s.Streak(ctx); return err },
		"Progress":             func() error { _, err := s.Progress(ctx); return err },
		"Logs":                 func() error { _, err := s.Logs(ctx, 10); return err },
		"Resume":               func() error { _, err := s.Resume(ctx, ""); return err },
	}
	for name, fn := range checks {
		t.Run(name, func(t *testing.T) {
			if err := fn(); !errors.Is(err, apperrors.ErrUnauthenticated) {
				t.Errorf("error = %v, want ErrUnauthenticated", err)
			}
		})
	}

	logs, err := store.ListLogs(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 0 {
		t.Errorf("unauthenticated calls wrote %d log entries", len(logs))
	}
}

func TestRegisterSeedsTemplateOnce(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setup(t)
	register(t, s, "alice")

	tmpl, err := s.Template()
	if err != nil {
		t.Fatal(err)
	}
	if len(tmpl.Sections) != 2 || tmpl.ItemCount() != 6 {
		t.Fatalf("seeded template has %d sections, %d items", len(tmpl.Sections), tmpl.ItemCount())
	}

	s.Logout(ctx)
	if _, ok := s.User(); ok {
		t.Fatal("user still active after Logout")
	}
	if _, err := s.Login(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	again, _ := s.Template()
	if diff := cmp.Diff(tmpl, again); diff != "" {
		t.Errorf("template changed across sessions (-first +second):\n%s", diff)
	}

	logs, err := s.Logs(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := actions(logs)
	for action, want := range map[string]int{
		constants.ActionRegister:     1,
		constants.ActionTemplateSeed: 1,
		constants.ActionLogout:       1,
		constants.ActionLogin:        1,
	} {
		if got[action] != want {
			t.Errorf("%s logged %d times, want %d", action, got[action], want)
		}
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setup(t)
	register(t, s, "alice")
	s.Logout(ctx)

	if _, err := s.Login(ctx, "alice", "wrong-password"); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if s.UserID() != "" {
		t.Error("failed login left a user active")
	}
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	s, store, _ := setup(t)
	register(t, s, "alice")

	other := New(store, WithHasher(cheapHasher))
	user, err := other.Resume(ctx, "alice")
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if user.ID != "alice" {
		t.Errorf("Resume() user = %s", user.ID)
	}

	if _, err := other.Resume(ctx, "ghost"); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("Resume(unknown) error = %v, want ErrUnauthenticated", err)
	}
}

func TestEnsureDailyChecklist(t *testing.T) {
	ctx := context.Background()
	s, store, clk := setup(t)
	register(t, s, "alice")

	inst, err := s.EnsureDailyChecklist(ctx, clk.today())
	if err != nil {
		t.Fatalf("EnsureDailyChecklist() error = %v", err)
	}
	total, checked := inst.Counts()
	if total != 6 || checked != 0 {
		t.Errorf("Counts() = %d, %d; want 6, 0", total, checked)
	}

	stored, err := store.FetchDaily(ctx, "alice", clk.today())
	if err != nil {
		t.Fatalf("checklist not persisted: %v", err)
	}
	if diff := cmp.Diff(inst, stored); diff != "" {
		t.Errorf("stored checklist differs (-returned +stored):\n%s", diff)
	}

	// mutating the returned value must not leak into the session or template
	inst.Sections[0].Items[0].Checked = true
	inst.Sections[0].Items[0].Label = "changed"
	again, _ := s.EnsureDailyChecklist(ctx, clk.today())
	if again.Sections[0].Items[0].Checked || again.Sections[0].Items[0].Label == "changed" {
		t.Error("returned checklist shares memory with session state")
	}
	tmpl, _ := s.Template()
	if tmpl.Sections[0].Items[0].Label == "changed" {
		t.Error("returned checklist shares memory with the template")
	}

	if _, err := s.EnsureDailyChecklist(ctx, "2024-6-1"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("EnsureDailyChecklist(bad date) error = %v, want ErrInvalidInput", err)
	}
	if _, err := s.EnsureDailyChecklist(ctx, clk.daysAgo(-1)); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("EnsureDailyChecklist(tomorrow) error = %v, want ErrInvalidInput", err)
	}
}

func TestToggleItem(t *testing.T) {
	ctx := context.Background()
	s, store, clk := setup(t)
	register(t, s, "alice")

	inst, _ := s.EnsureDailyChecklist(ctx, clk.today())
	sec, item := inst.Sections[0], inst.Sections[0].Items[0]

	got, ok, err := s.ToggleItem(ctx, clk.today(), sec.ID, item.ID)
	if err != nil || !ok {
		t.Fatalf("ToggleItem() = %v, %v", ok, err)
	}
	if !got.Sections[0].Items[0].Checked {
		t.Error("item not checked")
	}
	if inst.Sections[0].Items[0].Checked {
		t.Error("toggle mutated the previously returned checklist")
	}

	stored, _ := store.FetchDaily(ctx, "alice", clk.today())
	if !stored.Sections[0].Items[0].Checked {
		t.Error("toggle not persisted")
	}

	stats, err := s.Statistics(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 || stats[0].ItemsChecked != 1 || stats[0].ItemsTotal != 6 {
		t.Errorf("unexpected statistics: %+v", stats)
	}

	logs, _ := s.Logs(ctx, 0)
	if actions(logs)[constants.ActionChecklistToggle] != 1 {
		t.Error("toggle not logged")
	}

	// toggling again unchecks
	got, _, _ = s.ToggleItem(ctx, clk.today(), sec.ID, item.ID)
	if got.Sections[0].Items[0].Checked {
		t.Error("second toggle did not uncheck")
	}
}

func TestToggleItem_UnknownIDs(t *testing.T) {
	ctx := context.Background()
	s, _, clk := setup(t)
	register(t, s, "alice")

	before, _ := s.EnsureDailyChecklist(ctx, clk.today())
	for _, ids := range [][2]string{{"nope", before.Sections[0].Items[0].ID}, {before.Sections[0].ID, "nope"}} {
		got, ok, err := s.ToggleItem(ctx, clk.today(), ids[0], ids[1])
		if err != nil || ok {
			t.Errorf("ToggleItem(%v) = %v, %v; want no-op", ids, ok, err)
		}
		if diff := cmp.Diff(before, got); diff != "" {
			t.Errorf("no-op toggle changed checklist:\n%s", diff)
		}
	}
}

func TestToggleItem_RollbackOnFailure(t *testing.T) {
	ctx := context.Background()
	s, store, clk := setup(t)
	register(t, s, "alice")

	before, _ := s.EnsureDailyChecklist(ctx, clk.today())
	store.failUpsert = true

	_, ok, err := s.ToggleItem(ctx, clk.today(), before.Sections[0].ID, before.Sections[0].Items[0].ID)
	if !errors.Is(err, apperrors.ErrBackendUnavailable) || ok {
		t.Fatalf("ToggleItem() = %v, %v; want ErrBackendUnavailable", ok, err)
	}

	history, _ := s.History()
	if diff := cmp.Diff(before, history[clk.today()]); diff != "" {
		t.Errorf("failed toggle was not rolled back:\n%s", diff)
	}

	store.failUpsert = false
	stored, _ := store.FetchDaily(ctx, "alice", clk.today())
	if stored.Sections[0].Items[0].Checked {
		t.Error("failed toggle reached the store")
	}
}

func TestStreakAndProgress(t *testing.T) {
	ctx := context.Background()
	s, store, clk := setup(t)
	register(t, s, "alice")

	completeDay(t, s, clk.daysAgo(2))
	completeDay(t, s, clk.daysAgo(1))

	days, err := s.Streak(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// the walk starts at today, which has no checklist yet
	if days != 0 {
		t.Errorf("Streak() = %d before today has a checklist, want 0", days)
	}

	completeDay(t, s, clk.today())
	days, _ = s.Streak(ctx)
	if days != 3 {
		t.Errorf("Streak() = %d, want 3", days)
	}

	proj, err := s.Progress(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if proj.GoalDays != 4 || proj.Stage != 3 || proj.Ratio != 0.75 {
		t.Errorf("Progress() = %+v", proj)
	}

	user, err := store.GetUser(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if user.StreakDays != 3 || user.LongestStreak != 3 || user.TotalChecklists != 3 || user.LastChecklistDate != clk.today() {
		t.Errorf("streak mirror = %+v", user)
	}

	// a new day with nothing checked breaks the streak
	clk.advance(1)
	if _, err := s.EnsureDailyChecklist(ctx, clk.today()); err != nil {
		t.Fatal(err)
	}
	if days, _ = s.Streak(ctx); days != 0 {
		t.Errorf("Streak() after unchecked new day = %d, want 0", days)
	}
	if longest, _ := s.LongestStreak(); longest != 3 {
		t.Errorf("LongestStreak() = %d, want 3", longest)
	}
}

func TestReconcilePolicies(t *testing.T) {
	tests := []struct {
		policy      constants.ReconcilePolicy
		keepChecked bool
	}{
		{policy: constants.ReconcileMerge, keepChecked: true},
		{policy: constants.ReconcileReplace, keepChecked: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			ctx := context.Background()
			s, _, clk := setup(t, WithReconcilePolicy(tt.policy))
			register(t, s, "alice")

			inst, _ := s.EnsureDailyChecklist(ctx, clk.today())
			sec := inst.Sections[0]
			if _, _, err := s.ToggleItem(ctx, clk.today(), sec.ID, sec.Items[0].ID); err != nil {
				t.Fatal(err)
			}
			if _, err := s.EnsureDailyChecklist(ctx, clk.daysAgo(1)); err != nil {
				t.Fatal(err)
			}

			if _, err := s.AddTemplateItem(ctx, sec.ID, "Water"); err != nil {
				t.Fatalf("AddTemplateItem() error = %v", err)
			}

			today, err := s.EnsureDailyChecklist(ctx, clk.today())
			if err != nil {
				t.Fatal(err)
			}
			items := today.Sections[0].Items
			if len(items) != 4 || items[3].Label != "Water" || items[3].Checked {
				t.Fatalf("today not reconciled: %+v", items)
			}
			if items[0].Checked != tt.keepChecked {
				t.Errorf("checked state after %s = %v, want %v", tt.policy, items[0].Checked, tt.keepChecked)
			}

			past, _ := s.EnsureDailyChecklist(ctx, clk.daysAgo(1))
			if len(past.Sections[0].Items) != 3 {
				t.Error("past checklist was reconciled")
			}

			logs, _ := s.Logs(ctx, 0)
			if actions(logs)[constants.ActionChecklistReconcile] != 1 {
				t.Error("reconciliation not logged once")
			}
		})
	}
}

func TestTemplateEditing(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setup(t)
	register(t, s, "alice")

	tmpl, err := s.AddTemplateItem(ctx, "Evening", "Stretch")
	if err != nil {
		t.Fatalf("AddTemplateItem(new section) error = %v", err)
	}
	if len(tmpl.Sections) != 3 || tmpl.Sections[2].Title != "Evening" {
		t.Fatalf("new section not appended: %+v", tmpl.Sections)
	}

	// title lookup is case-insensitive
	tmpl, err = s.AddTemplateItem(ctx, "evening", "Read")
	if err != nil {
		t.Fatal(err)
	}
	if len(tmpl.Sections[2].Items) != 2 {
		t.Errorf("item not added to existing section: %+v", tmpl.Sections[2])
	}

	itemID := tmpl.Sections[2].Items[0].ID
	tmpl, err = s.RemoveTemplateItem(ctx, tmpl.Sections[2].ID, itemID)
	if err != nil {
		t.Fatalf("RemoveTemplateItem() error = %v", err)
	}
	if len(tmpl.Sections[2].Items) != 1 || tmpl.Sections[2].Items[0].Label != "Read" {
		t.Errorf("unexpected items after removal: %+v", tmpl.Sections[2].Items)
	}

	if _, err := s.RemoveTemplateItem(ctx, "Evening", "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("RemoveTemplateItem(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.AddTemplateItem(ctx, "Evening", "  "); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("AddTemplateItem(blank) error = %v, want ErrInvalidInput", err)
	}

	tmpl, err = s.ResetTemplate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tmpl.Sections) != 2 {
		t.Errorf("ResetTemplate() left %d sections", len(tmpl.Sections))
	}
}

func TestEmptyTemplateIsReseeded(t *testing.T) {
	ctx := context.Background()
	s, store, clk := setup(t)
	register(t, s, "alice")

	if _, err := s.SaveTemplate(ctx, models.Template{}); err != nil {
		t.Fatalf("SaveTemplate(empty) error = %v", err)
	}

	for _, date := range []string{clk.daysAgo(2), clk.daysAgo(1), clk.today()} {
		inst, err := s.EnsureDailyChecklist(ctx, date)
		if err != nil {
			t.Fatalf("EnsureDailyChecklist(%s) error = %v", date, err)
		}
		if total, _ := inst.Counts(); total != 6 {
			t.Errorf("%s has %d items, want the 6 default items", date, total)
		}
		if inst.IsComplete() {
			t.Errorf("%s is complete with nothing checked", date)
		}
	}

	if days, _ := s.Streak(ctx); days != 0 {
		t.Errorf("Streak() = %d with nothing checked, want 0", days)
	}

	stored, err := store.LoadTemplate(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if stored.IsEmpty() {
		t.Error("default template was not saved back to the store")
	}

	entries, err := s.Logs(ctx, 80)
	if err != nil {
		t.Fatal(err)
	}
	if got := actions(entries)[constants.ActionTemplateSeed]; got != 2 {
		t.Errorf("template:seed logged %d times, want 2", got)
	}
}
