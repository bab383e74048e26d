package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/julianstephens/dragonlog/internal/constants"
	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *Store, id string) {
	t.Helper()
	err := store.CreateUser(context.Background(), models.UserProfile{ID: id, GoalDays: 30}, "salt$hash")
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", id, err)
	}
}

func TestLoad_Uninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if !errors.Is(err, apperrors.ErrBackendUnavailable) {
		t.Errorf("Load() error = %v, want ErrBackendUnavailable", err)
	}
}

func TestInitThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dragonlog.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer reopened.Close()

	if err := reopened.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	st, err := reopened.SchemaStatus()
	if err != nil {
		t.Fatal(err)
	}
	if st.Current != st.Latest || len(st.Pending) != 0 {
		t.Errorf("schema not current after Init: %+v", st)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	user := models.UserProfile{ID: "alice", GoalDays: 21, Email: "alice@example.com", DisplayName: "Alice"}
	if err := store.CreateUser(ctx, user, "salt$hash"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err := store.CreateUser(ctx, user, "other"); !errors.Is(err, apperrors.ErrUserExists) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrUserExists", err)
	}

	got, hash, err := store.GetCredentials(ctx, "alice")
	if err != nil {
		t.Fatalf("GetCredentials() error = %v", err)
	}
	if hash != "salt$hash" {
		t.Errorf("hash = %q, want original hash", hash)
	}
	if got.GoalDays != 21 || got.Email != "alice@example.com" || got.Name() != "Alice" {
		t.Errorf("unexpected profile: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	if _, err := store.GetUser(ctx, "nobody"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetUser(nobody) error = %v, want ErrNotFound", err)
	}

	mirror := models.StreakMirror{StreakDays: 3, LongestStreak: 5, LastChecklistDate: "2024-05-10", TotalChecklists: 9}
	if err := store.UpdateStreakMirror(ctx, "alice", mirror); err != nil {
		t.Fatalf("UpdateStreakMirror() error = %v", err)
	}
	got, err = store.GetUser(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.StreakDays != 3 || got.LongestStreak != 5 || got.LastChecklistDate != "2024-05-10" || got.TotalChecklists != 9 {
		t.Errorf("mirror not stored: %+v", got)
	}

	if err := store.UpdateStreakMirror(ctx, "nobody", mirror); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("UpdateStreakMirror(nobody) error = %v, want ErrNotFound", err)
	}
}

func TestTemplates(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createUser(t, store, "alice")
	createUser(t, store, "bob")

	empty, err := store.LoadTemplate(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	if !empty.IsEmpty() {
		t.Errorf("expected empty template, got %+v", empty)
	}

	saved, err := store.SaveTemplate(ctx, "alice", models.Template{Sections: []models.ChecklistSection{
		{Title: "Food", Items: []models.ChecklistItem{{Label: "Breakfast", Checked: true}, {ID: "l", Label: "Lunch"}}},
		{ID: "empty", Title: "Nothing yet"},
		{ID: "shop", Items: []models.ChecklistItem{{ID: "l", Label: "Eggs"}}},
	}})
	if err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}

	loaded, err := store.LoadTemplate(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(saved, loaded); diff != "" {
		t.Errorf("loaded template differs from saved (-saved +loaded):\n%s", diff)
	}
	if loaded.Sections[0].Items[0].Checked {
		t.Error("template item stored as checked")
	}

	// bob may reuse the same ids
	if _, err := store.SaveTemplate(ctx, "bob", saved); err != nil {
		t.Fatalf("SaveTemplate(bob) error = %v", err)
	}

	// saving replaces wholesale
	replacement := models.Template{Sections: []models.ChecklistSection{
		{ID: "only", Title: "Only", Items: []models.ChecklistItem{{ID: "x", Label: "X"}}},
	}}
	if _, err := store.SaveTemplate(ctx, "alice", replacement); err != nil {
		t.Fatal(err)
	}
	loaded, err = store.LoadTemplate(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(replacement, loaded); diff != "" {
		t.Errorf("template not replaced (-want +got):\n%s", diff)
	}

	bobs, err := store.LoadTemplate(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(bobs.Sections) != 3 {
		t.Errorf("saving alice's template touched bob's: %d sections", len(bobs.Sections))
	}
}

func TestSaveTemplate_RejectsInvalid(t *testing.T) {
	store := setupTestStore(t)
	createUser(t, store, "alice")

	_, err := store.SaveTemplate(context.Background(), "alice", models.Template{Sections: []models.ChecklistSection{
		{ID: "s", Items: []models.ChecklistItem{{ID: "a", Label: ""}}},
	}})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("SaveTemplate() error = %v, want ErrInvalidInput", err)
	}
}

func TestDaily(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createUser(t, store, "alice")

	if _, err := store.FetchDaily(ctx, "alice", "2024-05-10"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("FetchDaily() error = %v, want ErrNotFound", err)
	}

	inst := models.DailyInstance{Date: "2024-05-10", Sections: []models.ChecklistSection{
		{ID: "s", Title: "Food", Items: []models.ChecklistItem{{ID: "a", Label: "Breakfast"}}},
	}}
	if err := store.UpsertDaily(ctx, "alice", inst); err != nil {
		t.Fatalf("UpsertDaily() error = %v", err)
	}

	inst.Sections[0].Items[0].Checked = true
	if err := store.UpsertDaily(ctx, "alice", inst); err != nil {
		t.Fatalf("second UpsertDaily() error = %v", err)
	}

	got, err := store.FetchDaily(ctx, "alice", "2024-05-10")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(inst, got); diff != "" {
		t.Errorf("last write did not win (-want +got):\n%s", diff)
	}

	other := models.DailyInstance{Date: "2024-05-09", Sections: []models.ChecklistSection{}}
	if err := store.UpsertDaily(ctx, "alice", other); err != nil {
		t.Fatal(err)
	}

	history, err := store.ListDaily(ctx, "alice")
	if err != nil {
		t.Fatalf("ListDaily() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("ListDaily() returned %d days, want 2", len(history))
	}
}

func TestDaily_Malformed(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createUser(t, store, "alice")

	if _, err := store.db.Exec(
		"INSERT INTO daily_checklists (user_id, record_date, sections, updated_at) VALUES (?, ?, ?, ?)",
		"alice", "2024-05-08", `{"broken": true}`, formatTime(time.Now()),
	); err != nil {
		t.Fatal(err)
	}
	good := models.DailyInstance{Date: "2024-05-09", Sections: []models.ChecklistSection{}}
	if err := store.UpsertDaily(ctx, "alice", good); err != nil {
		t.Fatal(err)
	}

	if _, err := store.FetchDaily(ctx, "alice", "2024-05-08"); !errors.Is(err, apperrors.ErrMalformed) {
		t.Errorf("FetchDaily() error = %v, want ErrMalformed", err)
	}

	history, err := store.ListDaily(ctx, "alice")
	if err != nil {
		t.Fatalf("ListDaily() error = %v", err)
	}
	if _, ok := history["2024-05-08"]; ok {
		t.Error("malformed row was not skipped")
	}
	if _, ok := history["2024-05-09"]; !ok {
		t.Error("well-formed row missing")
	}
}

func TestUpsertDaily_RejectsInvalid(t *testing.T) {
	store := setupTestStore(t)
	err := store.UpsertDaily(context.Background(), "alice", models.DailyInstance{Date: "May 10"})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("UpsertDaily() error = %v, want ErrInvalidInput", err)
	}
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createUser(t, store, "alice")

	days := []models.DayStatistics{
		{Date: "2024-05-08", ItemsTotal: 4, ItemsChecked: 4, CompletionRate: 1, Completed: true},
		{Date: "2024-05-09", ItemsTotal: 4, ItemsChecked: 1, CompletionRate: 0.25},
	}
	for _, d := range days {
		if err := store.UpsertDayStatistics(ctx, "alice", d); err != nil {
			t.Fatalf("UpsertDayStatistics() error = %v", err)
		}
	}
	days[1].ItemsChecked, days[1].CompletionRate = 2, 0.5
	if err := store.UpsertDayStatistics(ctx, "alice", days[1]); err != nil {
		t.Fatal(err)
	}

	got, err := store.ListDayStatistics(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("ListDayStatistics() error = %v", err)
	}
	want := []models.DayStatistics{days[1], days[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListDayStatistics() mismatch (-want +got):\n%s", diff)
	}

	limited, err := store.ListDayStatistics(ctx, "alice", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].Date != "2024-05-09" {
		t.Errorf("limit not applied: %+v", limited)
	}
}

func TestLogs(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	alice := "alice"
	base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	entries := []models.LogEntry{
		{UserID: &alice, Action: constants.ActionLogin, Message: "logged in", CreatedAt: base},
		{Action: "system:start", Message: "started", Level: constants.LogLevelWarn, CreatedAt: base.Add(time.Second)},
		{UserID: &alice, Action: constants.ActionChecklistToggle, Message: "toggled", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := store.AppendLog(ctx, e); err != nil {
			t.Fatalf("AppendLog() error = %v", err)
		}
	}

	all, err := store.ListLogs(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListLogs() error = %v", err)
	}
	actions := make([]string, 0, len(all))
	for _, e := range all {
		actions = append(actions, e.Action)
	}
	want := []string{constants.ActionChecklistToggle, "system:start", constants.ActionLogin}
	if diff := cmp.Diff(want, actions); diff != "" {
		t.Errorf("logs not newest first (-want +got):\n%s", diff)
	}
	if all[0].Level != constants.LogLevelInfo {
		t.Errorf("default level = %q, want info", all[0].Level)
	}
	if all[1].UserID != nil {
		t.Errorf("system log has user id %v", *all[1].UserID)
	}

	mine, err := store.ListLogs(ctx, "alice", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].Action != constants.ActionChecklistToggle {
		t.Errorf("user filter/limit not applied: %+v", mine)
	}
	if !cmp.Equal(mine[0].CreatedAt, base.Add(2*time.Second), cmpopts.EquateApproxTime(time.Millisecond)) {
		t.Errorf("CreatedAt = %v", mine[0].CreatedAt)
	}
}

func TestPing_NotLoaded(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "x.db"))
	if err := store.Ping(context.Background()); !errors.Is(err, apperrors.ErrBackendUnavailable) {
		t.Errorf("Ping() error = %v, want ErrBackendUnavailable", err)
	}
	if store.GetDB() != nil {
		t.Error("GetDB() should be nil before Init or Load")
	}
}
