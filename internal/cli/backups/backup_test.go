package backups

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/dragonlog/internal/backup"
	"github.com/julianstephens/dragonlog/internal/cli"
	"github.com/julianstephens/dragonlog/internal/cli/clitest"
	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/storage/postgres"
)

func TestBackupCreateAndList(t *testing.T) {
	env := clitest.New(t)

	if err := (&BackupListCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "No backups found.") {
		t.Errorf("unexpected empty list output: %q", out)
	}

	if err := (&BackupCreateCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "✓ Backup created: dragonlog-") {
		t.Errorf("unexpected create output: %q", out)
	}

	if err := (&BackupListCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Available backups (1 total") {
		t.Errorf("unexpected list output: %q", out)
	}
}

func TestBackupRestore(t *testing.T) {
	env := clitest.New(t)
	env.Register(t, "alice")

	if err := (&BackupCreateCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	backups, err := backup.NewManager(env.Store.GetConfigPath()).List()
	if err != nil || len(backups) != 1 {
		t.Fatalf("List() = %v, %v; want one backup", backups, err)
	}

	env.Register(t, "bob")
	env.Output()

	restore := &BackupRestoreCmd{BackupFile: backups[0].Name, Yes: true}
	if err := restore.Run(env.Ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	out := env.Output()
	if !strings.Contains(out, "Database restored successfully") || !strings.Contains(out, "Previous database saved as") {
		t.Errorf("unexpected restore output:\n%s", out)
	}

	if err := env.Store.Load(); err != nil {
		t.Fatalf("failed to reopen restored database: %v", err)
	}
	if _, err := env.Store.GetUser(context.Background(), "alice"); err != nil {
		t.Errorf("alice missing after restore: %v", err)
	}
	if _, err := env.Store.GetUser(context.Background(), "bob"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("bob should not exist after restore, got %v", err)
	}
}

func TestBackupRestoreIgnoresStaleLock(t *testing.T) {
	env := clitest.New(t)
	env.Register(t, "alice")
	if err := (&BackupCreateCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	backups, err := backup.NewManager(env.Store.GetConfigPath()).List()
	if err != nil || len(backups) != 1 {
		t.Fatalf("List() = %v, %v; want one backup", backups, err)
	}

	// left behind by a process that no longer exists
	lockDir := filepath.Join(env.Ctx.Config.ConfigDir(), "locks")
	if err := os.MkdirAll(lockDir, 0700); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(lockDir, "tui-99999999.lock")
	if err := os.WriteFile(stale, []byte("99999999|tui"), 0600); err != nil {
		t.Fatal(err)
	}

	restore := &BackupRestoreCmd{BackupFile: backups[0].Name, Yes: true}
	if err := restore.Run(env.Ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale lockfile was not cleaned up")
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	env := clitest.New(t)

	restore := &BackupRestoreCmd{BackupFile: filepath.Join(t.TempDir(), "nope.db"), Yes: true}
	if err := restore.Run(env.Ctx); err == nil {
		t.Error("restore of a missing file should fail")
	}
}

func TestBackupRejectsPostgres(t *testing.T) {
	ctx := &cli.Context{Store: postgres.New("postgres://dragon@localhost:5432/dragonlog")}

	cmds := []interface{ Run(*cli.Context) error }{
		&BackupCreateCmd{},
		&BackupListCmd{},
		&BackupRestoreCmd{BackupFile: "x.db", Yes: true},
	}
	for _, cmd := range cmds {
		if err := cmd.Run(ctx); !errors.Is(err, errRemoteBackup) {
			t.Errorf("%T error = %v, want errRemoteBackup", cmd, err)
		}
	}
}
