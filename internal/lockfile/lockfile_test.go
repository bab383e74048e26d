package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

// withProcesses swaps the process table for the duration of the test.
func withProcesses(t *testing.T, self int, table map[int]string) {
	t.Helper()
	oldFind, oldPid := findProcessFunc, getpidFunc
	t.Cleanup(func() { findProcessFunc, getpidFunc = oldFind, oldPid })

	getpidFunc = func() int { return self }
	findProcessFunc = func(pid int) (ps.Process, error) {
		exe, ok := table[pid]
		if !ok {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
}

func writeLock(t *testing.T, dir, name, content string) string {
	t.Helper()
	lockDir := filepath.Join(dir, dirName)
	if err := os.MkdirAll(lockDir, 0700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(lockDir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 100, map[int]string{100: "dragonlog"})

	lock, err := Acquire(dir, "tui")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	data, err := os.ReadFile(lock.path)
	if err != nil {
		t.Fatalf("lockfile not written: %v", err)
	}
	if string(data) != "100|tui" {
		t.Errorf("lockfile content = %q, want %q", data, "100|tui")
	}

	// our own lock is not reported
	holders, err := Active(dir)
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if len(holders) != 0 {
		t.Errorf("Active() = %v, want none", holders)
	}

	lock.Release()
	if _, err := os.Stat(lock.path); !os.IsNotExist(err) {
		t.Errorf("lockfile still present after Release")
	}
	lock.Release()

	var nilLock *Lock
	nilLock.Release()
}

func TestActive(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 1, map[int]string{
		200: "dragonlog",
		300: "dragonlog.exe",
		400: "bash",
	})

	writeLock(t, dir, "serve-200.lock", "200|serve")
	writeLock(t, dir, "tui-300.lock", "300|tui")
	reused := writeLock(t, dir, "tui-400.lock", "400|tui")
	dead := writeLock(t, dir, "tui-500.lock", "500|tui")
	garbage := writeLock(t, dir, "bad.lock", "not a lock")
	other := writeLock(t, dir, "notes.txt", "200|serve")

	holders, err := Active(dir)
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if len(holders) != 2 {
		t.Fatalf("Active() = %v, want 2 holders", holders)
	}
	got := map[int]string{}
	for _, h := range holders {
		got[h.PID] = h.Command
	}
	if got[200] != "serve" || got[300] != "tui" {
		t.Errorf("Active() holders = %v", got)
	}
	if s := holders[0].String(); s == "" {
		t.Error("Holder.String() is empty")
	}

	for _, path := range []string{reused, dead, garbage} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("stale lockfile %s was not removed", filepath.Base(path))
		}
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("non-lock file was touched: %v", err)
	}
}

func TestActiveNoDirectory(t *testing.T) {
	holders, err := Active(filepath.Join(t.TempDir(), "missing"))
	if err != nil || holders != nil {
		t.Errorf("Active() = %v, %v; want nil, nil", holders, err)
	}
}
