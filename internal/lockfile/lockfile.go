// Package lockfile records which long-running dragonlog processes (the TUI
// and the API server) hold the database open, so that destructive commands
// like backup restore can refuse to run underneath them.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/dragonlog/internal/constants"
	"github.com/julianstephens/dragonlog/internal/logger"
)

const (
	dirName = "locks"
	suffix  = ".lock"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// Holder is a live process that holds a lock
type Holder struct {
	PID     int
	Command string
	Path    string
}

func (h Holder) String() string {
	return fmt.Sprintf("dragonlog %s (pid %d)", h.Command, h.PID)
}

// Lock is a held lockfile
type Lock struct {
	path string
}

// Acquire writes a lockfile for the current process under configDir.
// Format: pid|command
func Acquire(configDir, command string) (*Lock, error) {
	dir := filepath.Join(configDir, dirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	pid := getpidFunc()
	path := filepath.Join(dir, fmt.Sprintf("%s-%d%s", command, pid, suffix))
	content := fmt.Sprintf("%d|%s", pid, command)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lockfile. Safe on a nil Lock.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to remove lockfile", "path", l.path, "error", err)
	}
}

// Active lists other live dragonlog processes holding locks under configDir.
// Lockfiles left behind by dead processes are removed.
func Active(configDir string) ([]Holder, error) {
	entries, err := os.ReadDir(filepath.Join(configDir, dirName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	self := getpidFunc()
	var holders []Holder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		path := filepath.Join(configDir, dirName, e.Name())
		h, err := validate(path)
		if err != nil {
			logger.Debug("Removing stale lockfile", "path", path, "reason", err)
			os.Remove(path)
			continue
		}
		if h.PID != self {
			holders = append(holders, h)
		}
	}
	return holders, nil
}

func validate(path string) (Holder, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Holder{}, err
	}
	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return Holder{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return Holder{}, errors.New("invalid process ID in lockfile")
	}

	proc, err := findProcessFunc(pid)
	if err != nil {
		return Holder{}, fmt.Errorf("failed to look up process %d: %w", pid, err)
	}
	if proc == nil {
		return Holder{}, fmt.Errorf("process %d is not running", pid)
	}
	// pids are reused; make sure it is still us
	if !strings.HasPrefix(proc.Executable(), constants.AppName) {
		return Holder{}, fmt.Errorf("process %d is %s, not %s", pid, proc.Executable(), constants.AppName)
	}
	return Holder{PID: pid, Command: parts[1], Path: path}, nil
}
