// Package clitest builds command contexts backed by a temporary SQLite
// database and an in-memory keyring.
package clitest

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/dragonlog/internal/auth"
	"github.com/julianstephens/dragonlog/internal/cli"
	"github.com/julianstephens/dragonlog/internal/config"
	"github.com/julianstephens/dragonlog/internal/session"
	"github.com/julianstephens/dragonlog/internal/storage/sqlite"
)

// Now is the fixed clock every test context runs at
var Now = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

// Password is the password Register gives new users
const Password = "secret1"

var cheapHasher = auth.Hasher{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 16, SaltLength: 8}

// Env is a command context plus its captured output
type Env struct {
	Ctx   *cli.Context
	Store *sqlite.Store
	Out   *bytes.Buffer
	Clock time.Time
}

// New returns an Env with an initialized database. The keyring is reset.
func New(t *testing.T) *Env {
	t.Helper()
	gokeyring.MockInit()

	dbPath := filepath.Join(t.TempDir(), "dragonlog.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg, err := config.FromMap(map[string]string{
		"DRAGONLOG_DB":       dbPath,
		"DRAGONLOG_TIMEZONE": "UTC",
	})
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}

	env := &Env{Store: store, Out: &bytes.Buffer{}, Clock: Now}
	n := 0
	env.Ctx = &cli.Context{
		Store:  store,
		Config: cfg,
		Out:    env.Out,
		SessionOptions: []session.Option{
			session.WithClock(func() time.Time { return env.Clock }),
			session.WithHasher(cheapHasher),
			session.WithIDFunc(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		},
	}
	return env
}

// Register creates id and makes it the --user for later commands
func (e *Env) Register(t *testing.T, id string) {
	t.Helper()
	sess, err := e.Ctx.NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if _, err := sess.Register(context.Background(), auth.RegisterRequest{ID: id, Password: Password, GoalDays: 4}); err != nil {
		t.Fatalf("Register(%s) error = %v", id, err)
	}
	e.Ctx.User = id
}

// Session resumes the context's active user
func (e *Env) Session(t *testing.T) *session.Session {
	t.Helper()
	sess, err := e.Ctx.Session(context.Background())
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	return sess
}

// Output returns and clears everything printed so far
func (e *Env) Output() string {
	s := e.Out.String()
	e.Out.Reset()
	return s
}
