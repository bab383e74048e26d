package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/dragonlog/internal/backup"
	"github.com/julianstephens/dragonlog/internal/config"
	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/keyring"
	"github.com/julianstephens/dragonlog/internal/logger"
	"github.com/julianstephens/dragonlog/internal/migration"
	"github.com/julianstephens/dragonlog/internal/session"
	"github.com/julianstephens/dragonlog/internal/storage"
)

// Store is what the commands need from a backend beyond the Provider contract
type Store interface {
	storage.Provider
	// Open connects without validating the schema version
	Open() error
	Migrate(logFn func(string)) error
	SchemaStatus() (migration.Status, error)
}

type Context struct {
	Store  Store
	Config config.Config
	// User overrides the session user remembered in the keyring
	User string
	// Out receives command output; nil means stdout
	Out io.Writer
	// SessionOptions are appended after the options derived from Config
	SessionOptions []session.Option
}

// Printf writes formatted command output
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.writer(), format, args...)
}

// Println writes a line of command output
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.writer(), args...)
}

func (c *Context) writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// IsSQLite reports whether the store is a local database file that can be
// backed up and deleted
func (c *Context) IsSQLite() bool {
	return !config.IsRemote(c.Store.GetConfigPath())
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Options returns the session options derived from Config followed by
// SessionOptions
func (c *Context) Options() ([]session.Option, error) {
	loc, err := c.Config.Location()
	if err != nil {
		return nil, err
	}
	opts := []session.Option{
		session.WithLocation(loc),
		session.WithReconcilePolicy(c.Config.ReconcilePolicy()),
	}
	return append(opts, c.SessionOptions...), nil
}

// NewSession returns a session with no user attached
func (c *Context) NewSession() (*session.Session, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return session.New(c.Store, opts...), nil
}

// ActiveUser returns the user id commands act as: the --user flag when set,
// otherwise the one stored in the keyring by login
func (c *Context) ActiveUser() (string, error) {
	if c.User != "" {
		return c.User, nil
	}
	uid, err := keyring.GetSessionUser()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: not logged in, run 'dragonlog login' first", apperrors.ErrUnauthenticated)
		}
		return "", err
	}
	return uid, nil
}

// Session resumes the active user's session
func (c *Context) Session(ctx context.Context) (*session.Session, error) {
	uid, err := c.ActiveUser()
	if err != nil {
		return nil, err
	}
	sess, err := c.NewSession()
	if err != nil {
		return nil, err
	}
	if _, err := sess.Resume(ctx, uid); err != nil {
		return nil, err
	}
	return sess, nil
}
