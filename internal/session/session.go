// Package session owns one signed-in user's state: profile, template and the
// in-memory checklist history, plus the collaborators that act on them.
// A Session is created empty, populated by Login, Register or Resume, and
// cleared by Logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/dragonlog/internal/auth"
	"github.com/julianstephens/dragonlog/internal/constants"
	"github.com/julianstephens/dragonlog/internal/daily"
	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/journal"
	"github.com/julianstephens/dragonlog/internal/logger"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/seed"
	"github.com/julianstephens/dragonlog/internal/utils"
)

// Store is the persistence a session works against. Every storage.Provider
// satisfies it.
type Store interface {
	auth.UserStore
	journal.Sink
	daily.Store

	GetUser(ctx context.Context, id string) (models.UserProfile, error)
	UpdateStreakMirror(ctx context.Context, id string, mirror models.StreakMirror) error

	LoadTemplate(ctx context.Context, userID string) (models.Template, error)
	SaveTemplate(ctx context.Context, userID string, tmpl models.Template) (models.Template, error)

	ListDaily(ctx context.Context, userID string) (models.History, error)

	UpsertDayStatistics(ctx context.Context, userID string, stats models.DayStatistics) error
	ListDayStatistics(ctx context.Context, userID string, limit int) ([]models.DayStatistics, error)

	ListLogs(ctx context.Context, userID string, limit int) ([]models.LogEntry, error)
}

type options struct {
	now      func() time.Time
	location *time.Location
	policy   constants.ReconcilePolicy
	hasher   *auth.Hasher
	idFunc   seed.IDFunc
}

// Option customizes a Session
type Option func(*options)

// WithClock sets the clock used to decide what "today" is
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the timezone that calendar days are computed in
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// WithReconcilePolicy selects how today's stale checklist is rebuilt
func WithReconcilePolicy(p constants.ReconcilePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithHasher overrides the password hashing parameters
func WithHasher(h auth.Hasher) Option {
	return func(o *options) { o.hasher = &h }
}

// WithIDFunc overrides id generation for seeded templates
func WithIDFunc(fn seed.IDFunc) Option {
	return func(o *options) { o.idFunc = fn }
}

// Session is safe for concurrent use
type Session struct {
	store        Store
	auth         *auth.Authenticator
	journal      *journal.Recorder
	seeder       *seed.Seeder
	instantiator *daily.Instantiator
	now          func() time.Time
	location     *time.Location

	mu       sync.Mutex
	user     *models.UserProfile
	template models.Template
	history  models.History
}

// New returns a session with no active user
func New(store Store, opts ...Option) *Session {
	o := options{now: time.Now, location: time.Local, policy: constants.ReconcileMerge}
	for _, opt := range opts {
		opt(&o)
	}
	if o.location == nil {
		o.location = time.Local
	}

	authOpts := []auth.Option{auth.WithClock(o.now)}
	if o.hasher != nil {
		authOpts = append(authOpts, auth.WithHasher(*o.hasher))
	}

	return &Session{
		store:        store,
		auth:         auth.New(store, authOpts...),
		journal:      journal.New(store).WithClock(o.now),
		seeder:       seed.New(o.idFunc),
		instantiator: daily.NewInstantiator(store, o.policy),
		now:          o.now,
		location:     o.location,
		history:      models.History{},
	}
}

// Today returns the current calendar day in the session's timezone
func (s *Session) Today() string {
	return utils.DateOf(s.now().In(s.location))
}

// Policy returns the reconcile policy in effect
func (s *Session) Policy() constants.ReconcilePolicy {
	return s.instantiator.Policy()
}

// User returns the active profile and whether one is signed in
func (s *Session) User() (models.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.UserProfile{}, false
	}
	return *s.user, true
}

// UserID returns the active user id or ""
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userIDLocked()
}

func (s *Session) userIDLocked() string {
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// Login authenticates and makes the user active
func (s *Session) Login(ctx context.Context, id, password string) (models.UserProfile, error) {
	user, err := s.auth.Authenticate(ctx, id, password)
	if err != nil {
		return models.UserProfile{}, err
	}
	if err := s.establish(ctx, user); err != nil {
		return models.UserProfile{}, err
	}
	s.journal.Info(ctx, user.ID, constants.ActionLogin, fmt.Sprintf("%s signed in", user.Name()))
	return user, nil
}

// Register creates the account, makes it active and seeds its template
func (s *Session) Register(ctx context.Context, req auth.RegisterRequest) (models.UserProfile, error) {
	user, err := s.auth.Register(ctx, req)
	if err != nil {
		return models.UserProfile{}, err
	}
	s.journal.Info(ctx, user.ID, constants.ActionRegister, fmt.Sprintf("%s registered with a %d day goal", user.Name(), user.GoalDays))
	if err := s.establish(ctx, user); err != nil {
		return models.UserProfile{}, err
	}
	return user, nil
}

// Resume reactivates a user whose identity was verified elsewhere (a stored
// CLI session or a bearer token). An unknown id is ErrUnauthenticated.
func (s *Session) Resume(ctx context.Context, userID string) (models.UserProfile, error) {
	if userID == "" {
		return models.UserProfile{}, apperrors.ErrUnauthenticated
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.UserProfile{}, fmt.Errorf("%w: user %s no longer exists", apperrors.ErrUnauthenticated, userID)
		}
		return models.UserProfile{}, fmt.Errorf("resume %s: %w", userID, err)
	}
	if err := s.establish(ctx, user); err != nil {
		return models.UserProfile{}, err
	}
	return user, nil
}

// Logout clears every piece of user state
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	uid := s.userIDLocked()
	s.user = nil
	s.template = models.Template{}
	s.history = models.History{}
	s.mu.Unlock()

	if uid != "" {
		s.journal.Info(ctx, uid, constants.ActionLogout, "signed out")
	}
}

// establish loads the user's template and history and publishes the user as active
func (s *Session) establish(ctx context.Context, user models.UserProfile) error {
	tmpl, seeded, err := s.seeder.Ensure(ctx, s.store, user.ID)
	if err != nil {
		return err
	}
	if seeded {
		s.journal.Info(ctx, user.ID, constants.ActionTemplateSeed, "seeded default checklist template")
	}

	history, err := s.store.ListDaily(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	s.mu.Lock()
	u := user
	s.user = &u
	s.template = tmpl
	s.history = history
	s.mu.Unlock()

	logger.Debug("Session established", "user", user.ID, "days", len(history))
	return nil
}

// requireUser returns the active user id or ErrUnauthenticated. Callers hold s.mu.
func (s *Session) requireUser() (string, error) {
	uid := s.userIDLocked()
	if uid == "" {
		return "", apperrors.ErrUnauthenticated
	}
	return uid, nil
}
