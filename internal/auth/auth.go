// Package auth registers users and checks their credentials against the user store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/logger"
	"github.com/julianstephens/dragonlog/internal/metrics"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/validation"
)

// UserStore is the part of storage the authenticator talks to
type UserStore interface {
	CreateUser(ctx context.Context, user models.UserProfile, passwordHash string) error
	GetCredentials(ctx context.Context, id string) (models.UserProfile, string, error)
}

// RegisterRequest carries a new account's details
type RegisterRequest struct {
	ID          string `json:"id" validate:"required,min=3,max=64,userid"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	GoalDays    int    `json:"goal_days" validate:"required,min=1,max=3650"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=64"`
}

// Authenticator verifies credentials and creates accounts
type Authenticator struct {
	store     UserStore
	hasher    Hasher
	validator *validation.Validator
	now       func() time.Time
}

// Option customizes an Authenticator
type Option func(*Authenticator)

// WithHasher overrides the Argon2id parameters
func WithHasher(h Hasher) Option {
	return func(a *Authenticator) { a.hasher = h }
}

// WithClock overrides the clock used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// New returns an Authenticator backed by store
func New(store UserStore, opts ...Option) *Authenticator {
	a := &Authenticator{
		store:     store,
		hasher:    DefaultHasher,
		validator: validation.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate returns the profile for id when password matches.
// Unknown ids and wrong passwords both yield ErrInvalidCredentials; store
// failures yield ErrBackendUnavailable so the two are never confused.
func (a *Authenticator) Authenticate(ctx context.Context, id, password string) (models.UserProfile, error) {
	if a.store == nil {
		return models.UserProfile{}, fmt.Errorf("%w: no user store configured", apperrors.ErrBackendUnavailable)
	}

	id = strings.TrimSpace(id)
	if id == "" || password == "" {
		metrics.TrackAuthAttempt("failure", "login")
		return models.UserProfile{}, apperrors.ErrInvalidCredentials
	}

	user, hash, err := a.store.GetCredentials(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			metrics.TrackAuthAttempt("failure", "login")
			return models.UserProfile{}, apperrors.ErrInvalidCredentials
		}
		metrics.TrackAuthAttempt("error", "login")
		return models.UserProfile{}, fmt.Errorf("authenticate %s: %w", id, err)
	}

	ok, err := a.hasher.Verify(hash, password)
	if err != nil {
		logger.Warn("Stored password hash is unreadable", "user", id, "error", err)
		ok = false
	}
	if !ok {
		metrics.TrackAuthAttempt("failure", "login")
		return models.UserProfile{}, apperrors.ErrInvalidCredentials
	}

	metrics.TrackAuthAttempt("success", "login")
	return user, nil
}

// Register validates req, hashes the password and creates the account
func (a *Authenticator) Register(ctx context.Context, req RegisterRequest) (models.UserProfile, error) {
	if a.store == nil {
		return models.UserProfile{}, fmt.Errorf("%w: no user store configured", apperrors.ErrBackendUnavailable)
	}

	req.ID = strings.TrimSpace(req.ID)
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := a.validator.Struct(req); err != nil {
		metrics.TrackAuthAttempt("failure", "register")
		return models.UserProfile{}, err
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return models.UserProfile{}, err
	}

	now := a.now()
	user := models.UserProfile{
		ID:          req.ID,
		GoalDays:    req.GoalDays,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.store.CreateUser(ctx, user, hash); err != nil {
		metrics.TrackAuthAttempt("failure", "register")
		return models.UserProfile{}, fmt.Errorf("register %s: %w", req.ID, err)
	}

	metrics.TrackAuthAttempt("success", "register")
	return user, nil
}
