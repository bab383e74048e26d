// Package config reads dragonlog settings from DRAGONLOG_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/julianstephens/dragonlog/internal/constants"
	"github.com/julianstephens/dragonlog/internal/utils"
)

// Prefix is prepended to every environment variable name
const Prefix = "DRAGONLOG_"

// Config holds the runtime settings shared by the CLI, TUI and API server
type Config struct {
	// DB is a SQLite file path, a PostgreSQL URL or the literal "keyring"
	DB              string        `env:"DB" envDefault:"~/.config/dragonlog/dragonlog.db"`
	Timezone        string        `env:"TIMEZONE" envDefault:"Local"`
	DefaultGoalDays int           `env:"DEFAULT_GOAL_DAYS" envDefault:"30"`
	Reconcile       string        `env:"RECONCILE" envDefault:"merge"`
	Debug           bool          `env:"DEBUG" envDefault:"false"`
	ListenAddr      string        `env:"LISTEN_ADDR" envDefault:":8080"`
	JWTSecret       string        `env:"JWT_SECRET"`
	JWTTTL          time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

// Load reads envFile (".env" when empty) if it exists, then parses the
// process environment. Variables already set win over the file.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read %s: %w", envFile, err)
	}
	return parse(env.Options{Prefix: Prefix})
}

// FromMap parses settings from vars instead of the process environment.
// Keys carry the DRAGONLOG_ prefix.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot run with
func (c Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid %sTIMEZONE %q", Prefix, c.Timezone)
	}
	if c.DefaultGoalDays <= 0 {
		return fmt.Errorf("%sDEFAULT_GOAL_DAYS must be positive, got %d", Prefix, c.DefaultGoalDays)
	}
	switch constants.ReconcilePolicy(strings.ToLower(c.Reconcile)) {
	case constants.ReconcileMerge, constants.ReconcileReplace:
	default:
		return fmt.Errorf("invalid %sRECONCILE %q: expected merge or replace", Prefix, c.Reconcile)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("%sJWT_TTL must be positive, got %s", Prefix, c.JWTTTL)
	}
	return nil
}

// ReconcilePolicy returns the configured policy
func (c Config) ReconcilePolicy() constants.ReconcilePolicy {
	return constants.ReconcilePolicy(strings.ToLower(c.Reconcile))
}

// Location returns the configured timezone
func (c Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

// ConfigDir is the directory holding logs and backups. For PostgreSQL it is
// the default local config directory.
func (c Config) ConfigDir() string {
	db := c.DB
	if IsRemote(db) {
		db = constants.DefaultConfigPath
	}
	return filepath.Dir(ExpandPath(db))
}

// IsRemote reports whether db names a PostgreSQL backend
func IsRemote(db string) bool {
	return db == "keyring" ||
		strings.HasPrefix(db, "postgres://") ||
		strings.HasPrefix(db, "postgresql://") ||
		strings.Contains(db, "host=")
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
