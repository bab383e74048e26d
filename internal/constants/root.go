package constants

import "time"

// LogLevel is the severity attached to an activity log entry
type LogLevel string

// ReconcilePolicy selects how a stale daily checklist is rebuilt from the template
type ReconcilePolicy string

const (
	AppName            = "dragonlog"
	DefaultKeyringUser = "database-connection"
	SessionKeyringUser = "active-session"
	DefaultConfigPath  = "~/.config/dragonlog/dragonlog.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "dragonlog-"
	BackupFileSuffix = ".db"

	// Account defaults
	DefaultGoalDays   = 30
	MinPasswordLength = 6
	MinUserIDLength   = 3

	// Dragon evolution
	StageCount = 4

	// Activity log
	DefaultLogLimit = 80

	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	ActionLogin              = "user:login"
	ActionRegister           = "user:register"
	ActionLogout             = "user:logout"
	ActionTemplateSave       = "template:save"
	ActionTemplateSeed       = "template:seed"
	ActionChecklistInit      = "checklist:init"
	ActionChecklistReconcile = "checklist:reconcile"
	ActionChecklistToggle    = "checklist:toggle"

	// Reconcile policies
	ReconcileMerge   ReconcilePolicy = "merge"
	ReconcileReplace ReconcilePolicy = "replace"

	// HTTP API
	DefaultListenAddr = ":8080"
	DefaultTokenTTL   = 24 * time.Hour
	TokenIssuer       = "dragonlog"
)
