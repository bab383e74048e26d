package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/dragonlog/internal/logger"
)

var (
	// ErrUnauthenticated is returned by any operation that needs an active user when none is set
	ErrUnauthenticated = stderrors.New("no active user")
	// ErrNotFound means the requested record (user, template, daily checklist) does not exist
	ErrNotFound = stderrors.New("not found")
	// ErrBackendUnavailable means the store or auth backend is unreachable or unconfigured
	ErrBackendUnavailable = stderrors.New("backend unavailable")
	// ErrMalformed means a stored record failed shape checks when loaded
	ErrMalformed = stderrors.New("malformed record")
	// ErrInvalidCredentials covers both an unknown user id and a wrong password
	ErrInvalidCredentials = stderrors.New("invalid credentials")
	// ErrUserExists is returned when registering an id that is already taken
	ErrUserExists = stderrors.New("user already exists")
	// ErrInvalidInput wraps request validation failures
	ErrInvalidInput = stderrors.New("invalid input")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Unavailable wraps a low-level store failure as ErrBackendUnavailable
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, op, err)
}

// UserMessage maps an error to the text shown to the user. Each taxonomy entry
// gets its own wording so a backend outage never reads like a bad password.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrUnauthenticated):
		return "you are not logged in; run `dragonlog login` first"
	case Is(err, ErrInvalidCredentials):
		return "user id or password is incorrect"
	case Is(err, ErrUserExists):
		return "that user id is already registered"
	case Is(err, ErrBackendUnavailable):
		return "the database is unavailable right now; check your connection and try again"
	case Is(err, ErrMalformed):
		return "a stored checklist could not be read"
	default:
		return err.Error()
	}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", UserMessage(err))
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
