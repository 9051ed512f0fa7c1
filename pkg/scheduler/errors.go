package scheduler

import goerrors "github.com/go-errors/errors"

// Sentinel errors returned by Scheduler operations. Wrapped with
// go-errors/errors so callers retain a stack trace, matching the
// teacher's convention of never returning a bare fmt.Errorf from a
// package boundary.
var (
	ErrNotInitialized     = goerrors.Errorf("scheduler: not initialized, call Configure first")
	ErrDuplicatePid       = goerrors.Errorf("scheduler: duplicate pid")
	ErrUnknownPid         = goerrors.Errorf("scheduler: unknown pid")
	ErrInvalidBursts      = goerrors.Errorf("scheduler: invalid burst sequence")
	ErrInvalidPolicy      = goerrors.Errorf("scheduler: invalid policy configuration")
	ErrOPTUnsupportedLive = goerrors.Errorf("scheduler: OPT replacement is not supported on the live tick path")
)

// ConfigError wraps a configuration rejection with the offending
// field, so callers can report exactly what was invalid.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "scheduler: invalid config field " + e.Field + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func newConfigError(field string, err error) error {
	return goerrors.Wrap(&ConfigError{Field: field, Err: err}, 1)
}
