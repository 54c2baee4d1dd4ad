package dupindex

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	// ErrInvalidConfiguration is returned when an index is built with a max level <= 0.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidLevel is returned when a subkey is requested for a negative level.
	ErrInvalidLevel = errors.New("invalid level")

	// ErrMissingPath is returned when a file cannot be read while it is being indexed.
	ErrMissingPath = errors.New("missing path")
)

// ConfigError reports an unusable construction parameter
type ConfigError struct {
	Field string
	Value int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s must be greater than zero (%d)", ErrInvalidConfiguration, e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// LevelError reports a subkey request for a negative level
type LevelError struct {
	Key   string
	Level int
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("%v: level cannot be negative (%d) for key %q", ErrInvalidLevel, e.Level, e.Key)
}

func (e *LevelError) Unwrap() error {
	return ErrInvalidLevel
}

// PathError reports a file that could not be enumerated or digested.
// It matches both ErrMissingPath and the underlying cause with errors.Is.
type PathError struct {
	BaseDir string
	Path    string
	Err     error
}

func (e *PathError) Error() string {
	if e.BaseDir == "" {
		return fmt.Sprintf("%v: %s: %v", ErrMissingPath, e.Path, e.Err)
	}
	return fmt.Sprintf("%v: %s (in %s): %v", ErrMissingPath, e.Path, e.BaseDir, e.Err)
}

func (e *PathError) Unwrap() []error {
	return []error{ErrMissingPath, e.Err}
}

// ScanError collects the per-file failures of a scan run with continue-on-error enabled.
type ScanError struct {
	Errors []error
}

func (se *ScanError) Error() string {
	if len(se.Errors) == 1 {
		return fmt.Sprintf("scan failed: %v", se.Errors[0])
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "scan failed for %d files:\n", len(se.Errors))
	for i, err := range se.Errors {
		fmt.Fprintf(&buf, "  %d. %v\n", i+1, err)
	}
	return buf.String()
}

// Unwrap returns the per-file errors for errors.Is and errors.As.
func (se *ScanError) Unwrap() []error {
	return se.Errors
}

// newScanError returns nil when nothing failed
func newScanError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &ScanError{Errors: errs}
}
