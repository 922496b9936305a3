package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/logging"
	"keyrepeat/internal/state"
)

// ErrInvalidConfig is returned when a settings file cannot be used.
var ErrInvalidConfig = errors.New("config: invalid settings")

// ValidationError represents a settings validation error.
type ValidationError struct {
	Field   string
	Message string
	Warning bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// IsWarning reports whether the issue is non-fatal. Warnings are logged and
// the value is used as far as it can be.
func (e *ValidationError) IsWarning() bool {
	return e.Warning
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is makes errors.Is(errs, ErrInvalidConfig) hold for any non-empty set.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig && len(e) > 0
}

// Warnings returns only warning-level validation errors.
func (e ValidationErrors) Warnings() ValidationErrors {
	var warnings ValidationErrors
	for _, err := range e {
		if err.IsWarning() {
			warnings = append(warnings, err)
		}
	}
	return warnings
}

// Errors returns only error-level validation errors.
func (e ValidationErrors) Errors() ValidationErrors {
	var errs ValidationErrors
	for _, err := range e {
		if !err.IsWarning() {
			errs = append(errs, err)
		}
	}
	return errs
}

// HasErrors returns true if there are any non-warning errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e.Errors()) > 0
}

// ValidateSettings checks s and returns every issue found, warnings included.
//
// Keys missing from the catalog are warnings: they are still sent, as
// characters, when they map to one. A non-positive interval is a warning
// because it falls back to one second.
func ValidateSettings(s *Settings) ValidationErrors {
	var errs ValidationErrors

	if s.Version < 0 || s.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", s.Version, Version),
		})
	}

	errs = append(errs, validateInterval(s)...)
	errs = append(errs, validateHotkeys(s)...)

	for i, k := range s.SelectedKeys {
		id := keycatalog.Normalize(keycatalog.ID(k))
		switch {
		case id == "":
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("selected_keys[%d]", i),
				Message: "empty key id",
				Warning: true,
			})
		case !keycatalog.Known(id):
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("selected_keys[%d]", i),
				Message: fmt.Sprintf("unknown key %q", k),
				Warning: true,
			})
		}
	}

	if s.LogLevel != "" {
		if _, err := logging.ParseLevel(s.LogLevel); err != nil {
			errs = append(errs, ValidationError{
				Field:   "log_level",
				Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", s.LogLevel),
			})
		}
	}

	return errs
}

func validateInterval(s *Settings) ValidationErrors {
	var errs ValidationErrors

	switch {
	case math.IsNaN(s.Interval) || math.IsInf(s.Interval, 0):
		errs = append(errs, ValidationError{
			Field:   "interval",
			Message: "interval must be a finite number",
		})
	case s.Interval <= 0:
		errs = append(errs, ValidationError{
			Field:   "interval",
			Message: fmt.Sprintf("interval %v is not positive; 1 second is used", s.Interval),
			Warning: true,
		})
	case intervalSeconds(s) > state.MaxIntervalSeconds:
		errs = append(errs, ValidationError{
			Field:   "interval",
			Message: fmt.Sprintf("interval %v %s is longer than a day; 24 hours is used", s.Interval, s.Unit),
			Warning: true,
		})
	}

	switch s.Unit {
	case "Seconds", "Minutes":
	default:
		errs = append(errs, ValidationError{
			Field:   "unit",
			Message: fmt.Sprintf("invalid unit: %q (valid: Seconds, Minutes)", s.Unit),
		})
	}

	return errs
}

func validateHotkeys(s *Settings) ValidationErrors {
	var errs ValidationErrors

	start := keycatalog.Normalize(keycatalog.ID(s.StartHotkey))
	stop := keycatalog.Normalize(keycatalog.ID(s.StopHotkey))

	for _, hk := range []struct {
		field string
		id    keycatalog.ID
	}{
		{"start_hotkey", start},
		{"stop_hotkey", stop},
	} {
		if hk.id != "" && !keycatalog.Known(hk.id) {
			errs = append(errs, ValidationError{
				Field:   hk.field,
				Message: fmt.Sprintf("unknown key %q", hk.id),
				Warning: true,
			})
		}
	}

	if start != "" && start == stop {
		errs = append(errs, ValidationError{
			Field:   "stop_hotkey",
			Message: fmt.Sprintf("start and stop hotkeys are both %q", start),
		})
	}

	return errs
}

func intervalSeconds(s *Settings) float64 {
	if s.Unit == "Minutes" {
		return s.Interval * 60
	}
	return s.Interval
}
