// Package apperr defines the typed error kinds the analytics core can raise.
//
// Analytical shortcomings (thin evidence, defaulted baselines) are never
// represented here — those become structured result fields. Only
// validation and infrastructure failures short-circuit with one of these.
package apperr

import "errors"

// Kind identifies which class of failure occurred.
type Kind string

const (
	// KindInvalidMetrics means a snapshot write would introduce a negative
	// counter or targets a post that does not exist. Counter regressions are
	// accepted at write time and clamped when deltas are computed.
	KindInvalidMetrics Kind = "invalid_metrics"
	// KindWindowInvalid means w_end <= w_start, or the window ends in the future.
	KindWindowInvalid Kind = "window_invalid"
	// KindWindowTooWide means the analysis exceeded its soft deadline.
	KindWindowTooWide Kind = "window_too_wide"
	// KindPersistenceUnavailable wraps an underlying store error.
	KindPersistenceUnavailable Kind = "persistence_unavailable"
)

// Error is a typed application error carrying a Kind alongside the message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is(err, apperr.ErrWindowInvalid) style sentinel checks
// by kind rather than identity.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func newKind(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// InvalidMetrics builds a KindInvalidMetrics error.
func InvalidMetrics(msg string) error { return newKind(KindInvalidMetrics, msg, nil) }

// WindowInvalid builds a KindWindowInvalid error.
func WindowInvalid(msg string) error { return newKind(KindWindowInvalid, msg, nil) }

// WindowTooWide builds a KindWindowTooWide error.
func WindowTooWide(msg string) error { return newKind(KindWindowTooWide, msg, nil) }

// PersistenceUnavailable wraps an underlying store error.
func PersistenceUnavailable(msg string, cause error) error {
	return newKind(KindPersistenceUnavailable, msg, cause)
}

// sentinels used with errors.Is for kind-only comparisons.
var (
	ErrInvalidMetrics        = &Error{Kind: KindInvalidMetrics}
	ErrWindowInvalid         = &Error{Kind: KindWindowInvalid}
	ErrWindowTooWide         = &Error{Kind: KindWindowTooWide}
	ErrPersistenceUnavailable = &Error{Kind: KindPersistenceUnavailable}
)

// KindOf extracts the Kind from err, if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
