package llm

import (
	"errors"
	"fmt"
)

// ErrKind categorizes backend failures. The orchestrator maps each kind to a
// distinct user-facing fallback message, so a backend failure never
// terminates a request without a response.
type ErrKind string

const (
	// ErrKindInvalidCredentials means the API key is missing, malformed,
	// or rejected by the provider.
	ErrKindInvalidCredentials ErrKind = "invalid_credentials"

	// ErrKindQuotaExceeded means the provider rejected the call due to
	// rate or usage limits.
	ErrKindQuotaExceeded ErrKind = "quota_exceeded"

	// ErrKindModelError means the requested model is unknown, retired, or
	// failed to produce output.
	ErrKindModelError ErrKind = "model_error"

	// ErrKindUnknown covers everything else, including transport failures.
	ErrKindUnknown ErrKind = "unknown"
)

// BackendError wraps a provider failure with its category.
type BackendError struct {
	Kind ErrKind
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("llm backend failure (%s): %v", e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// backendErr is a construction helper used by the client implementations.
func backendErr(kind ErrKind, format string, args ...any) error {
	return &BackendError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure category from an error chain. Errors that did
// not come from a backend client report ErrKindUnknown.
func KindOf(err error) ErrKind {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ErrKindUnknown
}

// kindFromStatus maps a provider HTTP status code to an ErrKind. Providers
// agree on the broad strokes: 401/403 are credential problems, 429 is quota,
// 404 is a model problem.
func kindFromStatus(status int) ErrKind {
	switch status {
	case 401, 403:
		return ErrKindInvalidCredentials
	case 429:
		return ErrKindQuotaExceeded
	case 404:
		return ErrKindModelError
	default:
		return ErrKindUnknown
	}
}
