package services

import "errors"

var (
	// ErrNotFound maps to a 404 at the handler layer.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized maps to a 401 at the handler layer.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAIUnavailable maps to a 503 when the language model cannot be reached.
	ErrAIUnavailable = errors.New("ai service unavailable")
)

// ValidationError carries a caller-facing message for a 400 response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

// IsValidationError reports whether err (or anything it wraps) is a
// ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
