package features

import "errors"

// Common error codes
const (
	ErrCodeEmptyInput      = "EMPTY_INPUT"
	ErrCodeDecoding        = "DECODING_FAILED"
	ErrCodeSchema          = "SCHEMA_MISMATCH"
	ErrCodeMissingArtifact = "MISSING_ARTIFACT"
)

// Error represents an extraction-related error tied to a specific
// artifact. All per-row failures in the pipeline surface as one of
// these so the joiner can degrade the row instead of aborting the run.
type Error struct {
	Code    string `json:"code"`
	Locator string `json:"locator,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new extraction error
func NewError(code, locator, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Locator: locator,
		Message: message,
		Cause:   cause,
	}
}

// HasCode reports whether err is (or wraps) an extraction Error with
// the given code.
func HasCode(err error, code string) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}
