package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors
	ErrSymbolNotFound   = &Error{Code: "SYMBOL_NOT_FOUND", Message: "symbol not found"}
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no price data available"}
	ErrDataInsufficient = &Error{Code: "DATA_INSUFFICIENT", Message: "insufficient bars for indicator window"}
	ErrInvalidBar       = &Error{Code: "INVALID_BAR", Message: "price bar violates OHLC invariant"}

	// Configuration errors (fatal at startup)
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// External collaborator errors
	ErrExternalDataUnavailable = &Error{Code: "EXTERNAL_DATA_UNAVAILABLE", Message: "external data fetch failed"}
	ErrSentimentUnavailable    = &Error{Code: "SENTIMENT_UNAVAILABLE", Message: "sentiment provider failed"}

	// Signal errors
	ErrRiskRuleViolation = &Error{Code: "RISK_RULE_VIOLATION", Message: "reward ratio below configured minimum"}
	ErrSignalExists      = &Error{Code: "SIGNAL_EXISTS", Message: "active signal already exists for symbol"}

	// Storage errors
	ErrStoreFailed   = &Error{Code: "STORE_FAILED", Message: "store operation failed"}
	ErrNotFound      = &Error{Code: "NOT_FOUND", Message: "record not found"}
	ErrArchiveFailed = &Error{Code: "ARCHIVE_FAILED", Message: "archive operation failed"}
)
