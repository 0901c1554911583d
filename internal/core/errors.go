// internal/core/errors.go
package core

import (
	"errors"
	"fmt"
)

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
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "not enough historical data to run a backtest"}
	ErrInvalidData      = &Error{Code: "INVALID_DATA", Message: "price series contains invalid values"}

	// Collector errors
	ErrCollectorFailed   = &Error{Code: "COLLECTOR_FAILED", Message: "collector failed"}
	ErrCollectorTimeout  = &Error{Code: "COLLECTOR_TIMEOUT", Message: "collector timeout"}
	ErrCollectorNotFound = &Error{Code: "COLLECTOR_NOT_FOUND", Message: "collector not found"}

	// Strategy errors
	ErrStrategyNotFound = &Error{Code: "STRATEGY_NOT_FOUND", Message: "strategy not found"}

	// Backtest errors
	ErrBacktestFailed = &Error{Code: "BACKTEST_FAILED", Message: "backtest failed"}

	// Job errors
	ErrJobNotFound = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}

	// Archive errors
	ErrArchiveFailed  = &Error{Code: "ARCHIVE_FAILED", Message: "archive operation failed"}
	ErrReportNotFound = &Error{Code: "REPORT_NOT_FOUND", Message: "report not found"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)

// AsError returns err as a coded error, wrapping it in base when it
// carries no code of its own.
func AsError(err error, base *Error) *Error {
	var coded *Error
	if errors.As(err, &coded) {
		return coded
	}
	return WrapError(base, err)
}
