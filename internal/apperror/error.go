// Package apperror provides structured, code-matched error handling.
package apperror

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// AppError implements the error interface and provides structured error handling
type AppError struct {
	Code      Code      `json:"code"`
	Message   string    `json:"message"`
	Context   string    `json:"context,omitempty"`
	Venue     string    `json:"venue,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	cause     error     // unexported to maintain encapsulation
	stack     []uintptr // stack trace
}

// Error implements the error interface
func (e *AppError) Error() string {
	switch {
	case e.Venue != "" && e.Context != "":
		return fmt.Sprintf("%s: %s (venue: %s, context: %s)", e.Code, e.Message, e.Venue, e.Context)
	case e.Venue != "":
		return fmt.Sprintf("%s: %s (venue: %s)", e.Code, e.Message, e.Venue)
	case e.Context != "":
		return fmt.Sprintf("%s: %s (context: %s)", e.Code, e.Message, e.Context)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is implements errors.Is for error comparison. Two AppErrors match when
// their codes match; message and context are informational only.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ToLog serializes the error for logging with stack trace
func (e *AppError) ToLog() map[string]interface{} {
	log := map[string]interface{}{
		"code":      e.Code,
		"message":   e.Message,
		"timestamp": e.Timestamp.Format(time.RFC3339),
	}

	if e.Context != "" {
		log["context"] = e.Context
	}

	if e.Venue != "" {
		log["venue"] = e.Venue
	}

	if e.cause != nil {
		log["cause"] = e.cause.Error()
	}

	if len(e.stack) > 0 {
		log["stack"] = e.formatStack()
	}

	return log
}

func (e *AppError) formatStack() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			sb.WriteString(fmt.Sprintf("\n\t%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}
	return sb.String()
}

func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// New creates a new AppError with the given code and options
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:      code,
		Message:   messages[code],
		Timestamp: time.Now(),
		stack:     captureStack(),
	}

	for _, opt := range opts {
		opt(err)
	}

	// If message wasn't set by options and isn't in messages map, use code as message
	if err.Message == "" {
		err.Message = string(code)
	}

	return err
}

// Option is a functional option for AppError
type Option func(*AppError)

// WithMessage sets a custom message
func WithMessage(message string) Option {
	return func(e *AppError) {
		e.Message = message
	}
}

// WithContext adds context information
func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

// WithVenue tags the error with the venue it originated from
func WithVenue(venue string) Option {
	return func(e *AppError) {
		e.Venue = venue
	}
}

// WithCause wraps an underlying error
func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// Factory methods for the swap taxonomy

// Liquidity creates a liquidity-unavailable error for a venue
func Liquidity(venue string) *AppError {
	return New(CodeLiquidityUnavailable, WithVenue(venue))
}

// ServiceUnavailable creates a venue-unreachable error
func ServiceUnavailable(venue string, cause error) *AppError {
	return New(CodeServiceUnavailable, WithVenue(venue), WithCause(cause))
}

// Deposit creates a deposit-failed error
func Deposit(venue string, cause error) *AppError {
	return New(CodeDepositFailed, WithVenue(venue), WithCause(cause))
}

// Swap creates a swap-failed error
func Swap(venue string, cause error) *AppError {
	return New(CodeSwapFailed, WithVenue(venue), WithCause(cause))
}

// SlippageSwap creates a slippage-rejection error for the swap step
func SlippageSwap(venue string, cause error) *AppError {
	return New(CodeSlippageSwapExceeded, WithVenue(venue), WithCause(cause))
}

// Withdraw creates a withdraw-failed error
func Withdraw(venue string, cause error) *AppError {
	return New(CodeWithdrawFailed, WithVenue(venue), WithCause(cause))
}

// ContactSupport creates an unclassifiable-condition error
func ContactSupport(venue string, cause error) *AppError {
	return New(CodeContactSupport, WithVenue(venue), WithCause(cause))
}

// Wrap wraps a standard error into AppError
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, return it
	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}

	return New(code, WithContext(context), WithCause(err))
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}
