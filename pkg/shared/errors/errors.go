package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Messages returned to callers of the hosting layer. They are phrased as retryable and non-alarmist.
const (
	MessageCodeRequired   = "Code is required"
	MessageNotConfigured  = "AI service not configured"
	MessageRateLimited    = "Rate limit exceeded. Please try again in a moment."
	MessageCreditsOut     = "AI service credits exhausted."
	MessageAnalyzeFailed  = "Failed to analyze code"
	MessageNoAnalysis     = "No analysis received"
	MessageParseFailed    = "Failed to parse analysis results"
	MessageBodyTooLarge   = "Request body is too large"
	MessageInternalFailed = "Unknown error"
)

// ValidationError reports caller input rejected before the core runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConfigError reports a missing or unusable setting needed to reach the model.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Setting)
}

// UpstreamError reports a failed, timed out or non-successful model call.
// StatusCode is zero when no HTTP response was received.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model gateway error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model gateway error (status %d): %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// RateLimitedError is returned when the gateway answers 429.
type RateLimitedError struct {
	UpstreamError
}

// CreditsExhaustedError is returned when the gateway answers 402.
type CreditsExhaustedError struct {
	UpstreamError
}

// ParseError reports a model answer that is not a structured analysis.
type ParseError struct {
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewUpstreamError classifies a non-successful gateway status.
func NewUpstreamError(statusCode int, body string, err error) error {
	base := UpstreamError{StatusCode: statusCode, Body: body, Err: err}
	switch statusCode {
	case http.StatusTooManyRequests:
		return &RateLimitedError{UpstreamError: base}
	case http.StatusPaymentRequired:
		return &CreditsExhaustedError{UpstreamError: base}
	default:
		return &base
	}
}

// HTTPStatus maps an error from the hosting layer onto the status returned to the caller.
func HTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		rateErr       *RateLimitedError
		creditsErr    *CreditsExhaustedError
		tooLargeErr   *http.MaxBytesError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests
	case errors.As(err, &creditsErr):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the caller-facing message for err. Internal details are never exposed.
func PublicMessage(err error) string {
	var (
		validationErr *ValidationError
		configErr     *ConfigError
		rateErr       *RateLimitedError
		creditsErr    *CreditsExhaustedError
		upstreamErr   *UpstreamError
		parseErr      *ParseError
		tooLargeErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLargeErr):
		return MessageBodyTooLarge
	case errors.As(err, &validationErr):
		if validationErr.Field == "code" {
			return MessageCodeRequired
		}
		return validationErr.Error()
	case errors.As(err, &configErr):
		return MessageNotConfigured
	case errors.As(err, &rateErr):
		return MessageRateLimited
	case errors.As(err, &creditsErr):
		return MessageCreditsOut
	case errors.As(err, &parseErr):
		return MessageParseFailed
	case errors.As(err, &upstreamErr):
		if errors.Is(err, ErrEmptyAnalysis) {
			return MessageNoAnalysis
		}
		return MessageAnalyzeFailed
	default:
		return MessageInternalFailed
	}
}

// ErrEmptyAnalysis is wrapped into an UpstreamError when the gateway answers without content.
var ErrEmptyAnalysis = errors.New("no analysis received")

// CommandError carries the exit code a CLI command should terminate with.
type CommandError struct {
	ExitCode    int
	CommonError string
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// NewCommandError creates a new CommandError from err and an exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
	}
}
