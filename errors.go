package postimage

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingAPIKey is returned when no API key is configured. It is detected
	// before any filesystem or network activity.
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

	// ErrGeneratorUnavailable is returned when the generation client cannot be built.
	ErrGeneratorUnavailable = errors.New("image generator unavailable")

	// ErrNoImageInResponse is returned when the call succeeded but no part carried image bytes.
	ErrNoImageInResponse = errors.New("no image in response")

	// ErrPromptBlocked is returned when the service refused the prompt.
	ErrPromptBlocked = errors.New("prompt blocked")
)

// RateLimitError is returned when the provider reports a rate limit.
// It is never retried by the Pipeline.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}
