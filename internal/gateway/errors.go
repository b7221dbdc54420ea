package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"
)

// ErrNotConfigured is returned when the provider for an operation has no credentials.
var ErrNotConfigured = errors.New("provider not configured")

// GenerationError reports a failed or unusable provider response.
type GenerationError struct {
	Op         string
	StatusCode int // provider HTTP status, 0 when the request never completed
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: provider status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Temporary reports whether the provider signalled overload or an internal failure.
func (e *GenerationError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RateLimitError is returned when the shared call budget is used up.
type RateLimitError struct {
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit of %d calls per %s exceeded, retry in %s",
		e.Limit, e.Window, e.RetryAfter.Round(time.Second))
}

// UserMessage is the text shown to the person who triggered the call.
func (e *RateLimitError) UserMessage() string {
	return "You're making requests too quickly. Please wait a moment and try again."
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back up to a rune boundary.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
