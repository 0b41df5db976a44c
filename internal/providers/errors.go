package providers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Kind classifies provider failures so callers can branch on the class of
// failure instead of matching error text.
type Kind int

const (
	KindInvalid Kind = iota
	KindRateLimited
	KindNotFound
	KindAuth
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindUnavailable:
		return "unavailable"
	default:
		return "invalid"
	}
}

// Error is a classified provider failure. RetryAfter is only set for
// KindRateLimited responses that carried a Retry-After header.
type Error struct {
	Kind       Kind
	Status     int
	RetryAfter time.Duration
	Message    string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider error (%s): %s: status %d", e.Kind, e.Message, e.Status)
	}
	return fmt.Sprintf("provider error (%s): %s", e.Kind, e.Message)
}

// IsRateLimited reports whether err is (or wraps) a provider rate-limit
// signal. The sync engine uses this to stretch its per-item delay.
func IsRateLimited(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindRateLimited
}

// IsNotFound reports whether err is (or wraps) a provider not-found response.
func IsNotFound(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindNotFound
}

// classifyResponse maps a non-2xx provider response to an [*Error].
func classifyResponse(resp *http.Response) error {
	e := &Error{Status: resp.StatusCode}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.Message = "rate limited"
		e.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		e.Kind = KindAuth
		e.Message = "authorization failed"
	case resp.StatusCode == http.StatusNotFound:
		e.Kind = KindNotFound
		e.Message = "resource not found"
	case resp.StatusCode >= 500:
		e.Kind = KindUnavailable
		e.Message = "provider unavailable"
	default:
		e.Kind = KindInvalid
		e.Message = "unexpected response"
	}

	return e
}

// parseRetryAfter handles the delay-seconds form of the header. The HTTP-date
// form is rare enough from JSON APIs that it falls through to zero.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
