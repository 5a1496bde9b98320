package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a provider failure.
type Kind int

const (
	// KindUnavailable covers network failures and 5xx responses.
	KindUnavailable Kind = iota
	// KindRateLimited is a 429 response.
	KindRateLimited
	// KindInvalid is a reply that is not JSON or does not match the schema.
	KindInvalid
	// KindTruncated is a reply cut off at the token limit.
	KindTruncated
	// KindRejected is a 4xx response other than 429, such as a bad API key.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindInvalid:
		return "invalid response"
	case KindTruncated:
		return "response truncated"
	case KindRejected:
		return "request rejected"
	default:
		return "provider unavailable"
	}
}

// Error is returned by every provider.
type Error struct {
	Kind Kind

	// RetryAfter is the server's requested wait for KindRateLimited.
	RetryAfter time.Duration

	// Content is the offending reply for KindInvalid and KindTruncated.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "llm: " + e.Kind.String()
	}
	return fmt.Sprintf("llm: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether retrying the same request may succeed.
func (e *Error) Temporary() bool {
	return e.Kind == KindUnavailable || e.Kind == KindRateLimited || e.Kind == KindInvalid
}

// Unavailable wraps err as a KindUnavailable error.
func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Err: err}
}

// fromStatus classifies an SDK error by the HTTP status it carried. A zero
// status means the request never got a response.
func fromStatus(status int, err error) *Error {
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Err: err}
	case status >= 400 && status < 500:
		return &Error{Kind: KindRejected, Err: err}
	default:
		return Unavailable(err)
	}
}
