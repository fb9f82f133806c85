package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrorKind classifies a failed client operation.
type ErrorKind int

const (
	// KindTransport covers DNS, connect, and TLS failures.
	KindTransport ErrorKind = iota
	// KindTimeout is a request that exceeded its deadline.
	KindTimeout
	// KindJSONParse is a 2xx response whose body did not decode.
	KindJSONParse
	// KindGitlabAPI is any other non-2xx response.
	KindGitlabAPI
	// KindConfig is a locally invalid client configuration.
	KindConfig
	// KindAuthentication is a 401 with no recognizable token diagnosis.
	KindAuthentication
	// KindInvalidToken is a 401 reporting error "invalid_token".
	KindInvalidToken
	// KindExpiredToken is a 401 reporting an expired token.
	KindExpiredToken
	// KindNotFound is a 404, typically a stale pipeline id.
	KindNotFound
	// KindRateLimit is a 429.
	KindRateLimit
)

// Error is the failure type for all client operations.
type Error struct {
	Kind ErrorKind
	// Resource names the missing resource for KindNotFound.
	Resource string
	// RetryAfter carries the 429 Retry-After hint, when present.
	RetryAfter time.Duration
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("HTTP request failed: %v", e.Err)
	case KindTimeout:
		return "request timeout"
	case KindJSONParse:
		return fmt.Sprintf("JSON deserialization failed: %s", e.Message)
	case KindGitlabAPI:
		return fmt.Sprintf("GitLab API error: %s", e.Message)
	case KindConfig:
		return fmt.Sprintf("configuration error: %s", e.Message)
	case KindAuthentication:
		return "authentication failed"
	case KindInvalidToken:
		return "invalid access token"
	case KindExpiredToken:
		return "access token has expired"
	case KindNotFound:
		return fmt.Sprintf("resource not found: %s", e.Resource)
	case KindRateLimit:
		if e.RetryAfter > 0 {
			return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
		}
		return "rate limit exceeded"
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether a scheduler may re-issue the operation.
// Timeouts, connect failures, and rate limits are transient; auth,
// parse, and config errors are not.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransport, KindTimeout, KindRateLimit:
		return true
	}
	return false
}

func configErr(msg string) *Error {
	return &Error{Kind: KindConfig, Message: msg}
}

func jsonParseErr(path string, err error) *Error {
	return &Error{
		Kind:    KindJSONParse,
		Message: "failed to parse response from " + path,
		Err:     err,
	}
}

// transportErr classifies a round-trip failure as timeout or transport.
func transportErr(err error) *Error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindTransport, Err: err}
}
