package idaia

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or shape spec failed validation.
	ErrValidation = errors.New("validation error")

	// ErrNoShapeRecognized indicates the rule-based parser found no
	// shape keyword in the prompt.
	ErrNoShapeRecognized = errors.New("no shape recognized")

	// ErrMalformedReply indicates the model's reply could not be
	// decoded into a valid command set.
	ErrMalformedReply = errors.New("malformed model reply")

	// ErrNoInterpretation is the terminal pipeline failure after the
	// fallback hop is exhausted.
	ErrNoInterpretation = errors.New("no interpretation")

	// ErrBusy indicates a request is already in flight for the session.
	ErrBusy = errors.New("a request is already in flight")
)

// ProviderErrorKind classifies a provider failure. The kind drives the
// retry policy.
type ProviderErrorKind int

const (
	ProviderTransport ProviderErrorKind = iota
	ProviderRateLimited
	ProviderServerError
	ProviderBadRequest
	ProviderTimeout
)

// String returns the kind's reason label.
func (k ProviderErrorKind) String() string {
	switch k {
	case ProviderTransport:
		return "transport"
	case ProviderRateLimited:
		return "rate_limited"
	case ProviderServerError:
		return "server_error"
	case ProviderBadRequest:
		return "bad_request"
	case ProviderTimeout:
		return "timeout"
	}
	return "unknown"
}

// ProviderError is a classified failure from an LLM backend.
type ProviderError struct {
	Kind    ProviderErrorKind
	Status  int // HTTP status, 0 for transport failures
	Message string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("provider %s: %s", e.Kind, e.Message)
}

// Retryable reports whether another attempt can help. Bad requests and
// auth failures surface immediately.
func (e *ProviderError) Retryable() bool {
	return e.Kind != ProviderBadRequest
}

// ClassifyStatus maps a non-2xx HTTP status to a ProviderError.
func ClassifyStatus(status int, message string) *ProviderError {
	kind := ProviderBadRequest
	switch {
	case status == 429:
		kind = ProviderRateLimited
	case status >= 500:
		kind = ProviderServerError
	}
	return &ProviderError{Kind: kind, Status: status, Message: message}
}

// ClassifyTransport maps a request/transport failure to a
// ProviderError. Deadline expiry becomes a timeout; everything else is
// a connection-level transport failure. Caller cancellation is not a
// provider failure and is returned unchanged.
func ClassifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ProviderError{Kind: ProviderTimeout, Message: err.Error()}
	}
	return &ProviderError{Kind: ProviderTransport, Message: err.Error()}
}
