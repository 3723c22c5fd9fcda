package messaging

import (
	"errors"
	"fmt"
)

// PublishError is a retryable transport failure surfaced by the gateway.
// Fire-and-forget callers log it; nobody's business transaction fails on it.
type PublishError struct {
	RoutingKey string
	Err        error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.RoutingKey, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// PermanentError marks a consume failure that redelivery cannot fix (malformed
// payload, invalid argument). The consumer drops such messages instead of
// requeueing them. Everything else is treated as retryable.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the consumer classifies it as non-retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
