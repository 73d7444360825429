package faucet_pack

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is returned before any nonce is allocated. Not retryable.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrUpstreamUnavailable wraps cache, ledger and submitter transport failures.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrSubmissionRejected is the sentinel behind every *SubmissionRejectedError.
	ErrSubmissionRejected = errors.New("submission rejected")

	ErrAccountNotFound = errors.New("account not found")
)

// SubmissionRejectedError carries the submitter's reason verbatim.
type SubmissionRejectedError struct {
	Reason string
}

func (e *SubmissionRejectedError) Error() string {
	return e.Reason
}

func (e *SubmissionRejectedError) Unwrap() error {
	return ErrSubmissionRejected
}

func upstream(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, op, cause)
}
