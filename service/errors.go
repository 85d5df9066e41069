package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrSecurityViolation = errors.New("security violation")
	ErrProviderFailure   = errors.New("provider failure")
	ErrSessionNotFound   = errors.New("research session not found")
	ErrBriefingNotFound  = errors.New("briefing not found")
	ErrSessionBusy       = errors.New("research session already in progress")
)

var errEmptyResponse = fmt.Errorf("%w: empty response", ErrProviderFailure)

// ValidationError is returned when a topic is rejected before submission.
// Reason is safe to show to the user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ErrorKind classifies a suppressed failure
type ErrorKind string

const (
	KindSecurity ErrorKind = "security_violation"
	KindProvider ErrorKind = "provider_failure"
)

// KindOf classifies err. Anything that is not a security violation is
// treated as a provider failure.
func KindOf(err error) ErrorKind {
	if errors.Is(err, ErrSecurityViolation) {
		return KindSecurity
	}
	return KindProvider
}
