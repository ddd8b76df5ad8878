package service

import "errors"

var (
	ErrAlreadyApplied      = errors.New("already applied")
	ErrJobNotFound         = errors.New("job not found")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("company already registered")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidResume       = errors.New("invalid resume")
)

// ValidationError is an ErrInvalidInput with a message fit for the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(msg string) error { return &ValidationError{Message: msg} }
