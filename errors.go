package vmssops

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceNotFound is returned when the target scale set does not exist.
	ErrResourceNotFound = errors.New("scale set not found")
)

// ErrProvider is returned when the cloud provider rejects a request.
type ErrProvider struct {
	// Op is the client operation that failed.
	Op string
	// Err is the error returned by the provider.
	Err error
}

func (e *ErrProvider) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ErrProvider) Unwrap() error {
	return e.Err
}

// ErrInvalidConfig is returned when a configuration value is blank or
// malformed.
type ErrInvalidConfig struct {
	// Field is the name of the offending configuration field.
	Field string
	// Reason describes the problem. Empty means the field is blank.
	Reason string
}

func (e *ErrInvalidConfig) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// ErrEnvNotSet is returned when a required environment variable is not set.
type ErrEnvNotSet struct {
	Key string
}

func (e *ErrEnvNotSet) Error() string {
	return fmt.Sprintf("env variable %s is not set", e.Key)
}
