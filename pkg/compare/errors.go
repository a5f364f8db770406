package compare

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a missing or unusable credential. Retrying will
	// not help until the deployment is fixed.
	ErrConfiguration = errors.New("configuration error")
	// ErrComparison marks a failed model request. The user may retry.
	ErrComparison = errors.New("comparison failed")
)

// ConfigError reports which credential could not be resolved.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s not found. Please set it in the secret store (for deployments) or as an environment variable (for local use): %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() []error { return []error{ErrConfiguration, e.Err} }
