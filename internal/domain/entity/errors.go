// internal/domain/entity/errors.go
package entity

import (
	"fmt"
)

// ValidationError marks malformed engine input (deal, subscription or alert
// parameters). The offending item is skipped; the batch continues.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ExternalServiceError wraps a failure of an outbound collaborator such as
// the language-model summary call. Recovered locally with retries and a
// fallback; never blocks matching.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s service error: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a store read/write failure. Propagated to the
// caller: confirmed matches and price points are never silently dropped.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ConfigError marks invalid configuration detected at startup. Fatal; the
// service fails fast before processing begins.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}
