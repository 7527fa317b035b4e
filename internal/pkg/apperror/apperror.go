package apperror

import "fmt"

// ValidationError signals malformed input to a mutation or transition.
// The entity is left unmodified.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// Validation builds a ValidationError.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthorizationError signals a missing role or ownership requirement.
type AuthorizationError struct {
	Required string
}

func (e *AuthorizationError) Error() string {
	return "not allowed: requires " + e.Required
}

// Authorization builds an AuthorizationError naming the requirement.
func Authorization(required string) *AuthorizationError {
	return &AuthorizationError{Required: required}
}

// StateConflictError signals a workflow transition attempted from a
// status that does not permit it.
type StateConflictError struct {
	Action   string
	Current  string
	Required string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s from status %s: requires %s", e.Action, e.Current, e.Required)
}

// StateConflict builds a StateConflictError.
func StateConflict(action, current, required string) *StateConflictError {
	return &StateConflictError{Action: action, Current: current, Required: required}
}

// PersistenceError wraps a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "persistence: " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError.
func Persistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// NotFoundError signals a missing entity.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found: " + e.Key }

// NotFound builds a NotFoundError.
func NotFound(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// ConflictError signals a uniqueness violation, e.g. a slug collision.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict builds a ConflictError.
func Conflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}
