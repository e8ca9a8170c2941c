/**
 * @description
 * This file defines the error taxonomy shared by every domain service in the
 * trip service. Errors carry a kind (validation, not_found, forbidden,
 * business_rule) so that the API layer can map them to HTTP status codes
 * without inspecting message strings.
 *
 * @notes
 * - Domain and application code returns these errors unmodified; nothing in
 *   the core logs, retries, or swallows them. The single exception is the
 *   plan-reality trip-access check, which converts lookup failures into a
 *   plain boolean (fail closed).
 */

package domain

import "errors"

// ErrorKind classifies a domain error for transport mapping.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindForbidden    ErrorKind = "forbidden"
	KindBusinessRule ErrorKind = "business_rule"
)

// Error is a domain error with a transport-mappable kind.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports a missing (or soft-deleted, where lookups hide
// deleted rows) entity.
func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewForbiddenError reports a caller without access to the target entity.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewBusinessRuleError reports a failed state-transition precondition.
func NewBusinessRuleError(message string) *Error {
	return &Error{Kind: KindBusinessRule, Message: message}
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}
