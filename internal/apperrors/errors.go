// Package apperrors defines the typed, recoverable error kinds the core
// surfaces to its callers. Every expected business condition is one of these
// values so the HTTP boundary can map them to stable codes; anything else is
// treated as an internal error and never leaks detail to the client.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind buckets an error into the stable taxonomy clients branch on.
type Kind string

// Error kinds.
const (
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindInvalidTransition Kind = "invalid_status_transition"
	KindValidation        Kind = "validation_error"
	KindConflict          Kind = "conflict"
	KindInternal          Kind = "internal"
)

// Stable machine-readable codes carried alongside the kind.
const (
	CodeCatalogBadgeNotFound      = "catalog_badge_not_found"
	CodeDuplicateName             = "duplicate_name"
	CodeCatalogBadgeInactive      = "catalog_badge_inactive"
	CodeApplicationNotFound       = "badge_application_not_found"
	CodeApplicationNotAccepted    = "badge_application_not_accepted"
	CodeReferencedByPromotion     = "referenced_by_promotion"
	CodeTemplateNotFound          = "template_not_found"
	CodeTemplateInUse             = "template_in_use"
	CodePromotionNotFound         = "promotion_not_found"
	CodeNotInDraftStatus          = "not_in_draft_status"
	CodeBadgeNotInPromotion       = "badge_not_in_promotion"
	CodeForbidden                 = "forbidden"
	CodeInvalidStatusTransition   = "invalid_status_transition"
	CodeValidationError           = "validation_error"
	CodeBadgeAlreadyReserved      = "badge_already_reserved"
	CodePromotionValidationFailed = "promotion_validation_failed"
	CodeInternal                  = "internal_error"
)

// Error is the structured business error returned by the core services.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds a not-found error. Also used for reads disguised as absent
// when the caller must not learn whether the entity exists.
func NotFound(code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds a permission error. Call sites deliberately keep the
// message generic when distinguishing causes would leak ownership.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransition builds an error for a transition not legal from the
// entity's current state.
func InvalidTransition(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Code: CodeInvalidStatusTransition, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a malformed-input error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidationError, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a lifecycle-conflict error with an explicit code.
func Conflict(code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected error. The message shown to users is always
// generic; the cause is only for logs.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal error", Err: err}
}

// KindOf extracts the kind from err, or KindInternal for unknown errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var rc *ReservationConflictError
	if errors.As(err, &rc) {
		return KindConflict
	}
	var vf *ValidationFailedError
	if errors.As(err, &vf) {
		return KindConflict
	}
	return KindInternal
}

// ReservationConflictError reports that a badge application is already held
// by another promotion. It names the winner so the client can act on it.
type ReservationConflictError struct {
	BadgeApplicationID uint `json:"badge_application_id"`
	OwningPromotionID  uint `json:"owning_promotion_id"`
}

// Error implements the error interface.
func (e *ReservationConflictError) Error() string {
	return fmt.Sprintf("badge application %d is already reserved by promotion %d",
		e.BadgeApplicationID, e.OwningPromotionID)
}

// MissingRequirement is one unmet template rule, expressed as the number of
// badges still needed.
type MissingRequirement struct {
	Category string `json:"category"`
	Level    string `json:"level"`
	Count    int    `json:"count"`
}

// ValidationFailedError reports a promotion submitted without satisfying its
// template, carrying the full missing-requirements list.
type ValidationFailedError struct {
	Missing []MissingRequirement `json:"missing"`
}

// Error implements the error interface.
func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("promotion does not satisfy its template: %d requirement(s) missing", len(e.Missing))
}
