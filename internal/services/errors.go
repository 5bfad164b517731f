package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/school-assessment-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Test specific errors
	ErrTestNotFound          = errors.New("test not found")
	ErrTestNotPublished      = errors.New("test is not published")
	ErrTestHasSubmissions    = errors.New("test has submissions - questions cannot be removed or retyped")
	ErrQuestionNotFound      = errors.New("question not found")
	ErrQuestionNotInTest     = errors.New("question does not belong to the test")
	ErrClassNotFound         = errors.New("class not found")
	ErrGradeSubjectNotFound  = errors.New("subject not found for grade")
	ErrExamTypeNotFound      = errors.New("exam type not found")
	ErrSubmissionNotFound    = errors.New("submission not found")
	ErrAlreadySubmitted      = errors.New("already submitted")
	ErrNotEnrolled           = errors.New("not enrolled in the test's class")
	ErrMarksOutOfRange       = errors.New("marks out of range")
	ErrNotTestOwner          = errors.New("not the owner of the test")
	ErrAuthenticationMissing = errors.New("no authenticated user")
)

// ErrorKind is the caller-facing classification of every error the core returns.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindPersistence   ErrorKind = "persistence"
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// PersistenceError wraps a failed storage call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*apperrors.NewValidationError(field, message, value)}
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func newPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrTestNotPublished) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrQuestionNotInTest) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrClassNotFound) ||
		errors.Is(err, ErrGradeSubjectNotFound) ||
		errors.Is(err, ErrExamTypeNotFound)
}

// IsUnauthorized checks if error represents an authorization failure
func IsUnauthorized(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotEnrolled) ||
		errors.Is(err, ErrNotTestOwner) ||
		errors.Is(err, ErrAuthenticationMissing)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrMarksOutOfRange) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrTestHasSubmissions)
}

// KindOf classifies err. Anything unrecognised is a persistence failure.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return KindValidation
	case IsUnauthorized(err):
		return KindAuthorization
	case IsNotFound(err):
		return KindNotFound
	case IsConflict(err):
		return KindConflict
	default:
		return KindPersistence
	}
}
