package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"validation errors", NewValidationError("title", "is required", ""), KindValidation},
		{"marks out of range", fmt.Errorf("%w: 11", ErrMarksOutOfRange), KindValidation},
		{"permission", NewPermissionError("u", 1, "test", "update", "nope"), KindAuthorization},
		{"not enrolled", ErrNotEnrolled, KindAuthorization},
		{"missing principal", ErrAuthenticationMissing, KindAuthorization},
		{"test not found", ErrTestNotFound, KindNotFound},
		{"unpublished", ErrTestNotPublished, KindNotFound},
		{"question outside the test", fmt.Errorf("%w: question 9", ErrQuestionNotInTest), KindNotFound},
		{"already submitted", ErrAlreadySubmitted, KindConflict},
		{"locked by submissions", fmt.Errorf("%w: q-1", ErrTestHasSubmissions), KindConflict},
		{"storage failure", newPersistenceError("create test", errors.New("boom")), KindPersistence},
		{"unknown error", errors.New("boom"), KindPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := newPersistenceError("list tests", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "list tests: connection refused", err.Error())
}
