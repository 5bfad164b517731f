package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("title", "is required", "")

	assert.Equal(t, "title", err.Field)
	assert.Equal(t, "is required", err.Message)
	assert.Equal(t, "validation error on field 'title': is required", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())
	assert.Nil(t, errs.OrNil())

	errs.Add("field1", "message1", nil)
	assert.Equal(t, "validation failed: field1 message1", errs.Error())

	errs.Add("field2", "message2", nil)
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
	assert.Error(t, errs.OrNil())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("marks", "must be at least 1", "min", 0)

	assert.Equal(t, "min", err.Rule)
	assert.Equal(t, "marks", err.Field)
}

func TestToValidationErrors(t *testing.T) {
	type payload struct {
		Title    string `validate:"required"`
		Duration int    `validate:"min=1"`
	}

	err := validator.New().Struct(payload{})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "payload.Title", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "min", errs[1].Rule)
	assert.Equal(t, "must be at least 1", errs[1].Message)
}
