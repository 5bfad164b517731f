package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/school-assessment-service/internal/errors"
	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationErrors is the shared field error list returned by every check.
type ValidationErrors = apperrors.ValidationErrors

// Validator combines struct-tag validation with the authoring business rules.
type Validator struct {
	structValidator *validator.Validate
	testValidator   *TestValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		testValidator:   NewTestValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidateTestDraft runs tag validation and then the structural rules for questions and options.
func (v *Validator) ValidateTestDraft(draft *models.TestDraft) error {
	if err := v.ValidateStruct(draft); err != nil {
		return err
	}
	return v.testValidator.Validate(draft).OrNil()
}

func (v *Validator) Test() *TestValidator {
	return v.testValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("not_blank", validateNotBlank)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).Valid()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
