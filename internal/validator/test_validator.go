package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
)

// MinMCQOptions is the minimum number of non-empty options on a multiple-choice question.
const MinMCQOptions = 2

// TestValidator holds the rules that struct tags cannot express.
type TestValidator struct{}

func NewTestValidator() *TestValidator {
	return &TestValidator{}
}

// Validate checks question keys and type-specific fields of every question.
func (v *TestValidator) Validate(draft *models.TestDraft) ValidationErrors {
	var errs ValidationErrors

	seen := make(map[string]int, len(draft.Questions))
	for i := range draft.Questions {
		q := &draft.Questions[i]
		prefix := fmt.Sprintf("questions[%d]", i)

		if q.Key != "" {
			if first, dup := seen[q.Key]; dup {
				errs.Add(prefix+".key", fmt.Sprintf("duplicates questions[%d].key", first), q.Key)
			} else {
				seen[q.Key] = i
			}
		}

		errs = append(errs, v.ValidateQuestion(prefix, q)...)
	}

	return errs
}

// ValidateQuestion checks the fields that depend on the question type.
func (v *TestValidator) ValidateQuestion(prefix string, q *models.QuestionDraft) ValidationErrors {
	var errs ValidationErrors

	if !q.Type.IsMCQ() {
		if len(NonEmptyOptions(q.Options)) > 0 {
			errs.Add(prefix+".options", "only multiple-choice questions take options", len(q.Options))
		}
		if q.CorrectOptionIndex != nil {
			errs.Add(prefix+".correct_option_index", "only multiple-choice questions take a correct option", *q.CorrectOptionIndex)
		}
		return errs
	}

	if q.ExpectedAnswerText != nil {
		errs.Add(prefix+".expected_answer_text", "multiple-choice questions take no expected answer", *q.ExpectedAnswerText)
	}

	options := NonEmptyOptions(q.Options)
	if len(options) < MinMCQOptions {
		errs.Add(prefix+".options", fmt.Sprintf("must have at least %d non-empty options", MinMCQOptions), len(options))
		return errs
	}

	if q.CorrectOptionIndex == nil {
		errs.Add(prefix+".correct_option_index", "is required", nil)
	} else if _, ok := DenseIndex(q.Options, *q.CorrectOptionIndex); !ok {
		errs.Add(prefix+".correct_option_index", "must point at a non-empty option", *q.CorrectOptionIndex)
	}

	return errs
}

// NonEmptyOptions drops blank option texts. Indexes of the result are the
// dense option indexes that get persisted.
func NonEmptyOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if strings.TrimSpace(o) != "" {
			out = append(out, strings.TrimSpace(o))
		}
	}
	return out
}

// DenseIndex maps an index into the raw option list onto the index the
// option gets once blank options are dropped.
func DenseIndex(options []string, raw int) (int, bool) {
	if raw < 0 || raw >= len(options) || strings.TrimSpace(options[raw]) == "" {
		return 0, false
	}
	dense := 0
	for _, o := range options[:raw] {
		if strings.TrimSpace(o) != "" {
			dense++
		}
	}
	return dense, true
}
