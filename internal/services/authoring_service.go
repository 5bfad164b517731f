package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/SAP-F-2025/school-assessment-service/internal/events"
	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"github.com/SAP-F-2025/school-assessment-service/internal/validator"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type authoringService struct {
	repo      repositories.Repository
	directory DirectoryService
	validator *validator.Validator
	publisher events.EventPublisher
	log       *ServiceLogger
}

func NewAuthoringService(
	repo repositories.Repository,
	directory DirectoryService,
	validator *validator.Validator,
	publisher events.EventPublisher,
	log *ServiceLogger,
) AuthoringService {
	return &authoringService{
		repo:      repo,
		directory: directory,
		validator: validator,
		publisher: publisher,
		log:       log,
	}
}

// ===== CORE OPERATIONS =====

func (s *authoringService) CreateTest(ctx context.Context, draft *models.TestDraft, teacher *models.Principal) (view *TestView, err error) {
	var testID uint
	op := s.log.WithOperation(ctx, "create_test", principalID(teacher))
	defer func() { op.LogResult(testID, "test", err) }()

	if err = requireTeacher(teacher, 0, "test", "create"); err != nil {
		return nil, err
	}
	class, err := s.validateDraft(ctx, draft)
	if err != nil {
		return nil, err
	}

	test := &models.Test{TeacherID: teacher.ID}
	applyDraft(test, draft)
	for i := range draft.Questions {
		test.Questions = append(test.Questions, buildQuestion(i, &draft.Questions[i]))
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Test().Create(ctx, test); err != nil {
			return newPersistenceError("create test", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	testID = test.ID

	return s.loadView(ctx, test.ID, class)
}

// UpdateTest diffs the new question set against the stored one by question
// key. Matched questions are edited in place and keep their ids, so answers
// stay linked. Once submissions exist, only wording, chapter, topic and
// answer-key edits are accepted.
func (s *authoringService) UpdateTest(ctx context.Context, testID uint, draft *models.TestDraft, teacher *models.Principal) (view *TestView, err error) {
	op := s.log.WithOperation(ctx, "update_test", principalID(teacher))
	defer func() { op.LogResult(testID, "test", err) }()

	if err = requireTeacher(teacher, testID, "test", "update"); err != nil {
		return nil, err
	}
	class, err := s.validateDraft(ctx, draft)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		locked, err := tx.Test().GetForUpdate(ctx, testID)
		if err != nil {
			return mapRepoError("lock test", err, ErrTestNotFound)
		}
		if err := checkOwner(locked, teacher, "update"); err != nil {
			return err
		}

		current, err := tx.Test().GetWithQuestions(ctx, testID)
		if err != nil {
			return mapRepoError("load questions", err, ErrTestNotFound)
		}
		hasSubmissions, err := tx.Submission().ExistsForTest(ctx, testID)
		if err != nil {
			return newPersistenceError("check submissions", err)
		}

		plan, err := planQuestionUpdate(current.Questions, draft.Questions, hasSubmissions)
		if err != nil {
			return err
		}

		applyDraft(locked, draft)
		if err := tx.Test().UpdateFields(ctx, locked); err != nil {
			return newPersistenceError("update test", err)
		}

		if err := tx.Question().DeleteByIDs(ctx, testID, plan.removed); err != nil {
			return newPersistenceError("delete questions", err)
		}
		for _, q := range plan.updated {
			q.TestID = testID
			if err := tx.Question().UpdateFields(ctx, q); err != nil {
				return newPersistenceError("update question", err)
			}
			if err := tx.Question().ReplaceOptions(ctx, q.ID, q.Options); err != nil {
				return newPersistenceError("replace options", err)
			}
		}
		for _, q := range plan.added {
			q.TestID = testID
		}
		if err := tx.Question().CreateBatch(ctx, plan.added); err != nil {
			return newPersistenceError("create questions", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadView(ctx, testID, class)
}

func (s *authoringService) SetPublished(ctx context.Context, testID uint, published bool, teacher *models.Principal) (err error) {
	op := s.log.WithOperation(ctx, "set_published", principalID(teacher))
	defer func() { op.LogResult(testID, "test", err) }()

	test, err := s.ownedTest(ctx, testID, teacher, "publish")
	if err != nil {
		return err
	}

	if err = s.repo.Test().SetPublished(ctx, testID, published); err != nil {
		return mapRepoError("set published", err, ErrTestNotFound)
	}

	if published && !test.IsPublished {
		publish(ctx, s.publisher, s.log, events.NewEvent(events.EventTestPublished, events.TestPublishedEvent{
			TestID:    test.ID,
			Title:     test.Title,
			ClassID:   test.ClassID,
			TeacherID: test.TeacherID,
			DueDate:   test.DueDate,
		}), test.ID)
	}
	return nil
}

// DeleteTest removes the test; questions, options, submissions and answers
// go with it through the foreign key cascades.
func (s *authoringService) DeleteTest(ctx context.Context, testID uint, teacher *models.Principal) (err error) {
	op := s.log.WithOperation(ctx, "delete_test", principalID(teacher))
	defer func() { op.LogResult(testID, "test", err) }()

	if _, err = s.ownedTest(ctx, testID, teacher, "delete"); err != nil {
		return err
	}
	if err = s.repo.Test().Delete(ctx, testID); err != nil {
		return mapRepoError("delete test", err, ErrTestNotFound)
	}
	return nil
}

func (s *authoringService) GetTest(ctx context.Context, testID uint, teacher *models.Principal) (*TestView, error) {
	if err := requireTeacher(teacher, testID, "test", "read"); err != nil {
		return nil, err
	}
	test, err := s.repo.Test().GetWithQuestions(ctx, testID)
	if err != nil {
		return nil, mapRepoError("get test", err, ErrTestNotFound)
	}
	if err := checkOwner(test, teacher, "read"); err != nil {
		return nil, err
	}
	return s.toView(ctx, test, nil)
}

func (s *authoringService) ListTests(ctx context.Context, teacher *models.Principal, filters models.TestFilters) (*TestListResponse, error) {
	if err := requireTeacher(teacher, 0, "test", "list"); err != nil {
		return nil, err
	}
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}
	if filters.Limit > maxListLimit {
		filters.Limit = maxListLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	tests, total, err := s.repo.Test().ListByTeacher(ctx, teacher.ID, filters)
	if err != nil {
		return nil, newPersistenceError("list tests", err)
	}

	ids := make([]uint, len(tests))
	subjectIDs := make([]uint, len(tests))
	examTypeIDs := make([]uint, len(tests))
	for i, t := range tests {
		ids[i] = t.ID
		subjectIDs[i] = t.GradeSubjectID
		examTypeIDs[i] = t.ExamTypeID
	}

	counts, err := s.repo.Submission().CountByTests(ctx, ids)
	if err != nil {
		return nil, newPersistenceError("count submissions", err)
	}
	names, err := s.directory.ResolveNames(ctx, subjectIDs, examTypeIDs)
	if err != nil {
		return nil, err
	}

	classNames := make(map[uint]string)
	summaries := make([]TestSummary, 0, len(tests))
	for _, t := range tests {
		name, ok := classNames[t.ClassID]
		if !ok {
			name = s.className(ctx, t.ClassID)
			classNames[t.ClassID] = name
		}
		summaries = append(summaries, TestSummary{
			TestHeader:      toTestHeader(t, name, names),
			SubmissionCount: counts[t.ID],
		})
	}

	return &TestListResponse{
		Tests:  summaries,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

// ===== HELPERS =====

func (s *authoringService) ownedTest(ctx context.Context, testID uint, teacher *models.Principal, action string) (*models.Test, error) {
	if err := requireTeacher(teacher, testID, "test", action); err != nil {
		return nil, err
	}
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		return nil, mapRepoError("get test", err, ErrTestNotFound)
	}
	if err := checkOwner(test, teacher, action); err != nil {
		return nil, err
	}
	return test, nil
}

// validateDraft runs field validation and then checks that the class,
// subject and exam type all resolve. Unresolved references are validation
// failures of the payload.
func (s *authoringService) validateDraft(ctx context.Context, draft *models.TestDraft) (*models.ClassRef, error) {
	if draft == nil {
		return nil, NewValidationError("body", "is required", nil)
	}
	if err := s.validator.ValidateTestDraft(draft); err != nil {
		return nil, err
	}

	var errs ValidationErrors
	class, err := s.directory.ResolveClass(ctx, draft.ClassID)
	switch {
	case err == nil:
		subjects, err := s.directory.ResolveSubjectsForGrade(ctx, class.GradeID)
		if err != nil {
			return nil, err
		}
		if !containsID(subjects, draft.GradeSubjectID) {
			errs.Add("grade_subject_id", "is not a subject of the class's grade", draft.GradeSubjectID)
		}
	case IsNotFound(err):
		errs.Add("class_id", "does not exist", draft.ClassID)
	default:
		return nil, err
	}

	examTypes, err := s.directory.ResolveExamTypes(ctx)
	if err != nil {
		return nil, err
	}
	if !containsID(examTypes, draft.ExamTypeID) {
		errs.Add("exam_type_id", "does not exist", draft.ExamTypeID)
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *authoringService) className(ctx context.Context, classID uint) string {
	class, err := s.directory.ResolveClass(ctx, classID)
	if err != nil {
		return models.UnknownClass
	}
	return class.Name
}

func (s *authoringService) loadView(ctx context.Context, testID uint, class *models.ClassRef) (*TestView, error) {
	test, err := s.repo.Test().GetWithQuestions(ctx, testID)
	if err != nil {
		return nil, mapRepoError("reload test", err, ErrTestNotFound)
	}
	return s.toView(ctx, test, class)
}

func (s *authoringService) toView(ctx context.Context, test *models.Test, class *models.ClassRef) (*TestView, error) {
	names, err := s.directory.ResolveNames(ctx, []uint{test.GradeSubjectID}, []uint{test.ExamTypeID})
	if err != nil {
		return nil, err
	}
	var className string
	if class != nil {
		className = class.Name
	} else {
		className = s.className(ctx, test.ClassID)
	}

	view := &TestView{
		TestHeader: toTestHeader(test, className, names),
		TeacherID:  test.TeacherID,
		Questions:  make([]TeacherQuestionView, 0, len(test.Questions)),
	}
	for i := range test.Questions {
		view.Questions = append(view.Questions, toTeacherQuestionView(&test.Questions[i]))
	}
	return view, nil
}

func applyDraft(test *models.Test, draft *models.TestDraft) {
	test.Title = strings.TrimSpace(draft.Title)
	test.Description = draft.Description
	test.DurationMinutes = draft.DurationMinutes
	test.ClassID = draft.ClassID
	test.GradeSubjectID = draft.GradeSubjectID
	test.ExamTypeID = draft.ExamTypeID
	test.DueDate = draft.DueDate
}

// buildQuestion turns a validated question draft into a row at position.
// Blank options are dropped and the correct index is remapped onto the
// remaining dense indexes.
func buildQuestion(position int, draft *models.QuestionDraft) models.Question {
	key := draft.Key
	if key == "" {
		key = uuid.NewString()
	}

	q := models.Question{
		Key:      key,
		Position: position,
		Text:     strings.TrimSpace(draft.Text),
		Type:     draft.Type,
		Marks:    draft.Marks,
		Chapter:  strings.TrimSpace(draft.Chapter),
		Topic:    strings.TrimSpace(draft.Topic),
	}

	if draft.Type.IsMCQ() {
		for i, text := range validator.NonEmptyOptions(draft.Options) {
			q.Options = append(q.Options, models.Option{Index: i, Text: text})
		}
		if draft.CorrectOptionIndex != nil {
			if dense, ok := validator.DenseIndex(draft.Options, *draft.CorrectOptionIndex); ok {
				q.CorrectOptionIndex = &dense
			}
		}
		return q
	}

	if draft.ExpectedAnswerText != nil {
		if text := strings.TrimSpace(*draft.ExpectedAnswerText); text != "" {
			q.ExpectedAnswerText = &text
		}
	}
	return q
}

type questionPlan struct {
	updated []*models.Question
	added   []*models.Question
	removed []uint
}

// planQuestionUpdate matches drafts to existing questions by key. With
// locked set, any change that would invalidate recorded answers or move
// the test's total marks is a conflict.
func planQuestionUpdate(existing []models.Question, drafts []models.QuestionDraft, locked bool) (*questionPlan, error) {
	byKey := make(map[string]*models.Question, len(existing))
	for i := range existing {
		byKey[existing[i].Key] = &existing[i]
	}

	plan := &questionPlan{}
	kept := make(map[string]bool, len(drafts))
	for i := range drafts {
		q := buildQuestion(i, &drafts[i])
		old, ok := byKey[drafts[i].Key]
		if drafts[i].Key == "" || !ok {
			if locked {
				return nil, fmt.Errorf("%w: questions cannot be added", ErrTestHasSubmissions)
			}
			plan.added = append(plan.added, &q)
			continue
		}

		if locked && old.Type != q.Type {
			return nil, fmt.Errorf("%w: question %s cannot change type", ErrTestHasSubmissions, old.Key)
		}
		if locked && q.Marks != old.Marks {
			return nil, fmt.Errorf("%w: question %s cannot change its marks", ErrTestHasSubmissions, old.Key)
		}
		if locked && !sameOptions(old.Options, q.Options) {
			return nil, fmt.Errorf("%w: question %s cannot change its options", ErrTestHasSubmissions, old.Key)
		}
		q.ID = old.ID
		q.TestID = old.TestID
		kept[old.Key] = true
		plan.updated = append(plan.updated, &q)
	}

	for _, old := range existing {
		if kept[old.Key] {
			continue
		}
		if locked {
			return nil, fmt.Errorf("%w: question %s cannot be removed", ErrTestHasSubmissions, old.Key)
		}
		plan.removed = append(plan.removed, old.ID)
	}

	return plan, nil
}

// sameOptions reports whether two option lists carry the same texts in the
// same order, so stored selected indexes still point at the same choice.
func sameOptions(old, next []models.Option) bool {
	if len(old) != len(next) {
		return false
	}
	sorted := make([]models.Option, len(old))
	copy(sorted, old)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	for i := range sorted {
		if sorted[i].Text != next[i].Text {
			return false
		}
	}
	return true
}
