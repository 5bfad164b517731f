package services

import (
	"context"
	"sort"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
)

// analyticsService recomputes everything on read from graded submissions.
// Nothing here is cached or persisted.
type analyticsService struct {
	repo      repositories.Repository
	directory DirectoryService
	log       *ServiceLogger
	now       func() time.Time
}

func NewAnalyticsService(repo repositories.Repository, directory DirectoryService, log *ServiceLogger) AnalyticsService {
	return &analyticsService{
		repo:      repo,
		directory: directory,
		log:       log,
		now:       time.Now,
	}
}

// StudentPerformance is readable by the student themselves and by teachers.
func (s *analyticsService) StudentPerformance(ctx context.Context, studentID string, caller *models.Principal) (perf *models.StudentPerformance, err error) {
	op := s.log.WithOperation(ctx, "student_performance", principalID(caller))
	defer func() { op.LogResult(0, "student", err) }()

	if caller == nil || caller.ID == "" {
		return nil, ErrAuthenticationMissing
	}
	if !caller.IsTeacher() && caller.ID != studentID {
		return nil, NewPermissionError(caller.ID, 0, "student_performance", "read", "students may only read their own results")
	}

	filter := repositories.ResultFilter{StudentID: &studentID}
	results, err := s.repo.Analytics().GradedResults(ctx, filter)
	if err != nil {
		return nil, newPersistenceError("load graded results", err)
	}
	pending, err := s.repo.Analytics().PendingCount(ctx, filter)
	if err != nil {
		return nil, newPersistenceError("count pending submissions", err)
	}

	submissionIDs, subjectIDs, examTypeIDs := resultIDs(results)
	names, err := s.directory.ResolveNames(ctx, subjectIDs, examTypeIDs)
	if err != nil {
		return nil, err
	}
	marks, err := s.answerMarks(ctx, submissionIDs)
	if err != nil {
		return nil, err
	}

	chapters := Breakdown(marks, ChapterOf)
	topics := Breakdown(marks, TopicOf)

	return &models.StudentPerformance{
		StudentID:         studentID,
		GradedTests:       len(results),
		PendingTests:      int(pending),
		OverallPercentage: OverallPercentage(results),
		Subjects:          SubjectScores(results, names),
		Trend:             Trend(results, names),
		Chapters:          chapters,
		Topics:            topics,
		WeakAreas: models.WeakAreas{
			Chapters: WeakEntries(chapters),
			Topics:   WeakEntries(topics),
		},
		GeneratedAt: s.now().UTC(),
	}, nil
}

// ClassPerformance aggregates the graded results of the calling teacher's
// tests in one class.
func (s *analyticsService) ClassPerformance(ctx context.Context, classID uint, teacher *models.Principal) (perf *models.ClassPerformance, err error) {
	op := s.log.WithOperation(ctx, "class_performance", principalID(teacher))
	defer func() { op.LogResult(classID, "class", err) }()

	if err = requireTeacher(teacher, classID, "class", "read performance"); err != nil {
		return nil, err
	}
	class, err := s.directory.ResolveClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	results, err := s.repo.Analytics().GradedResults(ctx, repositories.ResultFilter{
		ClassID:   &classID,
		TeacherID: &teacher.ID,
	})
	if err != nil {
		return nil, newPersistenceError("load graded results", err)
	}

	submissionIDs, subjectIDs, examTypeIDs := resultIDs(results)
	names, err := s.directory.ResolveNames(ctx, subjectIDs, examTypeIDs)
	if err != nil {
		return nil, err
	}
	marks, err := s.answerMarks(ctx, submissionIDs)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[string][]models.GradedResult)
	for _, r := range results {
		byStudent[r.StudentID] = append(byStudent[r.StudentID], r)
	}
	students := make([]models.StudentSummary, 0, len(byStudent))
	for studentID, rs := range byStudent {
		students = append(students, models.StudentSummary{
			StudentID:         studentID,
			GradedTests:       len(rs),
			OverallPercentage: OverallPercentage(rs),
			Subjects:          SubjectScores(rs, names),
		})
	}
	sort.Slice(students, func(i, j int) bool { return students[i].StudentID < students[j].StudentID })

	chapters := Breakdown(marks, ChapterOf)
	topics := Breakdown(marks, TopicOf)

	return &models.ClassPerformance{
		Class:             *class,
		OverallPercentage: OverallPercentage(results),
		Subjects:          SubjectScores(results, names),
		Students:          students,
		Chapters:          chapters,
		Topics:            topics,
		WeakAreas: models.WeakAreas{
			Chapters: WeakEntries(chapters),
			Topics:   WeakEntries(topics),
		},
		GeneratedAt: s.now().UTC(),
	}, nil
}

func (s *analyticsService) answerMarks(ctx context.Context, submissionIDs []uint) ([]models.AnswerMark, error) {
	if len(submissionIDs) == 0 {
		return nil, nil
	}
	marks, err := s.repo.Analytics().AnswerMarks(ctx, submissionIDs)
	if err != nil {
		return nil, newPersistenceError("load answer marks", err)
	}
	return marks, nil
}
