package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet   = "Results"
	questionsSheet = "Questions"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type exportService struct {
	repo repositories.Repository
	log  *ServiceLogger
}

func NewExportService(repo repositories.Repository, log *ServiceLogger) ExportService {
	return &exportService{repo: repo, log: log}
}

// ExportTestResults builds a gradebook workbook for one test: a Results
// sheet with a row per submission and a Questions sheet listing the test.
func (s *exportService) ExportTestResults(ctx context.Context, testID uint, teacher *models.Principal) (file *ExportFile, err error) {
	op := s.log.WithOperation(ctx, "export_results", principalID(teacher))
	defer func() { op.LogResult(testID, "test", err) }()

	if err = requireTeacher(teacher, testID, "test", "export"); err != nil {
		return nil, err
	}
	test, err := s.repo.Test().GetWithQuestions(ctx, testID)
	if err != nil {
		return nil, mapRepoError("load test", err, ErrTestNotFound)
	}
	if err = checkOwner(test, teacher, "export"); err != nil {
		return nil, err
	}

	submissions, err := s.repo.Submission().ListByTest(ctx, testID)
	if err != nil {
		return nil, newPersistenceError("list submissions", err)
	}

	content, err := buildResultsWorkbook(test, submissions)
	if err != nil {
		return nil, err
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("test-%d-results.xlsx", test.ID),
		ContentType: xlsxMIME,
		Content:     content,
	}, nil
}

func buildResultsWorkbook(test *models.Test, submissions []*models.Submission) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(resultsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to locate Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	current := test.TotalMarks()
	rows := [][]interface{}{
		{"Student", "Submitted At", "Time Taken (s)", "Status", "Marks Obtained", "Total Marks", "Percentage"},
	}
	for _, sub := range submissions {
		row := []interface{}{
			sub.StudentID,
			sub.SubmittedAt.UTC().Format(time.RFC3339),
			sub.TimeTakenSeconds,
			string(sub.Status()),
		}
		total := sub.SnapshotTotalMarks(current)
		if sub.IsGraded {
			row = append(row, sub.TotalMarksObtained, total, models.Percentage(sub.TotalMarksObtained, total))
		} else {
			row = append(row, "", total, "")
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, resultsSheet, rows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(questionsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	questionRows := [][]interface{}{
		{"#", "Question", "Type", "Marks", "Chapter", "Topic"},
	}
	for _, q := range test.Questions {
		questionRows = append(questionRows, []interface{}{q.Position + 1, q.Text, string(q.Type), q.Marks, q.Chapter, q.Topic})
	}
	if err := writeRows(f, questionsSheet, questionRows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, r+1, err)
		}
	}
	return nil
}
