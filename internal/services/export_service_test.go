package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService_ExportTestResults(t *testing.T) {
	repo := newMockRepo()
	repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).Return(mcqTest(), nil)
	repo.subs.On("ListByTest", mock.Anything, uint(1)).Return([]*models.Submission{
		{ID: 11, TestID: 1, StudentID: "student-1", SubmittedAt: day, IsGraded: true, TotalMarksObtained: 5},
		{ID: 12, TestID: 1, StudentID: "student-2", SubmittedAt: day},
	}, nil)

	file, err := NewExportService(repo, testLogger()).ExportTestResults(context.Background(), 1, teacherPrincipal("teacher-1"))
	require.NoError(t, err)
	assert.Equal(t, "test-1-results.xlsx", file.Filename)

	workbook, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer workbook.Close()

	assert.Equal(t, []string{"Results", "Questions"}, workbook.GetSheetList())

	rows, err := workbook.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Student", rows[0][0])
	assert.Equal(t, []string{"student-1", "2025-03-01T09:00:00Z", "0", "graded", "5", "15", "33"}, rows[1])
	assert.Equal(t, "pending", rows[2][3])

	questions, err := workbook.GetRows("Questions")
	require.NoError(t, err)
	assert.Len(t, questions, 4)
}

func TestExportService_OwnerOnly(t *testing.T) {
	repo := newMockRepo()
	repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).Return(mcqTest(), nil)

	_, err := NewExportService(repo, testLogger()).ExportTestResults(context.Background(), 1, teacherPrincipal("teacher-2"))
	assert.Equal(t, KindAuthorization, KindOf(err))
	repo.subs.AssertNotCalled(t, "ListByTest", mock.Anything, mock.Anything)
}
