package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/services"
	"github.com/SAP-F-2025/school-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// TestHandler serves the teacher authoring endpoints.
type TestHandler struct {
	BaseHandler
	authoring services.AuthoringService
	grading   services.GradingService
	export    services.ExportService
}

func NewTestHandler(
	authoring services.AuthoringService,
	grading services.GradingService,
	export services.ExportService,
	logger utils.Logger,
) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		authoring:   authoring,
		grading:     grading,
		export:      export,
	}
}

// CreateTest creates a draft test with its questions
// @Router /tests [post]
func (h *TestHandler) CreateTest(c *gin.Context) {
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	var req models.TestDraft
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating test", "title", req.Title, "questions", len(req.Questions))

	test, err := h.authoring.CreateTest(c.Request.Context(), &req, teacher)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// ListTests lists the caller's tests
// @Router /tests [get]
func (h *TestHandler) ListTests(c *gin.Context) {
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	var filters models.TestFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
			Code:    string(services.KindValidation),
		})
		return
	}

	result, err := h.authoring.ListTests(c.Request.Context(), teacher, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTest returns a test with its answer key
// @Router /tests/{id} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	test, err := h.authoring.GetTest(c.Request.Context(), id, teacher)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// UpdateTest replaces a test's fields and reconciles its questions
// @Router /tests/{id} [put]
func (h *TestHandler) UpdateTest(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	var req models.TestDraft
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating test", "test_id", id)

	test, err := h.authoring.UpdateTest(c.Request.Context(), id, &req, teacher)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// DeleteTest removes a test and everything recorded against it
// @Router /tests/{id} [delete]
func (h *TestHandler) DeleteTest(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	h.LogRequest(c, "Deleting test", "test_id", id)

	if err := h.authoring.DeleteTest(c.Request.Context(), id, teacher); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetPublished toggles whether students can see the test
// @Router /tests/{id}/publish [put]
func (h *TestHandler) SetPublished(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	var req PublishRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authoring.SetPublished(c.Request.Context(), id, req.Published, teacher); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Test publication updated", gin.H{
		"test_id":      id,
		"is_published": req.Published,
	})
}

// ListSubmissions lists the submissions received for a test
// @Router /tests/{id}/submissions [get]
func (h *TestHandler) ListSubmissions(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	submissions, err := h.grading.ListSubmissions(c.Request.Context(), id, teacher)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// ExportResults streams the test's results as a spreadsheet
// @Router /tests/{id}/export [get]
func (h *TestHandler) ExportResults(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	h.LogRequest(c, "Exporting test results", "test_id", id)

	file, err := h.export.ExportTestResults(c.Request.Context(), id, teacher)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
