package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/services"
	"github.com/SAP-F-2025/school-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AttemptHandler serves the student-facing endpoints.
type AttemptHandler struct {
	BaseHandler
	attempts    services.AttemptService
	submissions services.SubmissionService
}

func NewAttemptHandler(
	attempts services.AttemptService,
	submissions services.SubmissionService,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler: NewBaseHandler(logger),
		attempts:    attempts,
		submissions: submissions,
	}
}

// ListAvailableTests lists the published tests of the student's class
// @Router /student/tests [get]
func (h *AttemptHandler) ListAvailableTests(c *gin.Context) {
	student := h.principal(c)
	if student == nil {
		return
	}

	tests, err := h.attempts.ListAvailableTests(c.Request.Context(), student)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tests": tests})
}

// GetAttempt returns a test without its answer key
// @Router /student/tests/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	student := h.principal(c)
	if student == nil {
		return
	}

	attempt, err := h.attempts.GetAttempt(c.Request.Context(), id, student)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// Submit records the student's single submission
// @Router /student/tests/{id}/submit [post]
func (h *AttemptHandler) Submit(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	student := h.principal(c)
	if student == nil {
		return
	}

	var req models.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting test", "test_id", id, "answers", len(req.Answers))

	submission, err := h.submissions.Submit(c.Request.Context(), id, &req, student)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}
