package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/services"
	"github.com/SAP-F-2025/school-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type GradingHandler struct {
	BaseHandler
	gradingService services.GradingService
}

func NewGradingHandler(gradingService services.GradingService, logger utils.Logger) *GradingHandler {
	return &GradingHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
	}
}

// GetSubmission returns every question of the test paired with the answer given
// @Router /submissions/{id} [get]
func (h *GradingHandler) GetSubmission(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	view, err := h.gradingService.GetSubmissionForGrading(c.Request.Context(), id, teacher)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GradeAnswer awards marks for one question without finalizing
// @Router /submissions/{id}/answers/{question_id} [put]
func (h *GradingHandler) GradeAnswer(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	var req GradeAnswerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Grading answer", "submission_id", id, "question_id", questionID, "marks", req.Marks)

	if err := h.gradingService.GradeAnswer(c.Request.Context(), id, questionID, req.Marks, teacher); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Answer graded", gin.H{
		"submission_id": id,
		"question_id":   questionID,
		"marks_awarded": req.Marks,
	})
}

// FinalizeGrading totals the awarded marks and marks the submission graded
// @Router /submissions/{id}/finalize [post]
func (h *GradingHandler) FinalizeGrading(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	h.LogRequest(c, "Finalizing grading", "submission_id", id)

	summary, err := h.gradingService.FinalizeGrading(c.Request.Context(), id, teacher)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GradeSubmission applies a batch of grades and finalizes in one step
// @Router /submissions/{id}/grade [post]
func (h *GradingHandler) GradeSubmission(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	var req models.GradeSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Grading submission", "submission_id", id, "grades", len(req.Grades))

	summary, err := h.gradingService.GradeSubmission(c.Request.Context(), id, &req, teacher)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
