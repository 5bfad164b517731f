package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/school-assessment-service/internal/services"
	"github.com/SAP-F-2025/school-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	BaseHandler
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(analytics services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler: NewBaseHandler(logger),
		analytics:   analytics,
	}
}

// MyPerformance reports the calling student's own results
// @Router /analytics/students/me [get]
func (h *AnalyticsHandler) MyPerformance(c *gin.Context) {
	caller := h.principal(c)
	if caller == nil {
		return
	}
	h.studentPerformance(c, caller.ID)
}

// StudentPerformance reports one student's results
// @Router /analytics/students/{student_id} [get]
func (h *AnalyticsHandler) StudentPerformance(c *gin.Context) {
	studentID := parseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}
	h.studentPerformance(c, studentID)
}

func (h *AnalyticsHandler) studentPerformance(c *gin.Context, studentID string) {
	caller := h.principal(c)
	if caller == nil {
		return
	}

	report, err := h.analytics.StudentPerformance(c.Request.Context(), studentID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ClassPerformance reports aggregate results for a class
// @Router /analytics/classes/{id} [get]
func (h *AnalyticsHandler) ClassPerformance(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	teacher := h.principal(c)
	if teacher == nil {
		return
	}

	report, err := h.analytics.ClassPerformance(c.Request.Context(), id, teacher)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
