package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/school-assessment-service/internal/services"
	"github.com/SAP-F-2025/school-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// DirectoryHandler exposes the read-only school directory used by the
// authoring forms.
type DirectoryHandler struct {
	BaseHandler
	directory services.DirectoryService
}

func NewDirectoryHandler(directory services.DirectoryService, logger utils.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		BaseHandler: NewBaseHandler(logger),
		directory:   directory,
	}
}

func (h *DirectoryHandler) GetClass(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	class, err := h.directory.ResolveClass(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

func (h *DirectoryHandler) ListSubjectsForGrade(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	subjects, err := h.directory.ResolveSubjectsForGrade(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (h *DirectoryHandler) ListExamTypes(c *gin.Context) {
	examTypes, err := h.directory.ResolveExamTypes(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exam_types": examTypes})
}

// InvalidateCache drops cached reference data after it changed upstream
// @Router /directory/cache [delete]
func (h *DirectoryHandler) InvalidateCache(c *gin.Context) {
	caller := h.principal(c)
	if caller == nil {
		return
	}

	if err := h.directory.InvalidateCache(c.Request.Context(), caller); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Directory cache invalidated", nil)
}
