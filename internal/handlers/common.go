package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/school-assessment-service/internal/middleware"
	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/services"
	"github.com/SAP-F-2025/school-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type PublishRequest struct {
	Published bool `json:"published"`
}

type GradeAnswerRequest struct {
	Marks int `json:"marks"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) contextFields(c *gin.Context, extra []interface{}) []interface{} {
	fields := []interface{}{
		"request_id", c.GetString(utils.RequestIDHeader),
		"user_id", c.GetString(middleware.UserIDKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	return append(fields, extra...)
}

// LogRequest logs an incoming call together with its resource identifiers
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Info(message, h.contextFields(c, additionalFields)...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.logger.LogError(err, message, h.contextFields(c, additionalFields)...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Warn(message, h.contextFields(c, additionalFields)...)
}

// principal returns the authenticated caller or writes a 401.
func (h *BaseHandler) principal(c *gin.Context) *models.Principal {
	p := middleware.GetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
			Code:    "unauthorized",
		})
	}
	return p
}

// bindJSON decodes the body into req or writes a 400.
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
			Code:    string(services.KindValidation),
		})
		return false
	}
	return true
}

// RespondWithSuccess sends a consistent success response and logs it
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	h.LogRequest(c, message, "status_code", statusCode)
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps the service error kind onto an HTTP status.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	resp := ErrorResponse{
		Message: err.Error(),
		Code:    string(kind),
	}

	var status int
	switch kind {
	case services.KindValidation:
		status = http.StatusBadRequest
		resp.Message = "Validation failed"
		var validationErrors services.ValidationErrors
		if errors.As(err, &validationErrors) {
			resp.Details = validationErrors
		} else {
			resp.Details = err.Error()
		}
	case services.KindAuthorization:
		status = http.StatusForbidden
		if errors.Is(err, services.ErrAuthenticationMissing) {
			status = http.StatusUnauthorized
		}
		resp.Message = "Access denied"
		var permissionError *services.PermissionError
		if errors.As(err, &permissionError) {
			resp.Details = map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			}
		}
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		resp.Message = "Internal server error"
		h.LogError(c, err, "request failed")
		c.JSON(status, resp)
		return
	}

	h.LogWarn(c, "request rejected", "status_code", status, "kind", kind, "error", err)
	c.JSON(status, resp)
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "school-assessment-service",
	})
}
