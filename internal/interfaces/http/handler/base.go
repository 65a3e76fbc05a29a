package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/erp/reportengine/internal/domain/shared"
	"github.com/erp/reportengine/internal/infrastructure/logger"
	"github.com/erp/reportengine/internal/interfaces/http/dto"
	"github.com/erp/reportengine/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleDomainError converts domain errors to HTTP responses. Domain errors
// keep their full wrapped message; anything else is logged and hidden behind
// a generic 500.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, err.Error())
		return
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Report computation did not finish in time")
		return
	}

	logger.L(c.Request.Context()).Error("Report request failed", zap.Error(err))
	h.InternalError(c, "An internal error occurred")
}
