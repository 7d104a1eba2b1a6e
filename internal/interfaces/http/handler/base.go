package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/application/reconciliation"
	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps an error to a response. Domain errors carry their own
// code; a few infrastructure sentinels are mapped explicitly; anything else
// is a 500 whose detail only goes to the log.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
	case errors.Is(err, channel.ErrInvalidChannel):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidChannel, err.Error())
	case errors.Is(err, reconciliation.ErrCatalogUnavailable):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Local catalog is unavailable")
	case errors.Is(err, scheduler.ErrShutdown):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Service is shutting down")
	default:
		logger.FromContext(c.Request.Context()).Error("Request failed", zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
	}
	_ = c.Error(err)
}
