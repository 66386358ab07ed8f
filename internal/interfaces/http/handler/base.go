package handler

import (
	"net/http"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/cache"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/logger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/dto"
	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID returns the id assigned by the logging middleware, falling back
// to the inbound header.
func getRequestID(c *gin.Context) string {
	if id := logger.GetRequestID(c.Request.Context()); id != "" {
		return id
	}
	return c.GetHeader(logger.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessPaginated sends a page of results with pagination meta
func SuccessPaginated[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Synced sends the result of a committed mutation. When the customer's views
// could not be refreshed the response still succeeds but carries the stale marker.
func (h *BaseHandler) Synced(c *gin.Context, status int, data any, view cache.SyncResult) {
	if !view.Fresh {
		c.Header(middleware.ViewStaleHeader, "true")
	}
	c.JSON(status, dto.NewSyncedResponse(data, view.Fresh, view.Warning))
}

// Error sends a transport-level error; the status follows from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(dto.ErrorInfo{Code: code, Message: message}, getRequestID(c)))
}

// HandleError converts domain and unexpected errors into HTTP responses.
// Unexpected errors are logged with the request-scoped logger and never echoed.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, info := dto.ErrorFor(err)
	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c, nil).Error("request failed",
			zap.String("code", info.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, dto.NewErrorResponseWithRequestID(info, getRequestID(c)))
}

// BindJSON binds the request body and writes a 400 on failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds query parameters and writes a 400 on failure
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// ParamID parses a uuid path parameter and writes a 400 when it is malformed
func (h *BaseHandler) ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidID, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
