package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/shared"
	"github.com/RabbirReaper/online-order-system-sub004/internal/interfaces/http/dto"
	"github.com/RabbirReaper/online-order-system-sub004/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getTenantID extracts the tenant from the request. The surrounding
// application authenticates operators upstream and forwards the tenant in a
// trusted header.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	tenantIDStr := c.GetHeader("X-Tenant-ID")
	if tenantIDStr == "" {
		return uuid.Nil, errors.New("tenant ID not found in request")
	}
	return uuid.Parse(tenantIDStr)
}

// parsePlatformCode resolves the :platform path parameter.
func parsePlatformCode(c *gin.Context) (platform.Code, bool) {
	code, ok := platform.ParseCode(c.Param("platform"))
	return code, ok
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := middleware.GetRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// platformErrorCodes maps integration sentinel errors to wire error codes.
// Status codes derive from the wire code via dto.GetHTTPStatus.
var platformErrorCodes = []struct {
	err  error
	code string
}{
	{platform.ErrSignatureMissing, dto.ErrCodeSignatureInvalid},
	{platform.ErrSignatureInvalid, dto.ErrCodeSignatureInvalid},
	{platform.ErrEventMalformed, dto.ErrCodeEventMalformed},
	{platform.ErrUnsupportedEventType, dto.ErrCodeEventMalformed},
	{platform.ErrPlatformNotRegistered, dto.ErrCodeNotFound},
	{platform.ErrCredentialNotFound, dto.ErrCodeNotFound},
	{platform.ErrStoreLinkNotFound, dto.ErrCodeNotFound},
	{platform.ErrLinkAlreadyExists, dto.ErrCodeAlreadyExists},
	{platform.ErrUserTokenAlreadyConsumed, dto.ErrCodeConflict},
	{platform.ErrStoreLinkDisabled, dto.ErrCodeInvalidState},
	{platform.ErrCredentialRevoked, dto.ErrCodeInvalidState},
	{platform.ErrReauthorizationRequired, dto.ErrCodeReauthRequired},
	{platform.ErrTokenRefreshFailed, dto.ErrCodePlatformUpstream},
	{platform.ErrPlatformUnavailable, dto.ErrCodePlatformUpstream},
	{platform.ErrPlatformRateLimited, dto.ErrCodeRateLimited},
	{platform.ErrPlatformRejected, dto.ErrCodePlatformUpstream},
	{platform.ErrInvalidResponse, dto.ErrCodePlatformUpstream},
}

// HandleError converts domain and integration errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	for _, mapping := range platformErrorCodes {
		if errors.Is(err, mapping.err) {
			c.JSON(dto.GetHTTPStatus(mapping.code),
				dto.NewErrorResponseWithRequestID(mapping.code, err.Error(), requestID))
			return
		}
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}
