package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"persona-chat/internal/domain/usage"
	"persona-chat/internal/infrastructure/logger"
	"persona-chat/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details
type ErrorResponse struct {
	Code          string                      `json:"code"` // UUID from PlatformError
	Error         string                      `json:"error"`
	Message       string                      `json:"message,omitempty"`
	Details       []platformerrors.FieldError `json:"details,omitempty"`
	ErrorInstance error                       `json:"-"`
	RequestID     string                      `json:"request_id,omitempty"`
}

// QuotaExceededResponse is the body of a turn refused because the daily quota is spent.
type QuotaExceededResponse struct {
	Error        string `json:"error"`
	MessageCount int64  `json:"message_count"`
	DailyLimit   int64  `json:"daily_limit"`
	Remaining    int64  `json:"remaining"`
}

const quotaExceededMessage = "Daily message limit reached"

// HandleError handles domain errors and returns appropriate HTTP responses
func HandleError(reqCtx *gin.Context, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		if quota, ok := usage.QuotaFromError(err); ok {
			HandleQuotaExceeded(reqCtx, err, quota)
			return
		}
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())
		if statusCode >= http.StatusInternalServerError {
			platformerrors.LogError(logger.GetLogger(), domainErr)
		}
		reqCtx.AbortWithStatusJSON(statusCode, newErrorResponse(domainErr, message))
		return
	}
	// Non-platform errors
	errResp := ErrorResponse{
		Error:         message,
		Message:       message,
		ErrorInstance: err,
		RequestID:     platformerrors.RequestIDFromContext(reqCtx.Request.Context()),
	}
	_ = reqCtx.Error(err)
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
}

// HandleErrorWithStatus handles domain errors with a custom status code
func HandleErrorWithStatus(reqCtx *gin.Context, statusCode int, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		reqCtx.AbortWithStatusJSON(statusCode, newErrorResponse(domainErr, message))
		return
	}
	_ = reqCtx.Error(err)
	reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:         message,
		Message:       message,
		ErrorInstance: err,
		RequestID:     platformerrors.RequestIDFromContext(reqCtx.Request.Context()),
	})
}

// HandleNewError creates a new typed error at the route layer and handles it.
// The uuid parameter should be provided from the route for error tracking.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerRoute, errorType, message, nil, uuid)
	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(errorType), newErrorResponse(err, message))
}

// HandleQuotaExceeded writes the 429 body clients use to render the exhausted quota.
func HandleQuotaExceeded(reqCtx *gin.Context, err error, quota usage.Snapshot) {
	if err != nil {
		_ = reqCtx.Error(err)
	}
	reqCtx.AbortWithStatusJSON(http.StatusTooManyRequests, QuotaExceededResponse{
		Error:        quotaExceededMessage,
		MessageCount: quota.MessageCount,
		DailyLimit:   quota.DailyLimit,
		Remaining:    0,
	})
}

func newErrorResponse(domainErr *platformerrors.PlatformError, message string) ErrorResponse {
	errorMessage := message
	if errorMessage == "" {
		errorMessage = domainErr.Message
	}
	requestID := domainErr.GetRequestID()
	return ErrorResponse{
		Code:          domainErr.GetUUID(),
		Error:         errorMessage,
		Message:       domainErr.Message,
		Details:       domainErr.Fields,
		ErrorInstance: domainErr,
		RequestID:     requestID,
	}
}

type GeneralResponse[T any] struct {
	Status string `json:"status"`
	Result T      `json:"result"`
}

type ListResponse[T any] struct {
	Object  string `json:"object"`
	Data    []T    `json:"data"`
	Total   int64  `json:"total"`
	HasMore bool   `json:"has_more"`
}

// DeletedResponse confirms the removal of a resource.
type DeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}
