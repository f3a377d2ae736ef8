package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type requestIDKey struct{}

// WithRequestID stores the request id so errors created further down the call chain can carry it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext extracts the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeValidation     ErrorType = "VALIDATION"
	ErrorTypeConflict       ErrorType = "CONFLICT"
	ErrorTypeUnauthorized   ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden      ErrorType = "FORBIDDEN"
	ErrorTypeRateLimited    ErrorType = "RATE_LIMITED"
	ErrorTypeUnavailable    ErrorType = "UNAVAILABLE"
	ErrorTypeInternal       ErrorType = "INTERNAL"
	ErrorTypeExternal       ErrorType = "EXTERNAL"
	ErrorTypeDatabaseError  ErrorType = "DATABASE_ERROR"
	ErrorTypeNotImplemented ErrorType = "NOT_IMPLEMENTED"
)

// Layer represents the application layer where the error occurred
type Layer string

const (
	LayerRepository     Layer = "repository"
	LayerDomain         Layer = "domain"
	LayerHandler        Layer = "handler"
	LayerRoute          Layer = "route"
	LayerInfrastructure Layer = "infrastructure"
	LayerClient         Layer = "client"
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PlatformError represents an error with context and metadata
type PlatformError struct {
	UUID      string
	Type      ErrorType
	Message   string
	Err       error
	Context   map[string]any
	Fields    []FieldError
	RequestID string
	Layer     Layer
	Timestamp time.Time
}

// Error implements the error interface
func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s][%s] %s: %v", e.Layer, e.Type, e.UUID, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s][%s] %s", e.Layer, e.Type, e.UUID, e.Message)
}

// Unwrap returns the underlying error
func (e *PlatformError) Unwrap() error {
	return e.Err
}

func (e *PlatformError) GetErrorType() ErrorType {
	return e.Type
}

func (e *PlatformError) GetRequestID() string {
	return e.RequestID
}

func (e *PlatformError) GetUUID() string {
	return e.UUID
}

// WithFields attaches field-level validation detail and returns the same error.
func (e *PlatformError) WithFields(fields ...FieldError) *PlatformError {
	e.Fields = append(e.Fields, fields...)
	return e
}

// NewError creates a new PlatformError with the specified parameters
func NewError(ctx context.Context, layer Layer, errorType ErrorType, message string, err error, customUUID string) *PlatformError {
	return NewErrorWithContext(ctx, layer, errorType, message, err, customUUID, nil)
}

// NewErrorWithContext creates a new PlatformError with additional context fields
func NewErrorWithContext(ctx context.Context, layer Layer, errorType ErrorType, message string, err error, customUUID string, contextFields map[string]any) *PlatformError {
	// call sites pass a fixed uuid so a logged error can be traced back to its origin
	errorUUID := customUUID
	if errorUUID == "" {
		errorUUID = uuid.NewString()
	}

	errorContext := make(map[string]any, len(contextFields))
	for k, v := range contextFields {
		errorContext[k] = v
	}

	return &PlatformError{
		UUID:      errorUUID,
		Type:      errorType,
		Message:   message,
		Err:       err,
		RequestID: RequestIDFromContext(ctx),
		Layer:     layer,
		Timestamp: time.Now().UTC(),
		Context:   errorContext,
	}
}

// AsError wraps an error with layer context, keeping the original type and tracking uuid.
func AsError(ctx context.Context, layer Layer, err error, message string) *PlatformError {
	if err == nil {
		return nil
	}

	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		wrapped := NewErrorWithContext(ctx, layer, platformErr.Type, fmt.Sprintf("%s: %s", message, platformErr.Message), platformErr, platformErr.UUID, platformErr.Context)
		wrapped.Fields = platformErr.Fields
		return wrapped
	}

	return NewError(ctx, layer, ErrorTypeInternal, message, err, "")
}

var httpStatusByType = map[ErrorType]int{
	ErrorTypeNotFound:       http.StatusNotFound,
	ErrorTypeValidation:     http.StatusBadRequest,
	ErrorTypeConflict:       http.StatusConflict,
	ErrorTypeUnauthorized:   http.StatusUnauthorized,
	ErrorTypeForbidden:      http.StatusForbidden,
	ErrorTypeRateLimited:    http.StatusTooManyRequests,
	ErrorTypeUnavailable:    http.StatusServiceUnavailable,
	ErrorTypeExternal:       http.StatusBadGateway,
	ErrorTypeDatabaseError:  http.StatusInternalServerError,
	ErrorTypeInternal:       http.StatusInternalServerError,
	ErrorTypeNotImplemented: http.StatusNotImplemented,
}

// ErrorTypeToHTTPStatus maps error types to HTTP status codes; unknown types are 500.
func ErrorTypeToHTTPStatus(errorType ErrorType) int {
	if status, ok := httpStatusByType[errorType]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsErrorType reports whether err wraps a PlatformError of errorType.
func IsErrorType(err error, errorType ErrorType) bool {
	var platformErr *PlatformError
	return errors.As(err, &platformErr) && platformErr.Type == errorType
}

// TypeOf returns the error type of err, INTERNAL for foreign errors.
func TypeOf(err error) ErrorType {
	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return platformErr.Type
	}
	return ErrorTypeInternal
}

// LogError logs a platform error with proper structure
func LogError(logger zerolog.Logger, err *PlatformError) {
	if err == nil {
		return
	}

	event := logger.Error().
		Str("error_uuid", err.UUID).
		Str("error_type", string(err.Type)).
		Str("layer", string(err.Layer)).
		Time("timestamp_utc", err.Timestamp)

	if err.RequestID != "" {
		event = event.Str("request_id", err.RequestID)
	}

	for k, v := range err.Context {
		event = event.Interface(k, v)
	}

	if err.Err != nil {
		event = event.Err(err.Err)
	}

	event.Msg(err.Message)
}
