package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"persona-chat/internal/utils/platformerrors"
)

// AsRepositoryError classifies a gorm error: missing rows become NOT_FOUND, unique violations CONFLICT
// and everything else DATABASE_ERROR.
func AsRepositoryError(ctx context.Context, err error, message string) *platformerrors.PlatformError {
	if err == nil {
		return nil
	}
	var perr *platformerrors.PlatformError
	if errors.As(err, &perr) {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, message)
	}

	errorType := platformerrors.ErrorTypeDatabaseError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		errorType = platformerrors.ErrorTypeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		errorType = platformerrors.ErrorTypeConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		errorType = platformerrors.ErrorTypeUnavailable
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, errorType, message, err, "")
}
