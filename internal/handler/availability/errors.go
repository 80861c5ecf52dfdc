package availability

import (
	"errors"

	"github.com/jwalitptl/availability-api/internal/repository"
	"github.com/jwalitptl/availability-api/internal/service/availability"
	apperrors "github.com/jwalitptl/availability-api/pkg/errors"
)

// toAppError maps service failures onto response codes.
func toAppError(err error) *apperrors.AppError {
	var (
		verr    *availability.ValidationError
		confirm *availability.ConfirmationRequiredError
		storeE  *availability.StoreError
		appErr  *apperrors.AppError
	)

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &verr):
		return apperrors.NewValidation(verr.Messages)
	case errors.As(err, &confirm):
		e := apperrors.NewConflict(confirm.Error(), err)
		e.Details = map[string]interface{}{"count": confirm.Count, "confirmation_required": true}
		return e
	case errors.Is(err, repository.ErrSlotNotFound):
		return apperrors.NewNotFound("slot", err)
	case errors.Is(err, availability.ErrSessionNotFound):
		return apperrors.NewNotFound("session", err)
	case errors.Is(err, availability.ErrNothingSelected):
		return apperrors.NewBadRequest(err.Error(), err)
	case errors.Is(err, availability.ErrUnsupportedFormat):
		return apperrors.NewBadRequest(err.Error(), err)
	case errors.Is(err, availability.ErrSaveInProgress), errors.Is(err, availability.ErrNoOpenForm):
		return apperrors.NewConflict(err.Error(), err)
	case errors.As(err, &storeE):
		return apperrors.NewUpstream(storeE.Error(), err)
	default:
		return apperrors.NewInternal(err)
	}
}
