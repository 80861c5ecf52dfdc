package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_HTTPStatus(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, http.StatusNotFound, NewNotFound("slot", cause).HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, NewBadRequest("bad", nil).HTTPStatus())
	assert.Equal(t, http.StatusUnprocessableEntity, NewValidation([]string{"x"}).HTTPStatus())
	assert.Equal(t, http.StatusConflict, NewConflict("busy", nil).HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, NewUpstream("store", cause).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, NewInternal(cause).HTTPStatus())
}

func TestAs(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("outer: %w", NewNotFound("slot", cause))

	appErr := As(wrapped)
	assert.Equal(t, ErrNotFound, appErr.Code)
	assert.Equal(t, "slot not found: boom", appErr.Error())
	assert.ErrorIs(t, appErr, cause)

	plain := As(cause)
	assert.Equal(t, ErrInternal, plain.Code)
	assert.Equal(t, "internal server error", plain.Message)
}
