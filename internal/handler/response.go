package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/availability-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Success writes data wrapped in the success envelope.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, NewSuccessResponse(data))
}

// Fail hands err to the error middleware and stops the chain.
func Fail(c *gin.Context, err *apperrors.AppError) {
	_ = c.Error(err)
	c.Abort()
}
