package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/availability-api/pkg/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

// ErrorHandler renders the last error attached with c.Error when the handler
// wrote nothing itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only handle errors the handler did not render itself
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// Return last error to client
		appErr := apperrors.As(c.Errors.Last().Err)
		status := appErr.HTTPStatus()
		c.JSON(status, ErrorResponse{
			Status:  "error",
			Code:    int(appErr.Code),
			Message: appErr.Message,
			Errors:  appErr.Details,
			TraceID: c.GetString(ContextRequestID),
		})
	}
}
