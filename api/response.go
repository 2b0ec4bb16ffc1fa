package api

import (
	"net/http"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/gin-gonic/gin"
)

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// writeError is the single place handlers turn an error into a response.
// Internal causes are logged and never sent to the client.
func writeError(c *gin.Context, err error) {
	appErr := apperr.As(err)
	status := appErr.StatusCode()

	message := appErr.Message
	if status >= http.StatusInternalServerError {
		requestLogger(c).WithError(appErr.Err).WithField("kind", appErr.Kind).Error(appErr.Message)
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, envelope{
		Success: false,
		Message: message,
		Errors:  appErr.Fields,
	})
}
