package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventsadmin/internal/models"
)

const internalErrorMessage = "internal server error"

// writeError maps a service error onto a status code and response body.
// Unexpected errors are attached to the context for ErrorHandler to log and
// are never echoed to the client.
func writeError(c *gin.Context, resource string, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse(validationMessage(err)))
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse(resource+" not found"))
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, models.ErrorResponse(resource+" already exists"))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(internalErrorMessage))
	}
}

// validationMessage drops the sentinel prefix, leaving the field message.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, models.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(models.ErrValidation.Error())+2:]
	}
	return msg
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse(msg))
}
