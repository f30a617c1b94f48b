package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"buildtrack/internal/transport/httpdto"
	workflow_errors "buildtrack/pkg/errors"
)

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow_errors.ErrValidation):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "VALIDATION_ERROR"))
	case errors.Is(err, workflow_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "NOT_FOUND"))
	case errors.Is(err, workflow_errors.ErrPermission):
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse(err.Error(), "PERMISSION_DENIED"))
	case errors.Is(err, workflow_errors.ErrConflict):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse(err.Error(), "CONFLICT"))
	case errors.Is(err, workflow_errors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
	}
}
