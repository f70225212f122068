package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/threadboard/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// serviceError maps a ContentService error onto an HTTP error.
func serviceError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, services.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "Secret key does not match")
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Store unavailable").SetInternal(err)
	}
}
