package rest

import (
	"errors"
	"net/http"

	"spiceMarket/domain"
	"spiceMarket/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// statusFor maps a domain error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// writeError renders a service error. Server-side failures are logged with
// their detail and answered with a generic message.
func writeError(c echo.Context, err error, action string) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(action, err, "path", c.Request().URL.Path)
		return c.JSON(status, ResponseError{Message: "internal server error"})
	}

	logger.Warn(action, err, "status", status)
	return c.JSON(status, ResponseError{Message: err.Error()})
}

func badRequest(c echo.Context, err error, action string) error {
	logger.Error(action, err)
	return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
}
