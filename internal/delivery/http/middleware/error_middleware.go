package middleware

import (
	"log/slog"
	"net/http"

	deliverycontext "credsvc/internal/delivery/context"
	"credsvc/internal/delivery/http/response"
	domainerrors "credsvc/internal/domain/errors"
	"credsvc/internal/errors"

	"github.com/labstack/echo/v4"
)

const internalErrorMessage = "Internal server error"

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError renders {"error": message} as Echo's HTTPErrorHandler.
// Causes are logged, never rendered.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := m.resolve(err)

	logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			slog.Int("status", status),
			slog.String("path", c.Request().URL.Path),
			slog.String("method", c.Request().Method),
			slog.Any("error", err),
		)
	} else {
		logger.Debug("Request rejected",
			slog.Int("status", status),
			slog.String("path", c.Request().URL.Path),
			slog.Any("error", err),
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, response.ErrorBody{Error: message})
	}
	if writeErr != nil {
		logger.Error("Failed to write error response", slog.Any("error", writeErr))
	}
}

func (m *ErrorMiddleware) resolve(err error) (int, string) {
	var publicErr *response.PublicError
	if errors.As(err, &publicErr) {
		return statusOf(err), publicErr.PublicMessage()
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if message, ok := httpErr.Message.(string); ok {
			return httpErr.Code, message
		}

		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode(), appErr.Message()
	}

	return http.StatusInternalServerError, internalErrorMessage
}

// statusOf prefers the AppError status, then an echo.HTTPError status such as 413.
func statusOf(err error) int {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode()
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return http.StatusInternalServerError
}
