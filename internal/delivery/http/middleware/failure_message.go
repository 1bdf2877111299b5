package middleware

import (
	"credsvc/internal/delivery/http/response"
	"credsvc/internal/errors"

	"github.com/labstack/echo/v4"
)

// FailureMessage gives every error raised on a route the route's public message,
// including errors from route middleware that runs before the handler.
func FailureMessage(message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var publicErr *response.PublicError
			if errors.As(err, &publicErr) {
				return err
			}

			return response.Fail(err, message)
		}
	}
}
