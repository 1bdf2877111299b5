// Package response holds the JSON bodies written by the HTTP handlers.
package response

import (
	"github.com/labstack/echo/v4"
)

// MessageBody is the success body of write endpoints.
type MessageBody struct {
	Message string `json:"message"`
}

// ErrorBody is the only error shape clients ever see.
type ErrorBody struct {
	Error string `json:"error"`
}

// TokenBody carries a freshly issued bearer token.
type TokenBody struct {
	Token string `json:"token"`
}

// JSON writes data with the given status.
func JSON(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, data)
}

// Message writes a {"message": ...} body.
func Message(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, MessageBody{Message: message})
}

// PublicError pairs an internal error with the message an endpoint shows for it.
// The status still comes from the AppError in the chain.
type PublicError struct {
	err     error
	message string
}

// Fail attaches the endpoint's public message to err for the error handler.
func Fail(err error, publicMessage string) error {
	return &PublicError{err: err, message: publicMessage}
}

func (e *PublicError) Error() string {
	if e.err == nil {
		return e.message
	}

	return e.message + ": " + e.err.Error()
}

// Unwrap returns the internal cause.
func (e *PublicError) Unwrap() error {
	return e.err
}

// PublicMessage is the text rendered to the client.
func (e *PublicError) PublicMessage() string {
	return e.message
}
