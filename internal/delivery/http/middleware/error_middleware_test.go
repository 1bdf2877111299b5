package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"credsvc/internal/delivery/http/response"
	domainerrors "credsvc/internal/domain/errors"
	"credsvc/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestErrorMiddleware_HandleHTTPError(t *testing.T) {
	dbDown := domainerrors.NewInfrastructureError(errors.New("dial tcp 10.0.0.1:5432: connection refused"), "insert account")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "public message with conflict status",
			err:        response.Fail(domainerrors.ErrAccountConflict.WrapMessage("username already registered"), "Error in registration"),
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"Error in registration"}`,
		},
		{
			name:       "public message hides infrastructure cause",
			err:        response.Fail(dbDown, "Error logging in"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Error logging in"}`,
		},
		{
			name:       "public message keeps echo status",
			err:        response.Fail(echo.ErrStatusRequestEntityTooLarge, "Error in registration"),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantBody:   `{"error":"Error in registration"}`,
		},
		{
			name:       "bare app error",
			err:        errors.WithStack(domainerrors.ErrInvalidToken),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Invalid token"}`,
		},
		{
			name:       "echo http error",
			err:        echo.ErrMethodNotAllowed,
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   `{"error":"Method Not Allowed"}`,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			m := NewErrorMiddleware(slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)

			m.HandleHTTPError(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestErrorMiddleware_LogsServerErrorCause(t *testing.T) {
	var logs bytes.Buffer
	m := NewErrorMiddleware(slog.New(slog.NewJSONHandler(&logs, nil)))

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users", nil), httptest.NewRecorder())

	m.HandleHTTPError(response.Fail(errors.New("connection refused"), "Unable to get users"), c)

	assert.Contains(t, logs.String(), "connection refused")
	assert.Contains(t, logs.String(), `"status":500`)
}

func TestErrorMiddleware_SkipsCommittedResponse(t *testing.T) {
	m := NewErrorMiddleware(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	assert.NoError(t, c.String(http.StatusOK, "Hello"))

	m.HandleHTTPError(errors.New("late failure"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello", rec.Body.String())
}
