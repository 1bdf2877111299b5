package errors

import (
	"net/http"
	"testing"

	"credsvc/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestHTTPCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: ErrValidationFailed.WrapMessage("username missing"), want: http.StatusBadRequest},
		{name: "conflict", err: errors.Wrap(ErrAccountConflict, "register"), want: http.StatusConflict},
		{name: "credentials", err: ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "token", err: ErrInvalidToken.WrapMessage("bad signature"), want: http.StatusUnauthorized},
		{name: "infrastructure", err: NewInfrastructureError(errors.New("dial tcp"), "find"), want: http.StatusInternalServerError},
		{name: "plain", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPCodeOf(tt.err))
		})
	}
}

func TestInfrastructureError_KeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("connection refused: host=db password=hunter2")
	err := errors.Wrap(NewInfrastructureError(cause, "find account"), "login")

	assert.True(t, IsInfrastructure(err))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrInvalidCredentials))

	var appErr AppError
	assert.True(t, errors.As(err, &appErr))
	assert.NotContains(t, appErr.Message(), "hunter2")
	assert.Equal(t, "INFRASTRUCTURE_ERROR", appErr.ErrorCode())
}
