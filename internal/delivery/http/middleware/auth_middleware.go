package middleware

import (
	"strings"

	deliverycontext "credsvc/internal/delivery/context"
	"credsvc/internal/delivery/http/response"
	domainerrors "credsvc/internal/domain/errors"
	"credsvc/internal/errors"
	"credsvc/internal/usecase"

	"github.com/labstack/echo/v4"
)

const invalidTokenMessage = "Invalid token"

// AuthMiddleware authenticates requests carrying a bearer token.
type AuthMiddleware struct {
	uc usecase.CredentialUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(uc usecase.CredentialUsecase) *AuthMiddleware {
	return &AuthMiddleware{uc: uc}
}

// Authenticate verifies the Authorization bearer token and stores its account id.
// Every failure renders the same 401 body.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return response.Fail(errors.WithStack(domainerrors.ErrInvalidToken), invalidTokenMessage)
		}

		accountID, err := m.uc.VerifyToken(c.Request().Context(), strings.TrimSpace(token))
		if err != nil {
			return response.Fail(err, invalidTokenMessage)
		}

		deliverycontext.SetAccountID(c, accountID)

		return next(c)
	}
}
