// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"
	"time"

	deliverycontext "credsvc/internal/delivery/context"
	"credsvc/internal/delivery/http/response"
	domainerrors "credsvc/internal/domain/errors"
	"credsvc/internal/errors"
	"credsvc/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	registeredMessage  = "User created successfully"
	invalidCredentials = "Invalid credentials"
	listErrorMessage   = "Unable to get users"

	// RegisterErrorMessage is the only failure body POST /register renders.
	RegisterErrorMessage = "Error in registration"
	// LoginErrorMessage covers POST /login failures other than bad credentials.
	LoginErrorMessage = "Error logging in"
)

// RegisterRequest is the POST /register body.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

// LoginRequest is the POST /login body. Missing fields fail as invalid credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountResponse is one GET /users element.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// MeResponse identifies the bearer of a token.
type MeResponse struct {
	AccountID string `json:"accountId"`
}

// CredentialHandler holds dependencies for credential-related handlers.
type CredentialHandler struct {
	uc usecase.CredentialUsecase
}

// NewCredentialHandler is the constructor for CredentialHandler, injected by Fx.
func NewCredentialHandler(uc usecase.CredentialUsecase) *CredentialHandler {
	return &CredentialHandler{uc: uc}
}

// Register handles POST /register.
func (h *CredentialHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(domainerrors.ErrValidationFailed.WrapMessage(err.Error()), RegisterErrorMessage)
	}
	if err := c.Validate(&req); err != nil {
		return response.Fail(err, RegisterErrorMessage)
	}

	err := h.uc.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return response.Fail(err, RegisterErrorMessage)
	}

	return response.Message(c, http.StatusCreated, registeredMessage)
}

// Login handles POST /login.
func (h *CredentialHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(domainerrors.ErrValidationFailed.WrapMessage(err.Error()), LoginErrorMessage)
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidCredentials) {
			return response.Fail(err, invalidCredentials)
		}

		return response.Fail(err, LoginErrorMessage)
	}

	return response.JSON(c, http.StatusOK, response.TokenBody{Token: output.Token})
}

// ListUsers handles GET /users. Digests are never part of the response.
func (h *CredentialHandler) ListUsers(c echo.Context) error {
	accounts, err := h.uc.ListAccounts(c.Request().Context())
	if err != nil {
		return response.Fail(err, listErrorMessage)
	}

	body := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		body = append(body, AccountResponse{
			ID:        account.ID.String(),
			Email:     account.Email,
			Username:  account.Username,
			CreatedAt: account.CreatedAt,
		})
	}

	return response.JSON(c, http.StatusOK, body)
}

// Me handles GET /me behind the auth middleware.
func (h *CredentialHandler) Me(c echo.Context) error {
	accountID, ok := deliverycontext.GetAccountID(c)
	if !ok {
		return response.Fail(errors.WithStack(domainerrors.ErrInvalidToken), "Invalid token")
	}

	return response.JSON(c, http.StatusOK, MeResponse{AccountID: accountID.String()})
}
