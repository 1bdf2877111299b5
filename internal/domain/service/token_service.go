package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims for issued tokens.
type Claims struct {
	AccountID string `json:"accountId"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and verifying bearer tokens.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Issue creates a signed token embedding the account ID.
	Issue(accountID uuid.UUID) (string, error)

	// Verify checks the signature and algorithm of a token and returns the embedded account ID.
	Verify(tokenString string) (uuid.UUID, error)
}
