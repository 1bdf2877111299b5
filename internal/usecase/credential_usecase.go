// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// LoginInput defines the data required for an account to log in.
type LoginInput struct {
	Username string
	Password string
}

// --- Output DTOs ---

// LoginOutput returns the bearer token issued after a successful login.
type LoginOutput struct {
	Token string
}

// AccountSummary is the public view of an account. It never carries the digest.
type AccountSummary struct {
	ID        uuid.UUID
	Email     string
	Username  string
	CreatedAt time.Time
}

// CredentialUsecase defines the interface for credential-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type CredentialUsecase interface {
	// Register hashes the password and stores a new account.
	Register(ctx context.Context, input *RegisterInput) error

	// Login verifies credentials and issues a token. Unknown usernames and wrong
	// passwords fail with the same error.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// ListAccounts returns every stored account without password digests.
	ListAccounts(ctx context.Context) ([]*AccountSummary, error)

	// VerifyToken returns the account id embedded in a valid token.
	VerifyToken(ctx context.Context, token string) (uuid.UUID, error)
}
