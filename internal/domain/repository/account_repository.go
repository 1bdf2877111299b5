// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"credsvc/internal/domain/entity"
)

// Domain-specific errors for account persistence.
// Adapters translate their driver errors into these so the use case never sees a driver type.
var (
	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateKey is returned when a create collides with an existing username.
	ErrDuplicateKey = errors.New("duplicate key")
)

// AccountRepository is the Credential Store.
// Implementations must enforce username uniqueness atomically within Create.
type AccountRepository interface {
	// Create assigns a fresh ID and persists the account, or returns ErrDuplicateKey.
	Create(ctx context.Context, account *entity.Account) error

	// FindByUsername returns the matching account or ErrAccountNotFound.
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)

	// List returns every stored account.
	List(ctx context.Context) ([]*entity.Account, error)
}
