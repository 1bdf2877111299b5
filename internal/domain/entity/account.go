// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered set of credentials.
// It is created once by registration and never mutated afterwards.
type Account struct {
	ID           uuid.UUID // Assigned by the store on creation.
	Email        string    // Contact email, stored as given.
	Username     string    // Login identifier, unique across all accounts.
	PasswordHash string    // Self-describing digest produced by the PasswordHasher. Never the plaintext.
	CreatedAt    time.Time // Timestamp of when the account was created.
}
