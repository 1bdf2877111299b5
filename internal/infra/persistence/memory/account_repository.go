// Package memory provides a process-local credential store.
package memory

import (
	"context"
	"sync"
	"time"

	"credsvc/internal/domain/entity"
	"credsvc/internal/domain/repository"
	"credsvc/internal/errors"

	"github.com/google/uuid"
)

// accountRepository keeps accounts in maps guarded by a single mutex.
// Create checks and inserts under the same lock, which makes it an atomic create-or-conflict.
type accountRepository struct {
	mu         sync.RWMutex
	byUsername map[string]*entity.Account
	order      []uuid.UUID
	byID       map[uuid.UUID]*entity.Account
	now        func() time.Time
}

// NewAccountRepository returns an empty in-memory store.
func NewAccountRepository() repository.AccountRepository {
	return &accountRepository{
		byUsername: make(map[string]*entity.Account),
		byID:       make(map[uuid.UUID]*entity.Account),
		now:        time.Now,
	}
}

// Create assigns an ID and stores a copy of the account.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return errors.Wrap(err, "failed to generate account id")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, exists := repo.byUsername[account.Username]; exists {
		return repository.ErrDuplicateKey
	}

	account.ID = id
	account.CreatedAt = repo.now().UTC()

	stored := *account
	repo.byUsername[stored.Username] = &stored
	repo.byID[stored.ID] = &stored
	repo.order = append(repo.order, stored.ID)

	return nil
}

// FindByUsername returns a copy of the matching account.
func (repo *accountRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	stored, ok := repo.byUsername[username]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	found := *stored

	return &found, nil
}

// List returns copies of all accounts in creation order.
func (repo *accountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	accounts := make([]*entity.Account, 0, len(repo.order))
	for _, id := range repo.order {
		account := *repo.byID[id]
		accounts = append(accounts, &account)
	}

	return accounts, nil
}
