package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"credsvc/internal/domain/entity"
	"credsvc/internal/domain/repository"
	"credsvc/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateAndFind(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	account := &entity.Account{Email: "a@b.com", Username: "alice", PasswordHash: "$2a$04$digest"}
	require.NoError(t, repo.Create(ctx, account))
	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.False(t, account.CreatedAt.IsZero())

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, account, found)

	// Mutating the returned copy does not reach the store.
	found.PasswordHash = "changed"
	again, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "$2a$04$digest", again.PasswordHash)
}

func TestAccountRepository_NotFound(t *testing.T) {
	repo := NewAccountRepository()

	found, err := repo.FindByUsername(context.Background(), "bob")
	assert.Nil(t, found)
	assert.True(t, errors.Is(err, repository.ErrAccountNotFound))
}

func TestAccountRepository_DuplicateUsername(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Account{Email: "a@b.com", Username: "alice", PasswordHash: "h1"}))

	err := repo.Create(ctx, &entity.Account{Email: "other@b.com", Username: "alice", PasswordHash: "h2"})
	assert.True(t, errors.Is(err, repository.ErrDuplicateKey))

	accounts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "a@b.com", accounts[0].Email)
}

func TestAccountRepository_ConcurrentCreateIsAtomic(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	var created atomic.Int32
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &entity.Account{Email: fmt.Sprintf("%d@b.com", i), Username: "alice", PasswordHash: "h"})
			if err == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
}

func TestAccountRepository_ListKeepsCreationOrder(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, repo.Create(ctx, &entity.Account{Email: name + "@b.com", Username: name, PasswordHash: "h"}))
	}

	accounts, err := repo.List(ctx)
	require.NoError(t, err)

	var names []string
	for _, account := range accounts {
		names = append(names, account.Username)
	}
	assert.Equal(t, []string{"carol", "alice", "bob"}, names)
}

func TestAccountRepository_CanceledContext(t *testing.T) {
	repo := NewAccountRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.Create(ctx, &entity.Account{Username: "alice"}), context.Canceled)

	_, err := repo.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}
