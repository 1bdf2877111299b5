package postgres

import (
	"testing"
	"time"

	"credsvc/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAccountMappers_RoundTrip(t *testing.T) {
	account := &entity.Account{
		ID:           uuid.New(),
		Email:        "a@b.com",
		Username:     "alice",
		PasswordHash: "$2a$10$digest",
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	accountM := fromAccountDomain(account)
	assert.Equal(t, "accounts", accountM.TableName())
	assert.Equal(t, account, toAccountDomain(accountM))

	assert.Nil(t, toAccountDomain(nil))
	assert.Nil(t, fromAccountDomain(nil))
}
