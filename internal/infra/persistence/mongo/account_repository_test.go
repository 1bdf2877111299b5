package mongo

import (
	"testing"
	"time"

	"credsvc/internal/domain/entity"
	domainerrors "credsvc/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAccountDocument_RoundTrip(t *testing.T) {
	account := &entity.Account{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        "a@b.com",
		Username:     "alice",
		PasswordHash: "$2a$10$digest",
		CreatedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	raw, err := bson.Marshal(fromAccountDomain(account))
	require.NoError(t, err)

	var stored bson.M
	require.NoError(t, bson.Unmarshal(raw, &stored))
	assert.Equal(t, account.ID.String(), stored["_id"])
	assert.Equal(t, "$2a$10$digest", stored["password"])
	assert.NotContains(t, stored, "passwordHash")

	var doc accountDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	back, err := toAccountDomain(&doc)
	require.NoError(t, err)
	assert.Equal(t, account, back)
}

func TestToAccountDomain_InvalidID(t *testing.T) {
	_, err := toAccountDomain(&accountDocument{ID: "not-a-uuid"})

	require.Error(t, err)
	assert.True(t, domainerrors.IsInfrastructure(err))
}

func TestToAccountDomain_UnsupportedIDType(t *testing.T) {
	_, err := toAccountDomain(&accountDocument{ID: int32(7)})

	require.Error(t, err)
	assert.True(t, domainerrors.IsInfrastructure(err))
}

func TestToAccountDomain_ObjectIDDocument(t *testing.T) {
	oid := primitive.NewObjectIDFromTimestamp(time.Date(2023, 3, 4, 5, 6, 7, 0, time.UTC))

	raw, err := bson.Marshal(bson.M{
		"_id":      oid,
		"email":    "old@b.com",
		"username": "legacy",
		"password": "$2a$10$digest",
		"__v":      0,
	})
	require.NoError(t, err)

	var doc accountDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	account, err := toAccountDomain(&doc)
	require.NoError(t, err)
	assert.Equal(t, "legacy", account.Username)
	assert.Equal(t, "$2a$10$digest", account.PasswordHash)
	assert.Equal(t, time.Date(2023, 3, 4, 5, 6, 7, 0, time.UTC), account.CreatedAt)
	assert.NotEqual(t, uuid.Nil, account.ID)

	again, err := toAccountDomain(&doc)
	require.NoError(t, err)
	assert.Equal(t, account.ID, again.ID)

	other, err := toAccountDomain(&accountDocument{ID: primitive.NewObjectID()})
	require.NoError(t, err)
	assert.NotEqual(t, account.ID, other.ID)
}

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{name: "explicit database", uri: "mongodb://localhost:27017/accounts", want: "accounts"},
		{name: "with options", uri: "mongodb://localhost:27017/accounts?retryWrites=true", want: "accounts"},
		{name: "no path", uri: "mongodb://localhost:27017", want: defaultDatabase},
		{name: "bare slash", uri: "mongodb+srv://cluster.example.net/", want: defaultDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := databaseName(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUsernameIndex_IsUnique(t *testing.T) {
	index := usernameIndex()

	assert.Equal(t, bson.D{{Key: "username", Value: 1}}, index.Keys)
	require.NotNil(t, index.Options.Unique)
	assert.True(t, *index.Options.Unique)
	assert.Nil(t, index.Options.Name, "server default name username_1 keeps CreateOne idempotent")
}
