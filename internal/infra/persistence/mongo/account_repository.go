package mongo

import (
	"context"
	"time"

	"credsvc/internal/domain/entity"
	domainerrors "credsvc/internal/domain/errors"
	"credsvc/internal/domain/repository"
	"credsvc/internal/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// legacyIDNamespace scopes the name-based ids derived from ObjectID keys.
var legacyIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("credsvc:mongo:objectid"))

// accountDocument is the stored shape; the digest lives under "password".
// New documents use a UUID string _id; documents written by earlier deployments carry an ObjectID.
type accountDocument struct {
	ID        any       `bson:"_id"`
	Email     string    `bson:"email"`
	Username  string    `bson:"username"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"createdAt"`
}

type accountRepository struct {
	collection *mongodriver.Collection
}

// NewAccountRepository creates a new account repository backed by collection.
func NewAccountRepository(collection *mongodriver.Collection) repository.AccountRepository {
	return &accountRepository{collection: collection}
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	id, err := uuid.NewV7()
	if err != nil {
		return errors.Wrap(err, "generate account id")
	}

	account.ID = id
	// Mongo stores milliseconds; keep the in-memory value identical to what is read back.
	account.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, fromAccountDomain(account)); err != nil {
		account.ID = uuid.Nil
		account.CreatedAt = time.Time{}

		if mongodriver.IsDuplicateKeyError(err) {
			return errors.WithStack(repository.ErrDuplicateKey)
		}

		return domainerrors.NewInfrastructureError(err, "insert account")
	}

	return nil
}

func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	var doc accountDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, domainerrors.NewInfrastructureError(err, "find account")
	}

	return toAccountDomain(&doc)
}

func (r *accountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, domainerrors.NewInfrastructureError(err, "list accounts")
	}
	defer cursor.Close(ctx)

	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domainerrors.NewInfrastructureError(err, "decode accounts")
	}

	accounts := make([]*entity.Account, 0, len(docs))
	for i := range docs {
		account, err := toAccountDomain(&docs[i])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

func toAccountDomain(doc *accountDocument) (*entity.Account, error) {
	account := &entity.Account{
		Email:        doc.Email,
		Username:     doc.Username,
		PasswordHash: doc.Password,
		CreatedAt:    doc.CreatedAt.UTC(),
	}

	switch id := doc.ID.(type) {
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, domainerrors.NewInfrastructureError(err, "stored account id is not a uuid")
		}
		account.ID = parsed
	case primitive.ObjectID:
		account.ID = legacyAccountID(id)
		if doc.CreatedAt.IsZero() {
			account.CreatedAt = id.Timestamp().UTC()
		}
	default:
		return nil, domainerrors.NewInfrastructureError(errors.Errorf("unsupported _id type %T", doc.ID), "decode account id")
	}

	return account, nil
}

// legacyAccountID maps an ObjectID key to a stable UUID so older accounts can log in and be listed.
func legacyAccountID(oid primitive.ObjectID) uuid.UUID {
	return uuid.NewSHA1(legacyIDNamespace, oid[:])
}

func fromAccountDomain(account *entity.Account) *accountDocument {
	return &accountDocument{
		ID:        account.ID.String(),
		Email:     account.Email,
		Username:  account.Username,
		Password:  account.PasswordHash,
		CreatedAt: account.CreatedAt,
	}
}
