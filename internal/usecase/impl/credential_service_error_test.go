package impl

import (
	"context"
	"testing"

	"credsvc/internal/domain/entity"
	domainerrors "credsvc/internal/domain/errors"
	"credsvc/internal/domain/repository"
	"credsvc/internal/errors"
	mockRepo "credsvc/internal/mocks/repository"
	mockSvc "credsvc/internal/mocks/service"
	"credsvc/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockedCredentialService struct {
	service      usecase.CredentialUsecase
	accountRepo  *mockRepo.MockAccountRepository
	hasher       *mockSvc.MockPasswordHasher
	tokenService *mockSvc.MockTokenService
}

func createMockedCredentialService(t *testing.T) mockedCredentialService {
	accountRepo := mockRepo.NewMockAccountRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	service := NewCredentialService(CredentialServiceParams{
		AccountRepo:  accountRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		Config:       newTestConfig(),
		Logger:       newDiscardLogger(),
	})

	return mockedCredentialService{
		service:      service,
		accountRepo:  accountRepo,
		hasher:       hasher,
		tokenService: tokenService,
	}
}

var errConnectionRefused = errors.New("connection refused")

func TestCredentialService_Login_StoreUnavailable(t *testing.T) {
	fx := createMockedCredentialService(t)

	fx.accountRepo.EXPECT().
		FindByUsername(mock.Anything, "alice").
		Return(nil, errConnectionRefused)

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{Username: "alice", Password: "secret123"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	assert.True(t, domainerrors.IsInfrastructure(err))
	assert.True(t, errors.Is(err, errConnectionRefused))
}

func TestCredentialService_Register_StoreUnavailable(t *testing.T) {
	fx := createMockedCredentialService(t)

	fx.hasher.EXPECT().Hash("secret123").Return("$2a$04$digest", nil)
	fx.accountRepo.EXPECT().
		Create(mock.Anything, mock.MatchedBy(func(account *entity.Account) bool {
			return account.Username == "alice" && account.PasswordHash == "$2a$04$digest"
		})).
		Return(domainerrors.NewInfrastructureError(errConnectionRefused, "insert account"))

	err := fx.service.Register(context.Background(), &usecase.RegisterInput{Email: "a@b.com", Username: "alice", Password: "secret123"})

	require.Error(t, err)
	assert.True(t, domainerrors.IsInfrastructure(err))
	assert.False(t, errors.Is(err, domainerrors.ErrAccountConflict))
}

func TestCredentialService_Register_HashFailure(t *testing.T) {
	fx := createMockedCredentialService(t)

	fx.hasher.EXPECT().Hash("secret123").Return("", errors.New("password too long"))

	err := fx.service.Register(context.Background(), &usecase.RegisterInput{Email: "a@b.com", Username: "alice", Password: "secret123"})

	assert.True(t, errors.Is(err, domainerrors.ErrPasswordHashFailed))
}

func TestCredentialService_Login_WrongPasswordSkipsIssue(t *testing.T) {
	fx := createMockedCredentialService(t)

	account := &entity.Account{ID: uuid.Must(uuid.NewV7()), Username: "alice", PasswordHash: "$2a$04$digest"}
	fx.accountRepo.EXPECT().FindByUsername(mock.Anything, "alice").Return(account, nil)
	fx.hasher.EXPECT().Check("wrong", "$2a$04$digest").Return(false)

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{Username: "alice", Password: "wrong"})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	fx.tokenService.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestCredentialService_Login_UnknownUserRunsDecoyCheck(t *testing.T) {
	fx := createMockedCredentialService(t)

	fx.accountRepo.EXPECT().FindByUsername(mock.Anything, "bob").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(mock.AnythingOfType("string")).Return("$2a$04$decoy", nil).Once()
	fx.hasher.EXPECT().Check("x", "$2a$04$decoy").Return(false)

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{Username: "bob", Password: "x"})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestCredentialService_Login_TokenIssueFailure(t *testing.T) {
	fx := createMockedCredentialService(t)

	account := &entity.Account{ID: uuid.Must(uuid.NewV7()), Username: "alice", PasswordHash: "$2a$04$digest"}
	fx.accountRepo.EXPECT().FindByUsername(mock.Anything, "alice").Return(account, nil)
	fx.hasher.EXPECT().Check("secret123", "$2a$04$digest").Return(true)
	fx.tokenService.EXPECT().Issue(account.ID).Return("", errors.New("signing failed"))

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{Username: "alice", Password: "secret123"})

	assert.True(t, errors.Is(err, domainerrors.ErrTokenIssueFailed))
}

func TestCredentialService_ListAccounts_StoreUnavailable(t *testing.T) {
	fx := createMockedCredentialService(t)

	fx.accountRepo.EXPECT().List(mock.Anything).Return(nil, errConnectionRefused)

	_, err := fx.service.ListAccounts(context.Background())

	assert.True(t, domainerrors.IsInfrastructure(err))
}

func TestCredentialService_StoreCallsCarryDeadline(t *testing.T) {
	fx := createMockedCredentialService(t)

	fx.accountRepo.EXPECT().
		List(mock.Anything).
		Run(func(ctx context.Context) {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
		}).
		Return(nil, nil)

	summaries, err := fx.service.ListAccounts(context.Background())

	require.NoError(t, err)
	assert.Empty(t, summaries)
}
