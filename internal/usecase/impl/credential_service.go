// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"credsvc/config"
	deliverycontext "credsvc/internal/delivery/context"
	"credsvc/internal/domain/entity"
	domainerrors "credsvc/internal/domain/errors"
	"credsvc/internal/domain/repository"
	"credsvc/internal/domain/service"
	"credsvc/internal/errors"
	"credsvc/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"golang.org/x/sync/semaphore"
)

const (
	defaultStoreTimeout = 5 * time.Second

	// maxPasswordBytes is the bcrypt input limit.
	maxPasswordBytes = 72
)

// credentialService implements the CredentialUsecase interface.
type credentialService struct {
	accountRepo  repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	hashSlots    *semaphore.Weighted
	storeTimeout time.Duration
	logger       *slog.Logger

	// decoyOnce lazily builds a digest compared against when the username is unknown,
	// so both login failures spend the same hashing time.
	decoyOnce   sync.Once
	decoyDigest string
}

// CredentialServiceParams holds dependencies for CredentialService, injected by Fx.
type CredentialServiceParams struct {
	fx.In

	AccountRepo  repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewCredentialService is the constructor for credentialService. It receives all dependencies as interfaces.
func NewCredentialService(params CredentialServiceParams) usecase.CredentialUsecase {
	storeTimeout := defaultStoreTimeout
	hashConcurrency := 1
	if params.Config != nil {
		if params.Config.Database != nil && params.Config.Database.Timeout > 0 {
			storeTimeout = params.Config.Database.Timeout
		}
		if params.Config.Auth != nil && params.Config.Auth.HashConcurrency > 0 {
			hashConcurrency = params.Config.Auth.HashConcurrency
		}
	}

	return &credentialService{
		accountRepo:  params.AccountRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		hashSlots:    semaphore.NewWeighted(int64(hashConcurrency)),
		storeTimeout: storeTimeout,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *credentialService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register validates the input, hashes the password and creates the account.
func (srv *credentialService) Register(ctx context.Context, input *usecase.RegisterInput) error {
	if input == nil || strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("email, username and password are required")
	}
	if len(input.Password) > maxPasswordBytes {
		return domainerrors.ErrValidationFailed.WrapMessage("password exceeds 72 bytes")
	}

	srv.log(ctx).Info("Starting registration", slog.String("username", input.Username))

	digest, err := srv.hashPassword(ctx, input.Password)
	if err != nil {
		return err
	}

	account := &entity.Account{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: digest,
	}

	storeCtx, cancel := context.WithTimeout(ctx, srv.storeTimeout)
	defer cancel()

	if err := srv.accountRepo.Create(storeCtx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			srv.log(ctx).Info("Registration rejected: username taken", slog.String("username", input.Username))

			return domainerrors.ErrAccountConflict.WrapMessage("username already registered")
		}

		srv.log(ctx).Error("Failed to create account", slog.String("username", input.Username), slog.Any("error", err))

		return srv.asInfrastructure(err, "create account")
	}

	srv.log(ctx).Info("Account registered", slog.Any("accountID", account.ID))

	return nil
}

// Login fetches the account, verifies the password and issues a token.
func (srv *credentialService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if input == nil || input.Username == "" || input.Password == "" {
		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}

	storeCtx, cancel := context.WithTimeout(ctx, srv.storeTimeout)
	defer cancel()

	account, err := srv.accountRepo.FindByUsername(storeCtx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			srv.log(ctx).Info("Login failed: account not found", slog.String("username", input.Username))
			srv.burnDecoyCheck(ctx, input.Password)

			return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
		}

		srv.log(ctx).Error("Failed to load account", slog.String("username", input.Username), slog.Any("error", err))

		return nil, srv.asInfrastructure(err, "find account")
	}

	ok, err := srv.checkPassword(ctx, input.Password, account.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		srv.log(ctx).Info("Login failed: password mismatch", slog.String("username", input.Username))

		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}

	token, err := srv.tokenService.Issue(account.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Any("accountID", account.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrTokenIssueFailed, err.Error())
	}

	srv.log(ctx).Debug("Login succeeded", slog.Any("accountID", account.ID))

	return &usecase.LoginOutput{Token: token}, nil
}

// ListAccounts returns the public view of every account.
func (srv *credentialService) ListAccounts(ctx context.Context) ([]*usecase.AccountSummary, error) {
	storeCtx, cancel := context.WithTimeout(ctx, srv.storeTimeout)
	defer cancel()

	accounts, err := srv.accountRepo.List(storeCtx)
	if err != nil {
		srv.log(ctx).Error("Failed to list accounts", slog.Any("error", err))

		return nil, srv.asInfrastructure(err, "list accounts")
	}

	summaries := make([]*usecase.AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, &usecase.AccountSummary{
			ID:        account.ID,
			Email:     account.Email,
			Username:  account.Username,
			CreatedAt: account.CreatedAt,
		})
	}

	return summaries, nil
}

// VerifyToken checks a bearer token and returns its account id.
func (srv *credentialService) VerifyToken(ctx context.Context, token string) (uuid.UUID, error) {
	accountID, err := srv.tokenService.Verify(token)
	if err != nil {
		srv.log(ctx).Debug("Token rejected", slog.Any("error", err))

		return uuid.Nil, err
	}

	return accountID, nil
}

func (srv *credentialService) hashPassword(ctx context.Context, password string) (string, error) {
	if err := srv.hashSlots.Acquire(ctx, 1); err != nil {
		return "", domainerrors.NewInfrastructureError(err, "wait for hash worker")
	}
	defer srv.hashSlots.Release(1)

	digest, err := srv.hasher.Hash(password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return "", errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	return digest, nil
}

func (srv *credentialService) checkPassword(ctx context.Context, password, digest string) (bool, error) {
	if err := srv.hashSlots.Acquire(ctx, 1); err != nil {
		return false, domainerrors.NewInfrastructureError(err, "wait for hash worker")
	}
	defer srv.hashSlots.Release(1)

	return srv.hasher.Check(password, digest), nil
}

// burnDecoyCheck spends one verification on a throwaway digest. Its result is ignored.
func (srv *credentialService) burnDecoyCheck(ctx context.Context, password string) {
	srv.decoyOnce.Do(func() {
		digest, err := srv.hasher.Hash(uuid.NewString())
		if err != nil {
			srv.log(ctx).Warn("Failed to build decoy digest", slog.Any("error", err))

			return
		}
		srv.decoyDigest = digest
	})

	if srv.decoyDigest == "" {
		return
	}

	_, _ = srv.checkPassword(ctx, password, srv.decoyDigest)
}

// asInfrastructure keeps AppErrors from the store as they are and wraps anything else.
func (srv *credentialService) asInfrastructure(err error, details string) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	return domainerrors.NewInfrastructureError(err, details)
}
