// Package persistence picks the credential store adapter from the database URI.
package persistence

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"credsvc/config"
	"credsvc/internal/domain/lifecycle"
	"credsvc/internal/domain/repository"
	"credsvc/internal/errors"
	"credsvc/internal/infra/persistence/memory"
	"credsvc/internal/infra/persistence/mongo"
	"credsvc/internal/infra/persistence/postgres"
	"credsvc/internal/infra/persistence/sqlite"

	"go.uber.org/fx"
)

const (
	SchemeMemory     = "memory"
	SchemeSQLite     = "sqlite"
	SchemePostgres   = "postgres"
	SchemePostgreSQL = "postgresql"
	SchemeMongo      = "mongodb"
	SchemeMongoSRV   = "mongodb+srv"
)

// ErrUnsupportedScheme is returned for database URIs no adapter understands.
var ErrUnsupportedScheme = errors.New("unsupported database scheme")

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewAccountRepository returns the store selected by config.Database.URI.
func NewAccountRepository(params Params) (repository.AccountRepository, error) {
	uri := strings.TrimSpace(params.Config.Database.URI)
	scheme := schemeOf(uri)

	logger := params.Logger.With(slog.String("store", scheme))

	switch scheme {
	case SchemeMemory:
		logger.Warn("Using in-memory credential store; accounts are lost on restart")

		return memory.NewAccountRepository(), nil

	case SchemeSQLite:
		store, err := sqlite.New(strings.TrimPrefix(uri, SchemeSQLite+"://"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to open SQLite store")
		}
		params.Append(fx.Hook{
			OnStart: func(startCtx context.Context) error {
				ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
				defer cancel()

				return errors.Wrap(store.Start(ctx, logger), "failed to start SQLite store")
			},
			OnStop: func(context.Context) error {
				return store.Close()
			},
		})

		return store, nil

	case SchemePostgres, SchemePostgreSQL:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}

		return postgres.NewAccountRepository(db), nil

	case SchemeMongo, SchemeMongoSRV:
		collection, err := mongo.New(mongo.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}

		return mongo.NewAccountRepository(collection), nil

	default:
		return nil, errors.Wrapf(ErrUnsupportedScheme, "scheme %q", scheme)
	}
}

func schemeOf(uri string) string {
	if idx := strings.Index(uri, "://"); idx > 0 {
		return strings.ToLower(uri[:idx])
	}

	if parsed, err := url.Parse(uri); err == nil && parsed.Scheme != "" {
		return strings.ToLower(parsed.Scheme)
	}

	return ""
}
