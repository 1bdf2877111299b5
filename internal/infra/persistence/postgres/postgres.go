// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"credsvc/config"
	"credsvc/internal/domain/lifecycle"
	"credsvc/internal/errors"
	"credsvc/internal/infra/persistence/migrate"
	"credsvc/internal/infra/persistence/postgres/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/fx"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens a lazily-connected GORM handle for the configured URI.
// The connection is verified and migrated when the fx application starts.
func New(params Params) (*gorm.DB, error) {
	db, err := gorm.Open(gormpostgres.Open(params.Config.Database.URI), &gorm.Config{
		// Disable GORM's per-statement implicit transaction; every write here is a single INSERT.
		SkipDefaultTransaction: true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	// Replica pools are opened here so they can be closed with the primary.
	var replicaDBs []*sql.DB
	if replicas := params.Config.Database.Replicas; len(replicas) > 0 {
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, uri := range replicas {
			replicaDB, err := sql.Open("pgx", uri)
			if err != nil {
				_ = closeAll(sqlDB, replicaDBs)

				return nil, errors.Wrap(err, "failed to open PostgreSQL replica")
			}
			replicaDBs = append(replicaDBs, replicaDB)
			dialectors = append(dialectors, gormpostgres.New(gormpostgres.Config{Conn: replicaDB}))
		}

		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: dialectors,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			_ = closeAll(sqlDB, replicaDBs)

			return nil, errors.Wrap(err, "failed to register PostgreSQL replicas")
		}
	}

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	// Add lifecycle management
	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			if err := migrate.Up(ctx, sqlDB, "postgres", migrations.FS, params.Logger); err != nil {
				return errors.Wrap(err, "failed to migrate PostgreSQL")
			}

			go monitorDBPool(monitorCtx, params.Logger, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return closeAll(sqlDB, replicaDBs)
		},
	})

	return db, nil
}

// closeAll closes the primary and every replica pool, returning the first failure.
func closeAll(primary *sql.DB, replicas []*sql.DB) error {
	err := primary.Close()
	for _, replica := range replicas {
		if closeErr := replica.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	return errors.WithStack(err)
}

func monitorDBPool(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	if logger == nil || sqlDB == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			waitDelta := cur.WaitCount - prev.WaitCount
			waitDurationDelta := cur.WaitDuration - prev.WaitDuration

			if waitDelta > 0 {
				attrs := []slog.Attr{
					slog.Int64("waitCountDelta", waitDelta),
					slog.Duration("waitDurationDelta", waitDurationDelta),
					slog.Duration("avgWait", waitDurationDelta/time.Duration(waitDelta)),
					slog.Int("openConns", cur.OpenConnections),
					slog.Int("inUseConns", cur.InUse),
					slog.Int("idleConns", cur.Idle),
				}
				if waitDurationDelta >= dbPoolWarnDurationThreshold {
					logger.LogAttrs(ctx, slog.LevelWarn, "Postgres pool wait detected", attrs...)
				} else {
					logger.LogAttrs(ctx, slog.LevelDebug, "Postgres pool wait observed", attrs...)
				}
			}

			prev = cur
		}
	}
}
