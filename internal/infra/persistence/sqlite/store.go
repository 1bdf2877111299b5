// Package sqlite provides a SQLite-backed credential store.
package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"credsvc/internal/domain/entity"
	domainerrors "credsvc/internal/domain/errors"
	"credsvc/internal/domain/repository"
	"credsvc/internal/errors"
	"credsvc/internal/infra/persistence/migrate"
	"credsvc/internal/infra/persistence/sqlite/migrations"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists accounts in a single SQLite file.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// New prepares a SQLite handle for path without touching the file.
func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Start connects and applies embedded migrations.
func (s *Store) Start(ctx context.Context, logger *slog.Logger) error {
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping sqlite db")
	}

	if err := migrate.Up(ctx, s.sqlDB, "sqlite3", migrations.FS, logger); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return nil
}

// Open prepares and starts a store in one step.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	store, err := New(path)
	if err != nil {
		return nil, err
	}

	if err := store.Start(ctx, logger); err != nil {
		_ = store.Close()

		return nil, err
	}

	return store, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}

	return s.sqlDB.Close()
}

// Create inserts one account; the unique index on username rejects duplicates atomically.
func (s *Store) Create(ctx context.Context, account *entity.Account) error {
	id, err := uuid.NewV7()
	if err != nil {
		return errors.Wrap(err, "generate account id")
	}
	createdAt := time.Now().UTC().Truncate(time.Millisecond)

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO accounts (id, email, username, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		id.String(), account.Email, account.Username, account.PasswordHash, toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.WithStack(repository.ErrDuplicateKey)
		}

		return domainerrors.NewInfrastructureError(err, "insert account")
	}

	account.ID = id
	account.CreatedAt = createdAt

	return nil
}

// FindByUsername loads one account by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, created_at FROM accounts WHERE username = ?`,
		username,
	)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, domainerrors.NewInfrastructureError(err, "select account")
	}

	return account, nil
}

// List returns all accounts in creation order.
func (s *Store) List(ctx context.Context) ([]*entity.Account, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, email, username, password_hash, created_at FROM accounts ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, domainerrors.NewInfrastructureError(err, "list accounts")
	}
	defer rows.Close()

	var accounts []*entity.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, domainerrors.NewInfrastructureError(err, "scan account")
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.NewInfrastructureError(err, "iterate accounts")
	}

	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*entity.Account, error) {
	var (
		rawID     string
		createdAt int64
		account   entity.Account
	)

	if err := row.Scan(&rawID, &account.Email, &account.Username, &account.PasswordHash, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errors.Wrapf(err, "parse account id %q", rawID)
	}
	account.ID = id
	account.CreatedAt = fromMillis(createdAt)

	return &account, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "accounts.username")
}

var _ repository.AccountRepository = (*Store)(nil)
