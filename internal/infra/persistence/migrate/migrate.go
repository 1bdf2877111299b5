// Package migrate applies embedded goose migrations to SQL-backed stores.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"credsvc/internal/errors"

	"github.com/pressly/goose/v3"
)

// goose keeps its dialect and filesystem in package state.
var mu sync.Mutex

// Up applies every pending migration found at the root of fsys.
func Up(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, logger *slog.Logger) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if logger != nil {
		goose.SetLogger(gooseSlogLogger{logger: logger})
	}

	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrapf(err, "set goose dialect %s", dialect)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "apply migrations")
	}

	return nil
}

// gooseSlogLogger adapts slog to goose's Printf/Fatalf logger.
type gooseSlogLogger struct {
	logger *slog.Logger
}

func (l gooseSlogLogger) Printf(format string, v ...any) {
	l.logger.Info("goose", slog.String("message", strings.TrimSpace(fmt.Sprintf(format, v...))))
}

func (l gooseSlogLogger) Fatalf(format string, v ...any) {
	l.logger.Error("goose", slog.String("message", strings.TrimSpace(fmt.Sprintf(format, v...))))
	os.Exit(1)
}
