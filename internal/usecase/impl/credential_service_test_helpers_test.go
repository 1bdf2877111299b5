package impl

import (
	"io"
	"log/slog"
	"time"

	"credsvc/config"
)

const testSecret = "test-signing-secret"

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Database:  &config.DatabaseConfig{URI: "memory://", Timeout: time.Second},
		SecretKey: config.SecretKeyConfig{Token: testSecret},
		Auth: &config.AuthConfig{
			BcryptCost:      4,
			HashConcurrency: 2,
		},
	}
}
