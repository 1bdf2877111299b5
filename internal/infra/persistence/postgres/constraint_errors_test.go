package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueConstraintViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "gorm translated", err: gorm.ErrDuplicatedKey, want: true},
		{name: "wrapped gorm", err: errors.Wrap(gorm.ErrDuplicatedKey, "insert"), want: true},
		{name: "pg unique", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "pg not null", err: &pgconn.PgError{Code: "23502"}, want: false},
		{name: "network", err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueConstraintViolation(tt.err))
		})
	}
}

func TestIsNotNullConstraintViolation(t *testing.T) {
	assert.True(t, isNotNullConstraintViolation(&pgconn.PgError{Code: "23502"}))
	assert.False(t, isNotNullConstraintViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isNotNullConstraintViolation(errors.New(`null value in column "email" violates not-null constraint`)))
	assert.False(t, isNotNullConstraintViolation(errors.New("connection reset by peer")))
}
