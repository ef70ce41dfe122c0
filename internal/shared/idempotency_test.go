package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapInsertErrorUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idempotency_keys_pkey"}
	require.ErrorIs(t, mapInsertError(pgErr), ErrIdempotencyConflict)

	wrapped := fmt.Errorf("exec insert: %w", pgErr)
	require.ErrorIs(t, mapInsertError(wrapped), ErrIdempotencyConflict)
}

func TestMapInsertErrorPassesThroughOtherErrors(t *testing.T) {
	notNull := &pgconn.PgError{Code: "23502"}
	require.NotErrorIs(t, mapInsertError(notNull), ErrIdempotencyConflict)

	plain := errors.New("connection refused")
	require.Equal(t, plain, mapInsertError(plain))
}
