package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
)

// Códigos SQLSTATE usados para clasificar errores.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// classify envuelve un error de pgx con el error de dominio correspondiente.
// Deadlocks y fallas de serialización son ErrConcurrencyConflict; el resto de fallas
// de infraestructura son ErrStoreUnavailable. La cancelación del caller se devuelve tal cual.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConcurrencyConflict, err)
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicate, err)
	case codeCheckViolation:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrLedgerInconsistent, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
