package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/clinica-api/internal/domain"
)

// SQLSTATE relevantes para la taxonomía de errores del dominio.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeQueryCanceled       = "57014"
	codeLockNotAvailable    = "55P03"
	codeDeadlockDetected    = "40P01"
	codeSerialization       = "40001"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// constraintOf devuelve el nombre del constraint violado, si lo hay.
func constraintOf(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// mapError traduce errores del driver a la taxonomía del dominio conservando la causa (%w).
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ErrTimeout.Wrap(fmt.Errorf("%s: %w", op, err))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation, codeForeignKeyViolation, codeCheckViolation:
			return domain.ErrIntegrity.WithMessage("%s: %s", op, pgErr.ConstraintName).Wrap(err)
		case codeDeadlockDetected, codeSerialization:
			return domain.ErrIntegrity.WithMessage("%s: concurrent update, retry: %s", op, pgErr.Message).Wrap(err)
		case codeQueryCanceled, codeLockNotAvailable:
			return domain.ErrTimeout.WithMessage("%s: %s", op, pgErr.Message).Wrap(err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// noRows convierte pgx.ErrNoRows en (nil, nil), la convención de los Get* de los repositorios.
func noRows[T any](v *T, op string, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return v, nil
}

// affected devuelve NOT_FOUND si el UPDATE/DELETE no tocó ninguna fila.
func affected(tag pgconn.CommandTag, entityName string, id int64) error {
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound.WithMessage("%s %d not found", entityName, id)
	}
	return nil
}

// limitArg traduce limit 0 (sin límite) a NULL para LIMIT.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
