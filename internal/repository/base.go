package repository

import (
	"context"
	"errors"
	"strings"

	"socialfeed/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
)

// instrument opens a repository span and latency timer. The returned func
// closes both and records *errp on the span.
func instrument(ctx context.Context, method, operation, table string) (context.Context, func(*error)) {
	ctx, span := observability.StartRepositorySpan(ctx, method, table)
	done := observability.TrackQuery(operation, table)
	return ctx, func(errp *error) {
		done()
		var err error
		if errp != nil {
			err = *errp
		}
		observability.EndSpan(span, err)
	}
}

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, pgUniqueViolation)
}
