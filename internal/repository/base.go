// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"pawfeed/internal/models"
	"pawfeed/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// escapeLike escapes LIKE metacharacters so a pattern built from a tag
// matches them literally. Used with ESCAPE '\'.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// txMaxAttempts bounds the internal retry loop for write-write conflicts.
// Retries here are invisible to callers; only exhaustion surfaces an error.
const txMaxAttempts = 3

// isRetryableConflict reports whether err is a store-level write conflict
// that should be retried with a fresh snapshot.
func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected, lock_not_available
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// runInTx executes fn in a transaction, retrying the whole read-modify-write
// on conflicting concurrent writers so callers always operate on the
// freshest document snapshot.
func runInTx(ctx context.Context, db *gorm.DB, operation string, fn func(tx *gorm.DB) error) error {
	ctx, span := observability.Tracer.Start(ctx, "repository.tx")
	span.SetAttributes(attribute.String("operation", operation))
	defer span.End()

	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !isRetryableConflict(err) {
			return err
		}
		observability.TxRetries.WithLabelValues(operation).Inc()
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}
	return err
}

// lockForUpdate adds a row lock on dialects that support it. SQLite
// serializes writers at the database level, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// translateError maps store errors into the engine's failure taxonomy at the
// repository boundary. Anything that is neither "gone" nor already classified
// is treated as retryable by the caller.
func translateError(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewTransientError(err)
}
