package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// withRetry runs fn up to maxAttempts times, backing off between attempts.
// Only transient store failures are retried; SQL-level errors and expected
// lookup outcomes surface immediately. Exhaustion fails this request only.
func (r *Repository) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !isRetriable(err) {
			return err
		}
		r.logger.Warnf("%s: transient store error on attempt %d: %v", op, attempt, err)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
	}
	r.logger.Errorf("%s: giving up after %d attempts: %v", op, maxAttempts, err)
	return err
}

func isRetriable(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// A PgError means the server executed the statement and rejected it;
	// retrying would only repeat the rejection.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return false
	}
	return true
}
