package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"fillout-webhook/internal/models"
)

// mapError converts pgx errors into model errors. Context errors pass through.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if pgxscan.NotFound(err) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %s (sqlstate %s): %w", op, pgErr.Message, pgErr.Code, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
