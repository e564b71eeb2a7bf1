// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/metrics"
)

// Tx is a write transaction handed to WithTx callbacks. All reads through a
// Tx see the transaction's own snapshot plus its uncommitted writes.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a transaction and commits it. Any error from fn
// rolls everything back. DuckDB write conflicts replay fn from scratch up to
// the configured retry count, so fn must not keep state across attempts.
func (db *DB) WithTx(ctx context.Context, fn func(*Tx) error) error {
	var lastErr error
	for attempt := 0; attempt <= db.conflictRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordTransactionConflict()
			logging.Ctx(ctx).Debug().
				Int("attempt", attempt).
				Err(lastErr).
				Msg("Retrying transaction after write conflict")

			backoff := db.conflictBackoff * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = db.runTx(ctx, fn)
		if lastErr == nil || !isTransactionConflict(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("transaction failed after %d retries: %w", db.conflictRetries, lastErr)
}

func (db *DB) runTx(ctx context.Context, fn func(*Tx) error) (err error) {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				ev := logging.Error()
				if isConnectionError(rbErr) {
					ev = logging.Warn()
				}
				ev.Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	tx := &Tx{tx: sqlTx}
	if err = fn(tx); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
