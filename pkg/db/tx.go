package db

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

// DefaultTxAttempts bounds how often a transaction that lost a serialization
// race is replayed.
const DefaultTxAttempts = 5

// RunInTx runs fn inside a transaction and replays it when the store reports a
// serialization conflict. Postgres transactions run SERIALIZABLE; other
// dialects use their default isolation.
func RunInTx(ctx context.Context, conn *gorm.DB, attempts int, fn func(tx *gorm.DB) error) error {
	if conn == nil {
		return errors.New("transaction database handle is required")
	}
	if attempts <= 0 {
		attempts = DefaultTxAttempts
	}

	var opts []*sql.TxOptions
	if conn.Dialector != nil && conn.Dialector.Name() == DialectPostgres {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = conn.WithContext(ctx).Transaction(fn, opts...)
		if !IsRetryable(err) {
			return err
		}
	}
	return err
}
