package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// pingBackoff paces the start-up pings while the database comes up.
var pingBackoff = func() retry.Backoff {
	return retry.WithMaxRetries(5, retry.WithCappedDuration(5*time.Second, retry.NewExponential(250*time.Millisecond)))
}

// Open opens a pool for driver and dsn and checks it with a ping, retrying
// with exponential backoff. maxOpen <= 0 leaves the pool unbounded.
func Open(ctx context.Context, driver, dsn string, maxOpen int) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := pingWithRetry(ctx, db.PingContext, pingBackoff()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return db, nil
}

func pingWithRetry(ctx context.Context, ping func(context.Context) error, b retry.Backoff) error {
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := ping(ctx); err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
}
