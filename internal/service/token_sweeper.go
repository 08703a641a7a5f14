package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TokenPurger deletes refresh token rows whose expiry is long past.
type TokenPurger interface {
	PurgeExpired(ctx context.Context) error
}

// PurgeTokens sweeps stale refresh tokens every interval until ctx is
// cancelled. A failed sweep is logged and retried on the next tick.
func PurgeTokens(ctx context.Context, store TokenPurger, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.PurgeExpired(ctx); err != nil {
				log.Warn().Err(err).Msg("refresh token purge failed")
			}
		}
	}
}
