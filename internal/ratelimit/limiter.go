// Package ratelimit provides a sliding-window request limiter keyed by
// client identity, backed by a shared counter store. The limiter fails
// open: a missing or unreachable backend never blocks the service.
package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Store counts one request for key and returns how many requests the key
// has made inside the rolling window ending now.
type Store interface {
	CountInWindow(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error)
}

type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
	logger *slog.Logger
}

func New(store Store, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{store: store, limit: int64(limit), window: window, logger: logger}
}

// Allow reports whether the request identified by key is inside its quota.
// A nil limiter or nil store allows everything; store errors also allow.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.store == nil {
		return true
	}
	count, err := l.store.CountInWindow(ctx, key, time.Now(), l.window)
	if err != nil {
		if l.logger != nil {
			l.logger.WarnContext(ctx, "rate limit store unavailable, allowing request",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
		return true
	}
	return count <= l.limit
}
