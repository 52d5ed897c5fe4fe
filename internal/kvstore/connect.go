package kvstore

import (
	"context"
	"log/slog"
)

// Connect tries the real Redis backend first and falls back to an
// in-memory store on any connection error, logging the fallback. This
// mirrors the original system's redis_client.py: a real backend is
// attempted first, and only a connection failure (not every call)
// drops to the fake/in-memory equivalent.
func Connect(ctx context.Context, cfg RedisConfig, logger *slog.Logger) Store {
	store, err := NewRedisStore(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory store",
			slog.String("addr", cfg.Addr), slog.Any("err", err))
		return NewMemoryStore()
	}
	return store
}
