// Package kvstore defines the abstract KV/PubSub backend the core
// depends on, plus two implementations: a production Redis-backed
// store and an in-memory store used by tests and offline mode. The
// core never depends on which is active.
package kvstore

import "context"

// Store is the opaque contract the aggregator and its out-of-scope
// collaborators (auth, rate limiting) depend on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Publish(ctx context.Context, channel string, value []byte) error
	SAdd(ctx context.Context, key string, member string) error
	SRem(ctx context.Context, key string, member string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key string, member string) (bool, error)
	Close() error
}
