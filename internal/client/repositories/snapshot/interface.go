// Package snapshot persists small client-side values (serialized session,
// onboarding draft, device id) in a local key/value table so they survive
// process restarts.
package snapshot

import "context"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
