package providers

import (
	"context"
)

// CacheProvider stores rendered API responses.
// Get must return an error for absent or expired keys; callers treat any error as a miss.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value for expirationSeconds; zero means no expiry
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error
}
