// Package guard rejects writes that would duplicate a unique key.
//
// The checks are advisory: they run inside the caller's transaction so the
// common case fails with a domain error, while the storage unique index
// remains the final arbiter under concurrent writers.
package guard

import (
	"context"
	"fmt"
)

// Lookup reports whether a live row already holds key.
type Lookup[K comparable] func(ctx context.Context, key K) (bool, error)

// Check fails with conflict when key is already taken.
func Check[K comparable](ctx context.Context, key K, exists Lookup[K], conflict error) error {
	found, err := exists(ctx, key)
	if err != nil {
		return err
	}
	if found {
		return conflict
	}
	return nil
}

// CheckChange is Check for updates. An unchanged key never consults the store,
// so a row can always be saved under its own key.
func CheckChange[K comparable](ctx context.Context, current, next K, exists Lookup[K], conflict error) error {
	if current == next {
		return nil
	}
	return Check(ctx, next, exists, conflict)
}

// CheckBatch validates keys in input order against the store and against the
// keys that precede them in the batch. The first violation is returned.
func CheckBatch[K comparable](ctx context.Context, keys []K, exists Lookup[K], conflict error) error {
	pending := make(map[K]struct{}, len(keys))
	for i, key := range keys {
		if _, dup := pending[key]; dup {
			return fmt.Errorf("item %d: %w", i, conflict)
		}
		if err := Check(ctx, key, exists, conflict); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		pending[key] = struct{}{}
	}
	return nil
}
