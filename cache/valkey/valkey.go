// Package valkey provides a Valkey backed RawCache using the official
// Valkey client.
package valkey

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/pitabwire/lugha/cache"
)

// Cache is a Valkey-backed cache implementation.
type Cache struct {
	client valkey.Client
	maxAge time.Duration
}

const connectionTimeout = 5 * time.Second

// New creates a new Valkey cache.
func New(opts ...cache.Option) (cache.RawCache, error) {
	cacheOpts := &cache.Options{
		MaxAge: time.Hour,
	}

	for _, opt := range opts {
		opt(cacheOpts)
	}

	valkeyOpts, err := valkey.ParseURL(cacheOpts.URI)
	if err != nil {
		return nil, err
	}

	client, err := valkey.NewClient(valkeyOpts)
	if err != nil {
		return nil, err
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if pingErr := client.Do(ctx, client.B().Ping().Build()).Error(); pingErr != nil {
		client.Close()
		return nil, pingErr
	}

	return &Cache{
		client: client,
		maxAge: cacheOpts.MaxAge,
	}, nil
}

// Get retrieves an item from the cache.
func (vc *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	cmd := vc.client.B().Get().Key(key).Build()
	resp := vc.client.Do(ctx, cmd)

	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	val, err := resp.AsBytes()
	if err != nil {
		return nil, false, err
	}

	return val, true, nil
}

// Set sets an item in the cache with the specified TTL.
func (vc *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var cmd valkey.Completed

	if ttl <= 0 {
		ttl = vc.maxAge
	}

	if ttl > 0 {
		// Valkey Ex() expects seconds, not duration
		seconds := int64(ttl.Seconds())
		if seconds == 0 {
			seconds = 1 // Minimum 1 second for sub-second durations
		}
		cmd = vc.client.B().Set().Key(key).Value(valkey.BinaryString(value)).ExSeconds(seconds).Build()
	} else {
		cmd = vc.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Build()
	}

	return vc.client.Do(ctx, cmd).Error()
}

// Delete removes an item from the cache.
func (vc *Cache) Delete(ctx context.Context, key string) error {
	cmd := vc.client.B().Del().Key(key).Build()
	return vc.client.Do(ctx, cmd).Error()
}

// Exists checks if a key exists in the cache.
func (vc *Cache) Exists(ctx context.Context, key string) (bool, error) {
	cmd := vc.client.B().Exists().Key(key).Build()
	resp := vc.client.Do(ctx, cmd)

	if err := resp.Error(); err != nil {
		return false, err
	}

	count, err := resp.AsInt64()
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Flush clears all items from the cache.
func (vc *Cache) Flush(ctx context.Context) error {
	cmd := vc.client.B().Flushdb().Build()
	return vc.client.Do(ctx, cmd).Error()
}

// Close closes the Valkey connection.
func (vc *Cache) Close() error {
	vc.client.Close()
	return nil
}
