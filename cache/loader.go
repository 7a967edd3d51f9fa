package cache

import (
	"context"
	"time"

	"github.com/pitabwire/util"
	"golang.org/x/sync/singleflight"

	"github.com/pitabwire/lugha/internal"
)

// Loader layers a compute-if-absent primitive over a RawCache with
// automatic serialization. Concurrent misses on the same key are
// coalesced into a single compute call, so the backing source sees at
// most one in-flight fetch per key.
//
// Backend failures on the read path degrade to a miss rather than
// aborting the lookup; failures while populating an entry are reported
// and the computed value still flows back to the caller.
type Loader[V any] struct {
	raw   RawCache
	group singleflight.Group
}

// NewLoader creates a loader over the supplied raw cache.
func NewLoader[V any](raw RawCache) *Loader[V] {
	return &Loader[V]{raw: raw}
}

// GetOrCompute returns the cached value for key, computing and storing
// it with the supplied TTL on a miss.
func (l *Loader[V]) GetOrCompute(
	ctx context.Context,
	key string,
	ttl time.Duration,
	compute func(ctx context.Context) (V, error),
) (V, error) {
	var zero V

	if value, ok := l.lookup(ctx, key); ok {
		return value, nil
	}

	result, err, _ := l.group.Do(key, func() (any, error) {
		// A coalesced caller may have populated the entry already.
		if value, ok := l.lookup(ctx, key); ok {
			return value, nil
		}

		value, computeErr := compute(ctx)
		if computeErr != nil {
			return zero, computeErr
		}

		data, marshalErr := internal.Marshal(value)
		if marshalErr != nil {
			return zero, marshalErr
		}

		if setErr := l.raw.Set(ctx, key, data, ttl); setErr != nil {
			util.Log(ctx).WithError(setErr).WithField("key", key).
				Warn("could not populate cache entry")
		}

		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := result.(V)
	if !ok {
		return zero, nil
	}

	return value, nil
}

// Remove drops the entry for key from the underlying cache.
func (l *Loader[V]) Remove(ctx context.Context, key string) error {
	return l.raw.Delete(ctx, key)
}

func (l *Loader[V]) lookup(ctx context.Context, key string) (V, bool) {
	var zero V

	data, found, err := l.raw.Get(ctx, key)
	if err != nil {
		util.Log(ctx).WithError(err).WithField("key", key).
			Debug("cache read failed, treating as miss")
		return zero, false
	}

	if !found {
		return zero, false
	}

	var value V
	if unmarshalErr := internal.Unmarshal(data, &value); unmarshalErr != nil {
		util.Log(ctx).WithError(unmarshalErr).WithField("key", key).
			Warn("discarding undecodable cache entry")
		return zero, false
	}

	return value, true
}
