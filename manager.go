package lugha

import (
	"context"
	"fmt"
	"time"

	"github.com/pitabwire/util"

	"github.com/pitabwire/lugha/cache"
)

const postWriteTimeout = 5 * time.Second

// Manager is the write path: it persists changes to the authoritative
// store, evicts the local cache entry and broadcasts invalidations so
// other instances drop theirs.
//
// A write is either fully persisted then evicted, or not persisted at
// all. Publishing is best effort: once the store write has committed,
// neither eviction nor publish failures roll it back or surface to the
// caller, since staleness elsewhere is bounded by the cache TTL.
type Manager struct {
	store     Store
	raw       cache.RawCache
	publisher Publisher
	opts      Options
}

// NewManager creates a manager over the store, the shared cache backend
// and an optional invalidation publisher. Passing nil for the publisher
// disables distributed invalidation.
func NewManager(store Store, raw cache.RawCache, publisher Publisher, opts ...Option) *Manager {
	if publisher == nil {
		publisher = NoopPublisher{}
	}

	return &Manager{
		store:     store,
		raw:       raw,
		publisher: publisher,
		opts:      NewOptions(opts...),
	}
}

// Upsert persists the translation, creating or updating the row for its
// identity triple, then evicts and invalidates the matching cache slot.
func (m *Manager) Upsert(ctx context.Context, translation *Translation) error {
	if err := m.store.Upsert(ctx, translation); err != nil {
		return fmt.Errorf("persisting translation %s/%s[%s]: %w",
			translation.Resource, translation.Key, translation.Culture, err)
	}

	pctx, cancel := m.postWriteContext(ctx)
	defer cancel()

	m.evict(pctx, translation.Resource, translation.Key, translation.Culture)

	if err := m.publisher.PublishSingle(pctx, translation.Resource, translation.Key, translation.Culture); err != nil {
		m.reportPublishFailure(pctx, translation.Resource, err)
	}

	return nil
}

// Remove deletes the row for the triple if one exists and reports
// whether it did. On removal the cache slot is evicted and invalidated.
func (m *Manager) Remove(ctx context.Context, resource, key, culture string) (bool, error) {
	removed, err := m.store.Delete(ctx, resource, key, culture)
	if err != nil {
		return false, fmt.Errorf("deleting translation %s/%s[%s]: %w", resource, key, culture, err)
	}

	if !removed {
		return false, nil
	}

	pctx, cancel := m.postWriteContext(ctx)
	defer cancel()

	m.evict(pctx, resource, key, culture)

	if publishErr := m.publisher.PublishSingle(pctx, resource, key, culture); publishErr != nil {
		m.reportPublishFailure(pctx, resource, publishErr)
	}

	return true, nil
}

// InvalidateResource evicts every cache slot currently stored for the
// resource and broadcasts one batch carrying the complete pair list, so
// remote subscribers evict exactly the same set without re-querying the
// store.
func (m *Manager) InvalidateResource(ctx context.Context, resource string) error {
	cultures, err := m.store.DistinctCultures(ctx, resource)
	if err != nil {
		return fmt.Errorf("enumerating cultures for %q: %w", resource, err)
	}

	var pairs []Pair
	for _, culture := range cultures {
		keys, keysErr := m.store.DistinctKeys(ctx, resource, culture)
		if keysErr != nil {
			return fmt.Errorf("enumerating keys for %q culture %q: %w", resource, culture, keysErr)
		}

		for _, key := range keys {
			pairs = append(pairs, Pair{Key: key, Culture: culture})
		}
	}

	if len(pairs) == 0 {
		return nil
	}

	for _, pair := range pairs {
		m.evict(ctx, resource, pair.Key, pair.Culture)
	}

	if publishErr := m.publisher.PublishBatch(ctx, resource, pairs); publishErr != nil {
		m.reportPublishFailure(ctx, resource, publishErr)
	}

	return nil
}

// evict drops one local cache slot. Failures leave a stale entry whose
// lifetime is bounded by TTL, so they are reported, not returned.
func (m *Manager) evict(ctx context.Context, resource, key, culture string) {
	cacheKey := EncodeKey(m.opts.KeyPrefix, resource, key, culture)

	if err := m.raw.Delete(ctx, cacheKey); err != nil {
		logger := util.Log(ctx).WithField("cacheKey", cacheKey)
		logger.WithError(err).Warn("could not evict cache entry")
	}
}

// postWriteContext keeps eviction and publish running after the caller
// cancels, since the store write is already durable by then.
func (m *Manager) postWriteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	select {
	case <-ctx.Done():
		return context.WithTimeout(context.Background(), postWriteTimeout)
	default:
		return ctx, func() {}
	}
}

func (m *Manager) reportPublishFailure(ctx context.Context, resource string, err error) {
	logger := util.Log(ctx).WithField("resource", resource)
	logger.WithError(err).Warn("could not publish invalidation, remote caches expire by TTL")
}
