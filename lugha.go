// Package lugha provides culture aware translation lookup backed by an
// authoritative store, a shared cache probed along a locale fallback chain
// and a publish/subscribe protocol that invalidates cached entries across
// process instances.
//
// Reads flow Resolver -> cache -> (on miss) store -> cache. Writes flow
// Manager -> store -> local cache eviction -> invalidation broadcast.
// Each culture in a fallback chain is cached independently, including
// not-found outcomes, so a translation added for a more specific culture
// becomes visible on the next lookup without touching any other slot.
package lugha

import "context"

// InvariantCulture is the empty string root that terminates every
// fallback chain.
const InvariantCulture = ""

// Translation is a single localized value identified by its
// (resource, key, culture) triple. At most one translation exists per
// triple; the invariant culture holds the culture neutral value.
type Translation struct {
	Resource string `json:"resource"`
	Key      string `json:"key"`
	Culture  string `json:"culture"`
	Value    string `json:"value"`
}

// Pair identifies one cached translation slot within a resource. It is
// the payload element of resource scoped invalidation batches.
type Pair struct {
	Key     string `json:"key"`
	Culture string `json:"culture"`
}

// Store is the authoritative source of truth for translations.
// Absence is a first class outcome, not an error.
type Store interface {
	// FindOne fetches the translation for exactly the supplied triple.
	FindOne(ctx context.Context, resource, key, culture string) (*Translation, bool, error)

	// Upsert inserts the translation or updates its value when the
	// identity triple already exists. Idempotent by identity.
	Upsert(ctx context.Context, translation *Translation) error

	// Delete removes the matching row and reports whether one existed.
	Delete(ctx context.Context, resource, key, culture string) (bool, error)

	// DistinctCultures lists every culture that has at least one
	// translation for the resource.
	DistinctCultures(ctx context.Context, resource string) ([]string, error)

	// DistinctKeys lists every key stored for the resource and culture.
	DistinctKeys(ctx context.Context, resource, culture string) ([]string, error)

	// FindAll fetches all translations stored for the resource and culture.
	FindAll(ctx context.Context, resource, culture string) ([]*Translation, error)
}

// Publisher broadcasts cache invalidations to other process instances.
// Delivery is best effort; the write path never fails on publish errors.
type Publisher interface {
	PublishSingle(ctx context.Context, resource, key, culture string) error
	PublishBatch(ctx context.Context, resource string, pairs []Pair) error
}

// NoopPublisher satisfies Publisher when no distributed invalidation is
// configured. Staleness on other instances is then bounded by cache TTL
// alone.
type NoopPublisher struct{}

func (NoopPublisher) PublishSingle(_ context.Context, _, _, _ string) error {
	return nil
}

func (NoopPublisher) PublishBatch(_ context.Context, _ string, _ []Pair) error {
	return nil
}
