package lugha

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/pitabwire/util"

	"github.com/pitabwire/lugha/cache"
)

// ErrFormatMismatch reports a ResolveFormatted call whose arguments do
// not match the resolved format string. A malformed call site is a
// programming error, not a runtime condition to mask.
var ErrFormatMismatch = errors.New("format and arguments mismatch")

// formatErrorMarker matches fmt's inline error notation, "%!(" or
// "%!v(" for some verb letter. A translation whose legitimate output
// contains that exact shape would still be flagged; fmt offers no
// structured error reporting to distinguish the two.
var formatErrorMarker = regexp.MustCompile(`%![A-Za-z]?\(`)

// lookupOutcome is the cached state of one per culture probe. Not-found
// outcomes are cached too, so missing combinations do not keep hitting
// the store within the TTL window.
type lookupOutcome struct {
	Value string `json:"value"`
	Found bool   `json:"found"`
}

// Resolver answers lookups for (resource, key) under an explicit active
// culture. Each culture along the fallback chain is cached in its own
// slot, so chains that share a prefix reuse each other's probes and a
// translation added for a more specific culture becomes visible on the
// next exact culture miss without wider invalidation.
//
// The resolver holds no state of its own; coalescing of concurrent
// misses is delegated to the cache loader.
type Resolver struct {
	store  Store
	loader *cache.Loader[lookupOutcome]
	opts   Options
}

// NewResolver creates a resolver over the authoritative store and the
// supplied cache backend.
func NewResolver(store Store, raw cache.RawCache, opts ...Option) *Resolver {
	return &Resolver{
		store:  store,
		loader: cache.NewLoader[lookupOutcome](raw),
		opts:   NewOptions(opts...),
	}
}

// Chain returns the fallback chain probed for the supplied culture.
func (r *Resolver) Chain(activeCulture string) []string {
	return FallbackChain(activeCulture, r.opts.ParentFallback, r.opts.GlobalFallback)
}

// Resolve walks the fallback chain for the active culture and returns
// the first value found. Chain exhaustion is reported as found=false,
// never as an error; store failures abort the lookup.
func (r *Resolver) Resolve(ctx context.Context, activeCulture, resource, key string) (string, bool, error) {
	for _, culture := range r.Chain(activeCulture) {
		outcome, err := r.probe(ctx, resource, key, culture)
		if err != nil {
			return "", false, err
		}

		if outcome.Found {
			return outcome.Value, true, nil
		}
	}

	return "", false, nil
}

// Localize is the display convenience over Resolve: on a miss it
// surfaces the key itself or an empty string per configuration, and on
// store failure it logs and degrades to the miss policy.
func (r *Resolver) Localize(ctx context.Context, activeCulture, resource, key string) string {
	value, found, err := r.Resolve(ctx, activeCulture, resource, key)
	if err != nil {
		logger := util.Log(ctx).WithField("resource", resource).WithField("key", key)
		logger.WithError(err).Error("could not resolve translation")
	}

	if found {
		return value
	}

	if r.opts.SurfaceKeyOnMiss {
		return key
	}

	return ""
}

// ResolveFormatted resolves the raw format string for (resource, key)
// and applies positional substitution. A missing raw string yields the
// key as format or a miss, per configuration; argument mismatches
// surface as ErrFormatMismatch.
func (r *Resolver) ResolveFormatted(
	ctx context.Context,
	activeCulture, resource, key string,
	args ...any,
) (string, bool, error) {
	format, found, err := r.Resolve(ctx, activeCulture, resource, key)
	if err != nil {
		return "", false, err
	}

	if !found {
		if !r.opts.SurfaceKeyOnMiss {
			return "", false, nil
		}
		format = key
	}

	formatted := fmt.Sprintf(format, args...)
	if formatErrorMarker.MatchString(formatted) {
		return "", found, fmt.Errorf("formatting %q with %d argument(s): %w",
			format, len(args), ErrFormatMismatch)
	}

	return formatted, found, nil
}

// ResolveAll enumerates every key stored for the resource, merged along
// the chain with first occurrence winning. When includeParentCultures is
// false only the active culture and the configured fallbacks are read.
// This path serves bulk export and deliberately bypasses the cache.
func (r *Resolver) ResolveAll(
	ctx context.Context,
	activeCulture, resource string,
	includeParentCultures bool,
) (map[string]string, error) {
	cultures := FallbackChain(activeCulture, includeParentCultures && r.opts.ParentFallback, r.opts.GlobalFallback)

	merged := make(map[string]string)
	for _, culture := range cultures {
		translations, err := r.store.FindAll(ctx, resource, culture)
		if err != nil {
			return nil, fmt.Errorf("enumerating %q strings for culture %q: %w", resource, culture, err)
		}

		for _, translation := range translations {
			if _, ok := merged[translation.Key]; !ok {
				merged[translation.Key] = translation.Value
			}
		}
	}

	return merged, nil
}

// probe asks the cache for the slot of exactly one (resource, key,
// culture) triple, falling through to the store on a miss. Both found
// and not-found outcomes are stored with the configured TTL.
func (r *Resolver) probe(ctx context.Context, resource, key, culture string) (lookupOutcome, error) {
	cacheKey := EncodeKey(r.opts.KeyPrefix, resource, key, culture)

	return r.loader.GetOrCompute(ctx, cacheKey, r.opts.CacheTTL,
		func(ctx context.Context) (lookupOutcome, error) {
			translation, found, err := r.store.FindOne(ctx, resource, key, culture)
			if err != nil {
				return lookupOutcome{}, err
			}

			if !found {
				return lookupOutcome{}, nil
			}

			return lookupOutcome{Value: translation.Value, Found: true}, nil
		})
}
