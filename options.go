package lugha

import "time"

const (
	// DefaultCacheTTL bounds staleness of entries on instances that never
	// receive an invalidation message.
	DefaultCacheTTL = 30 * time.Minute

	// DefaultKeyPrefix namespaces cache entries so several applications
	// can share one cache backend.
	DefaultKeyPrefix = "lugha"
)

// Option configures resolver and manager behaviour.
type Option func(*Options)

// Options holds the recognized configuration surface of the translation
// layer.
type Options struct {
	// CacheTTL applies to every cached slot, found and not-found alike.
	CacheTTL time.Duration

	// KeyPrefix is the leading segment of every encoded cache key. It
	// must be identical on every instance sharing a cache backend,
	// otherwise invalidations will not line up.
	KeyPrefix string

	// ParentFallback enables the parent culture walk in fallback chains.
	ParentFallback bool

	// GlobalFallback is an optional single culture appended to every
	// chain before the invariant culture. Empty means unset.
	GlobalFallback string

	// SurfaceKeyOnMiss makes Localize and ResolveFormatted surface the
	// lookup key itself when the chain is exhausted; otherwise they
	// surface an empty value.
	SurfaceKeyOnMiss bool
}

// NewOptions applies the supplied options over defaults.
func NewOptions(opts ...Option) Options {
	options := Options{
		CacheTTL:         DefaultCacheTTL,
		KeyPrefix:        DefaultKeyPrefix,
		ParentFallback:   true,
		SurfaceKeyOnMiss: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	return options
}

// WithCacheTTL returns an Option to configure the per entry cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.CacheTTL = ttl
	}
}

// WithKeyPrefix returns an Option to configure the cache key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(o *Options) {
		o.KeyPrefix = prefix
	}
}

// WithParentFallback returns an Option to toggle the parent culture walk.
func WithParentFallback(enabled bool) Option {
	return func(o *Options) {
		o.ParentFallback = enabled
	}
}

// WithGlobalFallback returns an Option to configure the single global
// fallback culture.
func WithGlobalFallback(culture string) Option {
	return func(o *Options) {
		o.GlobalFallback = culture
	}
}

// WithSurfaceKeyOnMiss returns an Option to control whether unresolved
// keys are surfaced as themselves or as empty values.
func WithSurfaceKeyOnMiss(enabled bool) Option {
	return func(o *Options) {
		o.SurfaceKeyOnMiss = enabled
	}
}

// WithConfiguration returns an Option that copies the translation
// settings out of an environment backed configuration.
func WithConfiguration(cfg ConfigurationTranslation) Option {
	return func(o *Options) {
		o.CacheTTL = cfg.GetCacheTTL()
		o.KeyPrefix = cfg.GetCacheKeyPrefix()
		o.ParentFallback = cfg.ParentCultureFallback()
		o.GlobalFallback = cfg.GetGlobalFallbackCulture()
		o.SurfaceKeyOnMiss = cfg.SurfaceKeyOnMiss()
	}
}
