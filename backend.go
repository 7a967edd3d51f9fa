package lugha

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pitabwire/lugha/cache"
	cacheredis "github.com/pitabwire/lugha/cache/redis"
	cachevalkey "github.com/pitabwire/lugha/cache/valkey"
)

const (
	redisScheme  = "redis"
	valkeyScheme = "valkey"
)

// OpenCache creates the cache backend named by the configured URI
// scheme. An empty URI yields the process-local in-memory cache, which
// is fine for a single instance but needs the invalidation subscriber
// once more instances share the store.
func OpenCache(cfg ConfigurationCache, opts ...cache.Option) (cache.RawCache, error) {
	uri := strings.TrimSpace(cfg.GetCacheURI())
	if uri == "" {
		return cache.NewInMemoryCache(), nil
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parsing cache URI: %w", err)
	}

	options := append([]cache.Option{cache.WithURI(uri)}, opts...)

	switch {
	case strings.HasPrefix(parsed.Scheme, redisScheme):
		return cacheredis.New(options...)

	case strings.HasPrefix(parsed.Scheme, valkeyScheme):
		// The valkey client speaks the redis URL dialect.
		rewritten := redisScheme + strings.TrimPrefix(uri, valkeyScheme)
		return cachevalkey.New(append(options, cache.WithURI(rewritten))...)

	default:
		return nil, fmt.Errorf("unsupported cache URI scheme %q", parsed.Scheme)
	}
}
