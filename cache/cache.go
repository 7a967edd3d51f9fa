// Package cache defines the byte level cache contract shared by every
// backend together with a compute-if-absent loader that coalesces
// concurrent misses.
package cache

import (
	"context"
	"time"
)

// RawCache is the low-level cache interface that works with bytes.
// Entries carry a per entry TTL and can be removed explicitly.
type RawCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Flush(ctx context.Context) error
	Close() error
}

// Option configures cache backend settings.
type Option func(*Options)

// Options holds cache backend connection configuration.
type Options struct {
	URI      string
	Password string
	DB       int
	MaxAge   time.Duration
}

// WithURI returns an Option to configure the backend connection string.
func WithURI(uri string) Option {
	return func(o *Options) {
		o.URI = uri
	}
}

// WithPassword returns an Option to configure the backend password.
func WithPassword(password string) Option {
	return func(o *Options) {
		o.Password = password
	}
}

// WithDB returns an Option to configure the backend database index.
func WithDB(db int) Option {
	return func(o *Options) {
		o.DB = db
	}
}

// WithMaxAge returns an Option to configure the default max age of
// entries written without an explicit TTL.
func WithMaxAge(maxAge time.Duration) Option {
	return func(o *Options) {
		o.MaxAge = maxAge
	}
}
