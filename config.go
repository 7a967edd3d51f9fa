package lugha

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// FromEnv convenience method to process configs.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FillEnv convenience method to fill a config object with environment data.
func FillEnv(v any) error {
	return env.Parse(v)
}

// ConfigurationDefault carries every recognized setting of the
// translation layer, filled from the environment.
type ConfigurationDefault struct {
	LogLevel      string `envDefault:"info"                      env:"LOG_LEVEL"       yaml:"log_level"`
	LogTimeFormat string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT" yaml:"log_time_format"`
	LogColored    bool   `envDefault:"true"                      env:"LOG_COLORED"     yaml:"log_colored"`

	LogShowStackTrace bool `envDefault:"false" env:"LOG_SHOW_STACK_TRACE" yaml:"log_show_stack_trace"`

	TranslationCacheTTL       string `envDefault:"30m"   env:"TRANSLATION_CACHE_TTL"        yaml:"translation_cache_ttl"`
	TranslationCacheKeyPrefix string `envDefault:"lugha" env:"TRANSLATION_CACHE_KEY_PREFIX" yaml:"translation_cache_key_prefix"`
	TranslationCacheURI       string `env:"TRANSLATION_CACHE_URI" yaml:"translation_cache_uri"`

	TranslationParentCultureFallback bool   `envDefault:"true" env:"TRANSLATION_PARENT_CULTURE_FALLBACK" yaml:"translation_parent_culture_fallback"`
	TranslationGlobalFallbackCulture string `env:"TRANSLATION_GLOBAL_FALLBACK_CULTURE" yaml:"translation_global_fallback_culture"`
	TranslationSurfaceKeyOnMiss      bool   `envDefault:"true" env:"TRANSLATION_SURFACE_KEY_ON_MISS"     yaml:"translation_surface_key_on_miss"`

	DatabasePrimaryURL []string `env:"DATABASE_URL"         yaml:"database_url"`
	DatabaseReplicaURL []string `env:"REPLICA_DATABASE_URL" yaml:"replica_database_url"`

	InvalidationQueueURL string `envDefault:"mem://lugha.invalidation" env:"INVALIDATION_QUEUE_URL" yaml:"invalidation_queue_url"`
}

type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingTimeFormat() string
	LoggingColored() bool
	LoggingShowStackTrace() bool
}

var _ ConfigurationLogLevel = new(ConfigurationDefault)

func (c *ConfigurationDefault) LoggingLevel() string {
	return c.LogLevel
}

func (c *ConfigurationDefault) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *ConfigurationDefault) LoggingColored() bool {
	return c.LogColored
}

func (c *ConfigurationDefault) LoggingShowStackTrace() bool {
	return c.LogShowStackTrace
}

// ConfigurationTranslation exposes the translation cache and fallback
// settings.
type ConfigurationTranslation interface {
	GetCacheTTL() time.Duration
	GetCacheKeyPrefix() string
	ParentCultureFallback() bool
	GetGlobalFallbackCulture() string
	SurfaceKeyOnMiss() bool
}

var _ ConfigurationTranslation = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetCacheTTL() time.Duration {
	if c.TranslationCacheTTL != "" {
		ttl, err := time.ParseDuration(c.TranslationCacheTTL)
		if err == nil {
			return ttl
		}
	}

	return DefaultCacheTTL
}

func (c *ConfigurationDefault) GetCacheKeyPrefix() string {
	if c.TranslationCacheKeyPrefix == "" {
		return DefaultKeyPrefix
	}

	return c.TranslationCacheKeyPrefix
}

func (c *ConfigurationDefault) ParentCultureFallback() bool {
	return c.TranslationParentCultureFallback
}

func (c *ConfigurationDefault) GetGlobalFallbackCulture() string {
	return c.TranslationGlobalFallbackCulture
}

func (c *ConfigurationDefault) SurfaceKeyOnMiss() bool {
	return c.TranslationSurfaceKeyOnMiss
}

type ConfigurationCache interface {
	GetCacheURI() string
}

var _ ConfigurationCache = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetCacheURI() string {
	return c.TranslationCacheURI
}

type ConfigurationDatabase interface {
	GetDatabasePrimaryHostURL() []string
	GetDatabaseReplicaHostURL() []string
}

var _ ConfigurationDatabase = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetDatabasePrimaryHostURL() []string {
	return c.DatabasePrimaryURL
}

func (c *ConfigurationDefault) GetDatabaseReplicaHostURL() []string {
	return c.DatabaseReplicaURL
}

type ConfigurationInvalidation interface {
	GetInvalidationQueueURL() string
}

var _ ConfigurationInvalidation = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetInvalidationQueueURL() string {
	return c.InvalidationQueueURL
}
