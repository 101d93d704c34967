package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/stockwatch/pkg/constants"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// Loader reads configuration from file and environment and can watch the file for changes.
type Loader struct {
	v   *viper.Viper
	log logger.Logger
}

// NewLoader creates a Loader. Extra search paths are consulted before the defaults.
func NewLoader(log logger.Logger, paths ...string) *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("/etc/stockwatch/")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STOCKWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Environment names used by earlier deployments.
	_ = v.BindEnv("auth.secret", "STOCKWATCH_AUTH_SECRET", "SECRET_KEY")
	_ = v.BindEnv("market.api_key", "STOCKWATCH_MARKET_API_KEY", "FMP_API_KEY")
	_ = v.BindEnv("database.url", "STOCKWATCH_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("auth.google_client_id", "STOCKWATCH_AUTH_GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_ID")

	return &Loader{v: v, log: log}
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(log logger.Logger) (*Config, error) {
	return NewLoader(log).Load()
}

// Load reads, unmarshals and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrInvalidConfig.WithCause(err)
		}
		l.log.Debug(context.Background(), "No config file found, using defaults and environment")
	}
	return l.decode()
}

// Watch re-reads the config file on change and hands the new configuration to onChange.
// Invalid configurations are logged and ignored.
func (l *Loader) Watch(onChange func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			l.log.Warn(context.Background(), "Ignoring invalid configuration change",
				logger.String("file", e.Name), logger.Error(err))
			return
		}
		l.log.Info(context.Background(), "Configuration reloaded", logger.String("file", e.Name))
		onChange(cfg)
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrInvalidConfig.WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit_rps", 20.0)
	v.SetDefault("server.rate_limit_burst", 40)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "stockwatch.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", 30)

	v.SetDefault("redis.addresses", []string{})
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.mount_path", "secret")
	v.SetDefault("vault.secret_path", "")
	v.SetDefault("vault.secret_key", "signing_secret")

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", constants.DefaultTokenTTL)
	v.SetDefault("auth.google_client_id", "")
	v.SetDefault("auth.identity_claim", constants.ClaimGoogleID)

	v.SetDefault("cache.backend", constants.CacheBackendMemory)
	v.SetDefault("cache.max_entries", constants.DefaultCacheMaxEntries)
	v.SetDefault("cache.default_ttl", constants.DefaultCacheTTL)
	v.SetDefault("cache.single_flight", true)
	v.SetDefault("cache.user_ttl", constants.DefaultUserCacheTTL)

	v.SetDefault("market.base_url", constants.DefaultFMPBaseURL)
	v.SetDefault("market.api_key", "")
	v.SetDefault("market.timeout", constants.UpstreamTimeout)
	v.SetDefault("market.max_retries", 2)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "stockwatch.events")
	v.SetDefault("kafka.write_timeout", "5s")
	v.SetDefault("kafka.batch_timeout", "50ms")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.service_name", "stockwatch")
	v.SetDefault("tracing.sampling_rate", 1.0)
}

//Personal.AI order the ending
