package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	StrategyRoundRobin = "round-robin"
	StrategyRandom     = "random"
)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

// FixtureConfig is the identity of one echo fixture. Name appears in the
// "backend" response field, DisplayName in the "message" field.
type FixtureConfig struct {
	Name        string `mapstructure:"name"`
	DisplayName string `mapstructure:"display_name"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
}

type UpstreamConfig struct {
	URL string `mapstructure:"url"`
}

type StrategyConfig struct {
	Type string `mapstructure:"type"`
}

type HealthCheckConfig struct {
	Interval string `mapstructure:"interval"`
}

type RateLimitConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MaxRequests int    `mapstructure:"max_requests"`
	Window      string `mapstructure:"window"`
}

type CircuitBreakerConfig struct {
	FailureThreshold int    `mapstructure:"failure_threshold"`
	ResetTimeout     string `mapstructure:"reset_timeout"`
}

type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Fixtures       []FixtureConfig      `mapstructure:"fixtures"`
	Upstreams      []UpstreamConfig     `mapstructure:"upstreams"`
	Strategy       StrategyConfig       `mapstructure:"strategy"`
	HealthCheck    HealthCheckConfig    `mapstructure:"health_check"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

// Load reads config.yaml (from ./config or the working directory) merged
// with environment variables. The defaults reproduce the reference setup:
// backend1 on 127.0.0.1:8000, backend2 on 127.0.0.1:8001, the gateway in
// front of both on 127.0.0.1:8080. All three binaries run fine with no
// config file present.
func Load() (*Config, error) {
	viper.SetDefault("server.address", "127.0.0.1:8080")
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("fixtures", []map[string]any{
		{"name": "backend1", "display_name": "Backend 1", "host": "127.0.0.1", "port": 8000},
		{"name": "backend2", "display_name": "Backend 2", "host": "127.0.0.1", "port": 8001},
	})
	viper.SetDefault("upstreams", []map[string]any{
		{"url": "http://127.0.0.1:8000"},
		{"url": "http://127.0.0.1:8001"},
	})
	viper.SetDefault("strategy.type", StrategyRoundRobin)
	viper.SetDefault("health_check.interval", "2s")
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.max_requests", 100)
	viper.SetDefault("rate_limit.window", "1s")
	viper.SetDefault("circuit_breaker.failure_threshold", 5)
	viper.SetDefault("circuit_breaker.reset_timeout", "30s")
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.endpoint", "/metrics")
	viper.SetDefault("logging.level", LogLevelInfo)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// Fixture returns the identity configured under the given name.
func (c *Config) Fixture(name string) (FixtureConfig, error) {
	for _, f := range c.Fixtures {
		if f.Name == name {
			return f, nil
		}
	}
	return FixtureConfig{}, fmt.Errorf("no fixture named %q in configuration", name)
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Fixtures,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateFixture)),
		),
		validation.Field(&c.Upstreams,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateUpstream)),
		),
		validation.Field(&c.Strategy,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(StrategyConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a StrategyConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Type,
						validation.Required,
						validation.In(StrategyRoundRobin, StrategyRandom),
					),
				)
			}),
		),
		validation.Field(&c.HealthCheck,
			validation.Required,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HealthCheckConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a HealthCheckConfig")
				}
				return validation.ValidateStruct(&hc,
					validation.Field(&hc.Interval,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.RateLimit,
			validation.By(func(value interface{}) error {
				rl, ok := value.(RateLimitConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a RateLimitConfig")
				}
				if !rl.Enabled {
					return nil
				}
				return validation.ValidateStruct(&rl,
					validation.Field(&rl.MaxRequests,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&rl.Window,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.CircuitBreaker,
			validation.Required,
			validation.By(func(value interface{}) error {
				cb, ok := value.(CircuitBreakerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a CircuitBreakerConfig")
				}
				return validation.ValidateStruct(&cb,
					validation.Field(&cb.FailureThreshold,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&cb.ResetTimeout,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Metrics,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MetricsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MetricsConfig")
				}
				if !mc.Enabled {
					return nil
				}
				if !strings.HasPrefix(mc.Endpoint, "/") {
					return validation.NewError("validation_invalid_endpoint", "metrics endpoint must start with /")
				}
				return nil
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := time.ParseDuration(durationStr); err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	return nil
}

func validateUpstream(value interface{}) error {
	upstream, ok := value.(UpstreamConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be an UpstreamConfig")
	}

	if upstream.URL == "" {
		return validation.NewError("validation_empty_url", "upstream URL cannot be empty")
	}

	parsedURL, err := url.Parse(upstream.URL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

func validateFixture(value interface{}) error {
	fixture, ok := value.(FixtureConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a FixtureConfig")
	}

	if fixture.Name == "" {
		return validation.NewError("validation_empty_name", "fixture name cannot be empty")
	}

	if fixture.Host == "" {
		return validation.NewError("validation_empty_host", "fixture host cannot be empty")
	}

	if err := is.Host.Validate(fixture.Host); err != nil {
		return validation.NewError("validation_invalid_host", "invalid fixture host")
	}

	if fixture.Port < 1 || fixture.Port > 65535 {
		return validation.NewError("validation_invalid_port", "fixture port must be between 1 and 65535")
	}

	return nil
}
