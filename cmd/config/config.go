package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`

	Database struct {
		Dialect string `mapstructure:"dialect"`
		DSN     string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`

		// FederatedSecret verifies sign-in bridge assertions. Empty disables
		// federated sign-in.
		FederatedSecret string `mapstructure:"federated_secret"`
	} `mapstructure:"auth"`

	AWS struct {
		Region   string `mapstructure:"region"`
		S3Bucket string `mapstructure:"s3_bucket"`
	} `mapstructure:"aws"`

	Feed struct {
		MaxVideos       int    `mapstructure:"max_videos"`
		DefaultTimezone string `mapstructure:"default_timezone"`
	} `mapstructure:"feed"`

	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		Channel  string `mapstructure:"channel"`
	} `mapstructure:"redis"`

	RateLimit struct {
		RPS   float64 `mapstructure:"rps"`
		Burst int     `mapstructure:"burst"`
	} `mapstructure:"ratelimit"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.dialect", "sqlite3")
	v.SetDefault("database.dsn", "resham.db")
	v.SetDefault("auth.token_ttl", 72*time.Hour)
	v.SetDefault("auth.federated_secret", "")
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.s3_bucket", "")
	v.SetDefault("feed.max_videos", 24)
	v.SetDefault("feed.default_timezone", "UTC")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.channel", "resham:changes")
	v.SetDefault("ratelimit.rps", 5)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads config.yaml from dir, then applies RESHAM_* environment
// overrides. A .env file in the working directory is loaded first if present.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("resham")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	switch c.Database.Dialect {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("database.dialect must be sqlite3 or postgres, got %q", c.Database.Dialect)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}
	if c.Feed.MaxVideos <= 0 {
		return fmt.Errorf("feed.max_videos must be > 0")
	}
	if _, err := time.LoadLocation(c.Feed.DefaultTimezone); err != nil {
		return fmt.Errorf("feed.default_timezone: %w", err)
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("ratelimit.rps and ratelimit.burst must be > 0")
	}
	return nil
}
