package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env       string    `mapstructure:"env"`       // current application environment (local, dev, production etc)
	HTTP      HTTP      `mapstructure:"http"`      // http server section
	DB        DB        `mapstructure:"database"`  // database configuration section
	Session   Session   `mapstructure:"session"`   // session token section
	Attempt   Attempt   `mapstructure:"attempt"`   // test-taking section
	Assistant Assistant `mapstructure:"assistant"` // question draft assistant section
	Sweeper   Sweeper   `mapstructure:"sweeper"`   // housekeeping section
	Redis     Redis     `mapstructure:"redis"`     // optional redis for shared token revocation
	Telegram  Telegram  `mapstructure:"telegram"`  // optional result notifications
}

// HTTP contains http server parameters.
type HTTP struct {
	Address        string   `mapstructure:"address"`         // listen address, e.g. ":8080"
	AllowedOrigins []string `mapstructure:"allowed_origins"` // CORS origins
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Session contains token signing parameters.
type Session struct {
	Secret         string        `mapstructure:"-"`      // HS256 secret loaded from environment
	TTL            time.Duration `mapstructure:"ttl"`    // token lifetime
	Issuer         string        `mapstructure:"issuer"` // "iss" claim
	GoogleClientID string        `mapstructure:"-"`      // audience for Google ID tokens
}

// Attempt contains test-taking parameters.
type Attempt struct {
	TickInterval time.Duration `mapstructure:"tick_interval"` // countdown granularity
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // deadline for automatic submission writes
}

// Assistant contains text-generation parameters.
type Assistant struct {
	APIKey          string        `mapstructure:"-"`                 // loaded from environment, may be empty
	BaseURL         string        `mapstructure:"base_url"`          // endpoint root
	Model           string        `mapstructure:"model"`             // model name
	Temperature     float64       `mapstructure:"temperature"`       // sampling temperature
	MaxOutputTokens int           `mapstructure:"max_output_tokens"` // output size cap
	Timeout         time.Duration `mapstructure:"timeout"`           // http client timeout
}

// Sweeper contains housekeeping parameters.
type Sweeper struct {
	Schedule  string        `mapstructure:"schedule"`  // cron spec
	Retention time.Duration `mapstructure:"retention"` // how long finished attempts stay queryable
}

// Redis contains the optional redis connection parameters.
type Redis struct {
	URL       string `mapstructure:"-"`          // connection string loaded from environment
	KeyPrefix string `mapstructure:"key_prefix"` // namespace for keys
}

// Telegram contains optional bot credentials for result notifications.
type Telegram struct {
	APIToken    string `mapstructure:"-"`
	AdminChatID int64  `mapstructure:"admin_chat_id"`
	Debug       bool   `mapstructure:"debug"`
}

// Enabled reports whether notifications can be sent.
func (t Telegram) Enabled() bool {
	return t.APIToken != "" && t.AdminChatID != 0
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("google_client_id", "GOOGLE_CLIENT_ID")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("telegram.admin_chat_id", "TELEGRAM_ADMIN_CHAT_ID")
	_ = v.BindEnv("http.address", "HTTP_ADDRESS")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.issuer", "quizroom")
	v.SetDefault("attempt.tick_interval", "1s")
	v.SetDefault("attempt.write_timeout", "10s")
	v.SetDefault("redis.key_prefix", "quizroom:")
	v.SetDefault("assistant.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("assistant.model", "gemini-2.0-flash")
	v.SetDefault("assistant.temperature", 0.7)
	v.SetDefault("assistant.max_output_tokens", 1000)
	v.SetDefault("assistant.timeout", "60s")
	v.SetDefault("sweeper.schedule", "@every 5m")
	v.SetDefault("sweeper.retention", "1h")
	v.SetDefault("telegram.admin_chat_id", 0)
	v.SetDefault("telegram.debug", false)
}

func fromViper(v *viper.Viper) (*Config, error) {
	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.Session.Secret = v.GetString("jwt_secret")
	if cfg.Session.Secret == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.Session.GoogleClientID = v.GetString("google_client_id")
	cfg.Assistant.APIKey = v.GetString("gemini_api_key")
	cfg.Redis.URL = v.GetString("redis_url")
	cfg.Telegram.APIToken = v.GetString("telegram_api_token")

	return &cfg, nil
}
