// Package config loads and validates application configuration from
// environment variables and optional config files.
package config

// Config holds all application configuration, organized into logical
// groups.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Session  SessionConfig  `mapstructure:"session"`
}

// ServerConfig contains server-related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains token verification settings. Token issuance belongs
// to the external auth service; this server only verifies.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// LLMConfig contains generation provider settings.
type LLMConfig struct {
	APIKey            string `mapstructure:"api_key"             validate:"required"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}

// SessionConfig contains session composition settings.
type SessionConfig struct {
	// GenerationTimeoutSeconds bounds the provider call during session
	// composition; on expiry the composer falls back to local content.
	GenerationTimeoutSeconds int `mapstructure:"generation_timeout_seconds" validate:"gte=1,lte=120"`

	// ReusePool enables topping up sessions from the shared content pool
	// before calling the provider.
	ReusePool bool `mapstructure:"reuse_pool"`
}
