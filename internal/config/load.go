package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables (RENSHU_ prefix,
// e.g. RENSHU_SERVER_PORT) and an optional config.yaml in the working
// directory. Environment variables take precedence over file values.
// Returns a validated Config or an error naming every failing field.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults for everything that has a sane one; secrets never default.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("llm.model_name", "gemini-2.5-flash")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("session.generation_timeout_seconds", 15)
	v.SetDefault("session.reuse_pool", true)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars can carry everything.
	}

	v.SetEnvPrefix("RENSHU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so bind
	// the secret-bearing keys that have no defaults explicitly.
	for _, key := range []string{"database.url", "auth.jwt_secret", "llm.api_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make([]string, 0, len(validationErrs))
			for _, fe := range validationErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return nil, fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
