// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// LLM providers.
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
)

// Config is the full service configuration.
type Config struct {
	Port        int    `validate:"min=1,max=65535"`
	LogLevel    string `validate:"oneof=trace debug info warn error"`
	LogPretty   bool
	APIKeys     []string
	DatabaseURL string
	CORSOrigins []string `validate:"min=1,dive,required"`

	LLM   LLMConfig
	Pool  PoolConfig
	Cache CacheConfig
}

// LLMConfig selects and tunes the chat completion provider.
type LLMConfig struct {
	Provider     string `validate:"oneof=google openai"`
	GeminiAPIKey string `validate:"required_if=Provider google"`
	OpenAIAPIKey string `validate:"required_if=Provider openai"`
	VisionModel  string `validate:"required"`
	TextModel    string `validate:"required"`
	Attempts     int    `validate:"min=1,max=5"`
}

// PoolConfig sizes the render pool and bounds navigation.
type PoolConfig struct {
	ChromePath  string
	MaxPages    int           `validate:"min=1"`
	RetireAfter int           `validate:"min=1"`
	NavTimeout  time.Duration `validate:"min=1s"`
}

// CacheConfig bounds the extracted-styles cache. Size 0 disables it.
type CacheConfig struct {
	Size int           `validate:"min=0"`
	TTL  time.Duration `validate:"min=0"`
}

// Enabled reports whether extraction results are cached.
func (c CacheConfig) Enabled() bool { return c.Size > 0 && c.TTL > 0 }

var defaultModels = map[string][2]string{
	ProviderGoogle: {"gemini-2.5-flash", "gemini-2.5-flash"},
	ProviderOpenAI: {"gpt-4o", "gpt-4o-mini"},
}

// Load reads .env files (if present) and the environment, then validates the result.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	r := reader{getenv: getenv}

	provider := strings.ToLower(r.str("LLM_PROVIDER", ProviderGoogle))
	models := defaultModels[provider]

	cfg := &Config{
		Port:        r.int("PORT", 8080),
		LogLevel:    strings.ToLower(r.str("LOG_LEVEL", "info")),
		LogPretty:   r.bool("LOG_PRETTY", false),
		APIKeys:     r.list("API_KEYS"),
		DatabaseURL: r.str("DATABASE_URL", ""),
		CORSOrigins: r.list("CORS_ORIGINS"),
		LLM: LLMConfig{
			Provider:     provider,
			GeminiAPIKey: r.str("GEMINI_API_KEY", ""),
			OpenAIAPIKey: r.str("OPENAI_API_KEY", ""),
			VisionModel:  r.str("VISION_MODEL", models[0]),
			TextModel:    r.str("TEXT_MODEL", models[1]),
			Attempts:     r.int("LLM_ATTEMPTS", 2),
		},
		Pool: PoolConfig{
			ChromePath:  r.str("CHROME_PATH", ""),
			MaxPages:    r.int("POOL_MAX_PAGES", 2),
			RetireAfter: r.int("POOL_RETIRE_AFTER", 50),
			NavTimeout:  r.duration("NAV_TIMEOUT", 15*time.Second),
		},
		Cache: CacheConfig{
			Size: r.int("EXTRACT_CACHE_SIZE", 64),
			TTL:  r.duration("EXTRACT_CACHE_TTL", 10*time.Minute),
		},
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// AuthEnabled reports whether requests must carry an API key.
func (c *Config) AuthEnabled() bool { return len(c.APIKeys) > 0 }

// PersistenceEnabled reports whether generated templates are stored.
func (c *Config) PersistenceEnabled() bool { return c.DatabaseURL != "" }

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

type reader struct {
	getenv func(string) string
	errs   []error
}

func (r *reader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, raw))
		return def
	}
	return n
}

func (r *reader) bool(key string, def bool) bool {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a boolean", key, raw))
		return def
	}
	return b
}

// duration accepts Go durations ("15s") or a bare number of seconds.
func (r *reader) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(r.getenv(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a duration", key, raw))
		return def
	}
	return d
}

func (r *reader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(r.getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
