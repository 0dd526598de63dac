package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds the application configuration.
type Settings struct {
	HTTPPort  int    `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	OpenAIAPIKey     string   `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL    string   `envconfig:"OPENAI_BASE_URL"`
	AnthropicAPIKey  string   `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string   `envconfig:"ANTHROPIC_BASE_URL"`
	GeminiAPIKeys    []string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL    string   `envconfig:"GEMINI_BASE_URL"`
	QwenAPIKey       string   `envconfig:"QWEN_API_KEY"`
	QwenBaseURL      string   `envconfig:"QWEN_BASE_URL"`

	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"45s"`

	HistoryBackend string `envconfig:"HISTORY_BACKEND" default:"memory"`
	HistoryKey     string `envconfig:"HISTORY_KEY" default:"maano:history"`
	HistoryLimit   int    `envconfig:"HISTORY_LIMIT" default:"500"`
	SaverBuffer    int    `envconfig:"SAVER_BUFFER" default:"256"`
	SaverWorkers   int    `envconfig:"SAVER_WORKERS" default:"2"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	AuthSecret       string        `envconfig:"AUTH_SECRET"`
	AuthTokenTTL     time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
	AuthDemoEmail    string        `envconfig:"AUTH_DEMO_EMAIL"`
	AuthDemoPassword string        `envconfig:"AUTH_DEMO_PASSWORD"`
}

// AuthEnabled reports whether bearer tokens are required on protected routes.
func (s *Settings) AuthEnabled() bool {
	return s.AuthSecret != ""
}

// LoginEnabled reports whether the demo login endpoint can issue tokens.
func (s *Settings) LoginEnabled() bool {
	return s.AuthEnabled() && s.AuthDemoEmail != "" && s.AuthDemoPassword != ""
}

// Parse reads configuration from the environment, after loading the dotenv
// files in envFiles that exist.
func Parse(envFiles ...string) (*Settings, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var s Settings
	if err := envconfig.Process("maano", &s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	switch strings.ToLower(s.HistoryBackend) {
	case "noop", "memory", "redis":
	default:
		return fmt.Errorf("unsupported history backend %q", s.HistoryBackend)
	}
	if s.ProviderTimeout < 0 {
		return errors.New("provider timeout must not be negative")
	}
	if s.SaverWorkers < 1 {
		return errors.New("saver workers must be at least 1")
	}
	return nil
}

// Load reads configuration from ".env" (if present) and the environment.
func Load() *Settings {
	s, err := Parse(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return s
}
