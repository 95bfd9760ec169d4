package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/frontgen/internal/core"
)

// APIKeyEnv is the environment variable holding the hosted API credential.
const APIKeyEnv = "OPENAI_API_KEY"

type Config struct {
	AI      AIConfig      `yaml:"ai" validate:"required"`
	Local   LocalConfig   `yaml:"local"`
	Limits  Limits        `yaml:"limits" validate:"required"`
	Logging LoggingConfig `yaml:"logging"`
}

type AIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url" validate:"required,url"`
	Timeout int    `yaml:"timeout" validate:"required,min=10,max=3600"`
}

// LocalConfig configures the Ollama backend. An empty Host falls back to
// OLLAMA_HOST and then the Ollama default.
type LocalConfig struct {
	Host string  `yaml:"host" validate:"omitempty,url"`
	TopP float64 `yaml:"top_p" validate:"min=0,max=1"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		AI: AIConfig{
			BaseURL: "https://api.openai.com/v1",
			Timeout: 600,
		},
		Local: LocalConfig{
			TopP: 0.95,
		},
		Limits: DefaultLimits(),
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load reads the YAML config at path, or the default location when path is
// empty. A missing file is not an error. The API key is taken from
// OPENAI_API_KEY (after loading .env) when the file leaves it unset.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = getConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(expandTilde(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.AI.APIKey == "" || cfg.AI.APIKey == "${"+APIKeyEnv+"}" {
		cfg.AI.APIKey = os.Getenv(APIKeyEnv)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// RequireAPIKey fails with core.ErrNoAPIKey when no credential is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.AI.APIKey) == "" {
		return fmt.Errorf("%w: set %s", core.ErrNoAPIKey, APIKeyEnv)
	}
	return nil
}

func getConfigPath() string {
	if path := os.Getenv("FRONTGEN_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "frontgen", "config.yaml")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "frontgen", "config.yaml")
}

// expandTilde expands a tilde (~) at the beginning of a path to the user's home directory
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func (c *Config) validate() error {
	if c.Logging.File != "" {
		c.Logging.File = expandTilde(c.Logging.File)
	}

	if c.Limits.RateLimit.RequestsPerMinute == 0 {
		c.Limits.RateLimit = DefaultLimits().RateLimit
	}
	if c.Limits.ReviewPreviewChars == 0 {
		c.Limits.ReviewPreviewChars = DefaultLimits().ReviewPreviewChars
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}
