// Package config loads the agent configuration from a config file, a .env file and
// AGENTIC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "AGENTIC"

	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"

	ModeReAct  = "react"
	ModeSingle = "single"

	MinIterations = 1
	MaxIterations = 100
)

// Config stores all configuration of the application.
type Config struct {
	Model      ModelConfig      `mapstructure:"model"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Transcript TranscriptConfig `mapstructure:"transcript"`
	Log        LogConfig        `mapstructure:"log"`
}

// ModelConfig selects and configures the model backend.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"`    // "ollama", "anthropic"
	Name        string  `mapstructure:"name"`        // Model identifier passed to the backend
	Host        string  `mapstructure:"host"`        // Ollama server address
	APIKey      string  `mapstructure:"api_key"`     // Anthropic API key
	MaxTokens   int64   `mapstructure:"max_tokens"`  // Completion token limit
	Temperature float64 `mapstructure:"temperature"` // Sampling temperature
}

// AgentConfig configures the conversation controller.
type AgentConfig struct {
	Mode          string `mapstructure:"mode"`           // "react", "single"
	MaxIterations int    `mapstructure:"max_iterations"` // Iteration bound of the react loop
	StrictTypes   bool   `mapstructure:"strict_types"`   // Validate argument types against declared parameter types
}

// TranscriptConfig configures conversation persistence.
type TranscriptConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads configuration from configPath (optional), a .env file in the working
// directory (optional) and environment variables, in increasing order of precedence.
// AGENTIC_MODEL_NAME overrides model.name; ANTHROPIC_API_KEY also sets model.api_key.
func Load(configPath string) (*Config, error) {
	// Load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("agentic")
	}

	v.SetDefault("model.provider", ProviderOllama)
	v.SetDefault("model.name", "llama3.1")
	v.SetDefault("model.host", "http://localhost:11434")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.max_tokens", 1024)
	v.SetDefault("model.temperature", 0.5)

	v.SetDefault("agent.mode", ModeReAct)
	v.SetDefault("agent.max_iterations", 20)
	v.SetDefault("agent.strict_types", false)

	v.SetDefault("transcript.enabled", false)
	v.SetDefault("transcript.dsn", "transcript.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// Replace dots with underscores in env var names e.g. model.api_key becomes AGENTIC_MODEL_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("model.api_key", EnvPrefix+"_MODEL_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.clamp()
	return &cfg, nil
}

func (c *Config) clamp() {
	switch n := c.Agent.MaxIterations; {
	case n < MinIterations:
		log.Warn().Int("max_iterations", n).Int("clamped_to", MinIterations).Msg("agent.max_iterations out of range")
		c.Agent.MaxIterations = MinIterations
	case n > MaxIterations:
		log.Warn().Int("max_iterations", n).Int("clamped_to", MaxIterations).Msg("agent.max_iterations out of range")
		c.Agent.MaxIterations = MaxIterations
	}
}

// Validate reports configuration values no component can work with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Model.Provider {
	case ProviderOllama:
	case ProviderAnthropic:
		if c.Model.APIKey == "" {
			errs = append(errs, errors.New("model.api_key (or ANTHROPIC_API_KEY) is required for the anthropic provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown model.provider %q", c.Model.Provider))
	}
	if c.Model.Name == "" {
		errs = append(errs, errors.New("model.name is required"))
	}
	if c.Agent.Mode != ModeReAct && c.Agent.Mode != ModeSingle {
		errs = append(errs, fmt.Errorf("unknown agent.mode %q", c.Agent.Mode))
	}
	if c.Transcript.Enabled && c.Transcript.DSN == "" {
		errs = append(errs, errors.New("transcript.dsn is required when transcript.enabled is set"))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log.level: %w", err))
	}
	return errors.Join(errs...)
}

// Logger builds the process logger. Output goes to w, or stderr when w is nil.
func (l LogConfig) Logger(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if l.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
