package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Provider     ProviderConfig     `mapstructure:"provider"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	History      HistoryConfig      `mapstructure:"history"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ProviderConfig holds the LLM provider configuration
type ProviderConfig struct {
	Type    string `mapstructure:"type"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// ConversationConfig holds the conversation and animation configuration.
// An empty LoadingMessage disables the loading-animation path entirely.
type ConversationConfig struct {
	SystemPrompt   string `mapstructure:"system_prompt"`
	IntroMessage   string `mapstructure:"intro_message"`
	Preface        string `mapstructure:"preface"`
	LoadingMessage string `mapstructure:"loading_message"`
	WordDelayMs    int    `mapstructure:"word_delay_ms"`
	CharDelayMs    int    `mapstructure:"char_delay_ms"`
	DotIntervalMs  int    `mapstructure:"dot_interval_ms"`
	MaxDotCount    int    `mapstructure:"max_dot_count"`
	WrapWidth      int    `mapstructure:"wrap_width"`
}

// HistoryConfig holds the transcript persistence configuration
type HistoryConfig struct {
	DBPath    string `mapstructure:"db_path"`
	SessionID string `mapstructure:"session_id"`
}

// LoggingConfig holds the logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// WordDelay returns the per-word fake stream delay.
func (c ConversationConfig) WordDelay() time.Duration {
	if c.WordDelayMs <= 0 {
		return 80 * time.Millisecond
	}
	return time.Duration(c.WordDelayMs) * time.Millisecond
}

// CharDelay returns the reverse stream delay.
func (c ConversationConfig) CharDelay() time.Duration {
	if c.CharDelayMs <= 0 {
		return 80 * time.Millisecond
	}
	return time.Duration(c.CharDelayMs) * time.Millisecond
}

// DotInterval returns the waiting-indicator tick interval.
func (c ConversationConfig) DotInterval() time.Duration {
	if c.DotIntervalMs <= 0 {
		return 400 * time.Millisecond
	}
	return time.Duration(c.DotIntervalMs) * time.Millisecond
}

// MaxDots returns the configured dot ceiling.
func (c ConversationConfig) MaxDots() int {
	if c.MaxDotCount <= 0 {
		return 3
	}
	return c.MaxDotCount
}

// Load loads the configuration from config.yaml, or from the file named by
// the CONFIG_PATH environment variable when set.
func Load() (*Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
