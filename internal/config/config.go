// Package config loads the notebox YAML configuration.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/notebox/pkg/chat"
)

// DefaultFile is looked up in the working directory when no file is named.
const DefaultFile = "notebox.yaml"

// EnvChatAPIKey overrides chat.api-key.
const EnvChatAPIKey = "NOTEBOX_CHAT_API_KEY"

// AppConfig is the full configuration.
type AppConfig struct {
	File   string       `yaml:"-"` // resolved path, empty when running on defaults
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Editor EditorConfig `yaml:"editor"`
	Chat   ChatConfig   `yaml:"chat"`
	Server ServerConfig `yaml:"server"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" default:"info"`
	// Format is text or json.
	Format string `yaml:"format" default:"text"`
}

// StoreConfig selects the persistent store.
type StoreConfig struct {
	// Adapter is fs, sqlite or memory.
	Adapter  string `yaml:"adapter" default:"fs"`
	Path     string `yaml:"path" default:".notebox"`
	History  bool   `yaml:"history"`
	ReadOnly bool   `yaml:"read-only"`
}

// EditorConfig holds note defaults and the autosave delay.
type EditorConfig struct {
	AutosaveDelay   string `yaml:"autosave-delay" default:"5s"`
	UntitledTitle   string `yaml:"untitled-title" default:"Untitled"`
	DefaultNotebook string `yaml:"default-notebook" default:"Default"`
	PreviewLength   int    `yaml:"preview-length" default:"60"`
	DateLayout      string `yaml:"date-layout" default:"2006/1/2"`
}

// ChatConfig configures the chat-completions endpoint.
type ChatConfig struct {
	Endpoint      string  `yaml:"endpoint" default:"https://api.siliconflow.cn/v1/chat/completions"`
	APIKey        string  `yaml:"api-key"`
	Model         string  `yaml:"model" default:"Qwen/Qwen2.5-7B-Instruct"`
	Temperature   float64 `yaml:"temperature" default:"0.7"`
	MaxTokens     int     `yaml:"max-tokens" default:"2000"`
	Timeout       string  `yaml:"timeout" default:"60s"`
	FallbackReply string  `yaml:"fallback-reply"`
}

// ServerConfig configures `notebox serve`.
type ServerConfig struct {
	Addr    string `yaml:"addr" default:"127.0.0.1:8080"`
	RunMode string `yaml:"run-mode" default:"release"`
}

// Default returns the configuration used without a file.
func Default() *AppConfig {
	c := new(AppConfig)
	// Only fails on malformed struct tags.
	if err := defaults.Set(c); err != nil {
		panic(err)
	}
	c.applyEnv()
	return c
}

// Load reads configuration from f. An empty f tries DefaultFile and falls
// back to defaults when it does not exist; a named file must exist.
func Load(f string) (*AppConfig, error) {
	explicit := f != ""
	if !explicit {
		f = DefaultFile
	}

	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, errors.Wrap(err, "resolve config path failed")
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if os.IsNotExist(err) && !explicit {
		c.applyEnv()
		return c, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read config file failed")
	}
	c.File = realpath

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, errors.Wrap(err, "parse config file failed")
	}

	// Fill fields present in the YAML but left empty.
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "re-set default config failed")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	c.applyEnv()
	return c, nil
}

func (c *AppConfig) applyEnv() {
	if key := os.Getenv(EnvChatAPIKey); key != "" {
		c.Chat.APIKey = key
	}
}

func (c *AppConfig) validate() error {
	if _, err := time.ParseDuration(c.Editor.AutosaveDelay); err != nil {
		return errors.Wrapf(err, "invalid editor.autosave-delay %q", c.Editor.AutosaveDelay)
	}
	if _, err := time.ParseDuration(c.Chat.Timeout); err != nil {
		return errors.Wrapf(err, "invalid chat.timeout %q", c.Chat.Timeout)
	}
	switch c.Store.Adapter {
	case "fs", "sqlite", "memory":
	default:
		return errors.Errorf("unknown store.adapter %q", c.Store.Adapter)
	}
	return nil
}

// Save writes the configuration back to its file.
func (c *AppConfig) Save() error {
	if c.File == "" {
		c.File = DefaultFile
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// AutosaveDelay returns the parsed editor.autosave-delay.
func (c *AppConfig) AutosaveDelay() time.Duration {
	if d, err := time.ParseDuration(c.Editor.AutosaveDelay); err == nil && d > 0 {
		return d
	}
	return 5 * time.Second
}

// ChatClientConfig converts the chat section for chat.NewClient.
func (c *AppConfig) ChatClientConfig() chat.Config {
	timeout, err := time.ParseDuration(c.Chat.Timeout)
	if err != nil {
		timeout = 0
	}
	return chat.Config{
		Endpoint:      c.Chat.Endpoint,
		APIKey:        c.Chat.APIKey,
		Model:         c.Chat.Model,
		Temperature:   c.Chat.Temperature,
		MaxTokens:     c.Chat.MaxTokens,
		Timeout:       timeout,
		FallbackReply: c.Chat.FallbackReply,
	}
}

// LogLevel parses log.level, defaulting to info.
func (c *AppConfig) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.Log.Level))); err != nil {
		return slog.LevelInfo
	}
	return level
}
