// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token   string `yaml:"token"`
	Workers int    `yaml:"workers"` // polling workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // session/cart expiry
}

type AIConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"` // any OpenAI-compatible endpoint
	Model       string        `yaml:"model"`
	TokenBudget int           `yaml:"token_budget"` // history trim threshold
	Timeout     time.Duration `yaml:"timeout"`
}

type ConsultantConfig struct {
	TurnLockTTL      time.Duration `yaml:"turn_lock_ttl"`
	ReminderAfter    time.Duration `yaml:"reminder_after"`    // idle cart age before reminding
	ReminderInterval time.Duration `yaml:"reminder_interval"` // scan period
}

type OpsConfig struct {
	Port int `yaml:"port"` // health + metrics listener
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type Config struct {
	Bot        BotConfig        `yaml:"bot"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	AI         AIConfig         `yaml:"ai"`
	Consultant ConsultantConfig `yaml:"consultant"`
	Ops        OpsConfig        `yaml:"ops"`
	Security   SecurityConfig   `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.TokenBudget <= 0 {
		cfg.AI.TokenBudget = 6000
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 30 * time.Second
	}
	if cfg.Consultant.TurnLockTTL <= 0 {
		cfg.Consultant.TurnLockTTL = 2 * time.Minute
	}
	if cfg.Consultant.ReminderAfter <= 0 {
		cfg.Consultant.ReminderAfter = 30 * time.Minute
	}
	if cfg.Consultant.ReminderInterval <= 0 {
		cfg.Consultant.ReminderInterval = 10 * time.Minute
	}
	if cfg.Ops.Port == 0 {
		cfg.Ops.Port = 9090
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.AI.APIKey == "" {
		return nil, errors.New("ai.api_key is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
