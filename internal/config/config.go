// Package config loads and saves the nidhogg configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/classify"
	"github.com/steviee/nidhogg/pkg/mojang"
	"github.com/steviee/nidhogg/pkg/yggdrasil"
)

// Config represents the user configuration for nidhogg.
type Config struct {
	Endpoints  EndpointsConfig  `yaml:"endpoints"`
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Batch      BatchConfig      `yaml:"batch"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EndpointsConfig holds the base URLs of the three API hosts.
type EndpointsConfig struct {
	Auth    string `yaml:"auth"`
	API     string `yaml:"api"`
	Session string `yaml:"session"`
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// ClientToken must stay the same between runs for sessions to be
	// refreshable.
	ClientToken string `yaml:"client_token"`
}

// BatchConfig holds batch lookup configuration.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// ClassifierConfig overrides the 403 classification rules.
type ClassifierConfig struct {
	// ForbiddenRules replaces the default rules when not empty.
	ForbiddenRules []RuleConfig `yaml:"forbidden_rules,omitempty"`

	// ExtraForbiddenRules are evaluated after the default or replaced rules.
	ExtraForbiddenRules []RuleConfig `yaml:"extra_forbidden_rules,omitempty"`
}

// RuleConfig is one 403 classification rule. Exactly one of Cause and
// DescriptionContains must be set.
type RuleConfig struct {
	Name                string `yaml:"name"`
	Kind                string `yaml:"kind"`
	Cause               string `yaml:"cause,omitempty"`
	DescriptionContains string `yaml:"description_contains,omitempty"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible default values and a fresh
// client token.
func DefaultConfig() *Config {
	return &Config{
		Endpoints: EndpointsConfig{
			Auth:    yggdrasil.DefaultBaseURL,
			API:     mojang.DefaultAPIBaseURL,
			Session: mojang.DefaultSessionBaseURL,
		},
		HTTP: HTTPConfig{
			Timeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			ClientToken: uuid.NewString(),
		},
		Batch: BatchConfig{
			Concurrency: mojang.DefaultBatchConcurrency,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads the configuration from path.
// If the file doesn't exist, it creates a new one with defaults.
// A file without a client token gets a generated one written back.
// If the file is corrupted, it backs up the corrupted file and creates a fresh one.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	generatedToken := cfg.Auth.ClientToken
	cfg.Auth.ClientToken = ""
	if err := yaml.Unmarshal(data, cfg); err != nil {
		backupPath := path + ".corrupted"
		if backupErr := os.Rename(path, backupPath); backupErr != nil {
			return nil, fmt.Errorf("config file is corrupted and failed to create backup: %w (original error: %v)", backupErr, err)
		}

		cfg := DefaultConfig()
		if saveErr := SaveConfig(path, cfg); saveErr != nil {
			return nil, fmt.Errorf("config file was corrupted (backed up to %s), failed to save fresh config: %w (original error: %v)", backupPath, saveErr, err)
		}

		return cfg, nil
	}

	// The client token has to survive between runs.
	missingToken := cfg.Auth.ClientToken == ""
	if missingToken {
		cfg.Auth.ClientToken = generatedToken
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if missingToken {
		if err := SaveConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save client token: %w", err)
		}
	}

	return cfg, nil
}

// SaveConfig saves the configuration to path using atomic writes.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file holds the client token.
	if err := AtomicWrite(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ValidateConfig validates the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.Endpoints.Auth == "" || cfg.Endpoints.API == "" || cfg.Endpoints.Session == "" {
		return fmt.Errorf("endpoints cannot be empty")
	}

	if cfg.HTTP.Timeout < 0 {
		return fmt.Errorf("http timeout must be >= 0, got %v", cfg.HTTP.Timeout)
	}

	if cfg.Auth.ClientToken == "" {
		return fmt.Errorf("client token cannot be empty")
	}

	if cfg.Batch.Concurrency < 1 || cfg.Batch.Concurrency > 64 {
		return fmt.Errorf("batch concurrency must be between 1 and 64, got %d", cfg.Batch.Concurrency)
	}

	if _, err := cfg.ClassifierOptions(); err != nil {
		return err
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	validLevel := false
	for _, level := range validLogLevels {
		if cfg.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	return nil
}

// Rule converts r into a classifier rule.
func (r RuleConfig) Rule() (classify.Rule, error) {
	kind, ok := apierr.KindByName(r.Kind)
	if !ok {
		return classify.Rule{}, fmt.Errorf("rule %q: unknown kind %q", r.Name, r.Kind)
	}

	rule := classify.Rule{Name: r.Name, Kind: kind}
	switch {
	case r.Cause != "" && r.DescriptionContains != "":
		return classify.Rule{}, fmt.Errorf("rule %q: cause and description_contains are mutually exclusive", r.Name)
	case r.Cause != "":
		rule.Match = classify.CauseEquals(r.Cause)
	case r.DescriptionContains != "":
		rule.Match = classify.DescriptionContains(r.DescriptionContains)
	default:
		return classify.Rule{}, fmt.Errorf("rule %q: cause or description_contains is required", r.Name)
	}
	return rule, nil
}

// ClassifierOptions converts the classifier section into classify options.
func (cfg *Config) ClassifierOptions() ([]classify.Option, error) {
	var opts []classify.Option

	if len(cfg.Classifier.ForbiddenRules) > 0 {
		rules, err := convertRules(cfg.Classifier.ForbiddenRules)
		if err != nil {
			return nil, fmt.Errorf("invalid forbidden rules: %w", err)
		}
		opts = append(opts, classify.WithForbiddenRules(rules...))
	}

	if len(cfg.Classifier.ExtraForbiddenRules) > 0 {
		rules, err := convertRules(cfg.Classifier.ExtraForbiddenRules)
		if err != nil {
			return nil, fmt.Errorf("invalid extra forbidden rules: %w", err)
		}
		opts = append(opts, classify.WithExtraForbiddenRules(rules...))
	}

	return opts, nil
}

func convertRules(configs []RuleConfig) ([]classify.Rule, error) {
	rules := make([]classify.Rule, 0, len(configs))
	for _, rc := range configs {
		rule, err := rc.Rule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// YggdrasilConfig returns the authentication client configuration.
func (cfg *Config) YggdrasilConfig() (*yggdrasil.Config, error) {
	opts, err := cfg.ClassifierOptions()
	if err != nil {
		return nil, err
	}
	return &yggdrasil.Config{
		BaseURL:     cfg.Endpoints.Auth,
		Timeout:     cfg.HTTP.Timeout,
		UserAgent:   cfg.HTTP.UserAgent,
		ClientToken: cfg.Auth.ClientToken,
		Classifier:  classify.New(opts...),
	}, nil
}

// MojangConfig returns the account client configuration.
func (cfg *Config) MojangConfig() (*mojang.Config, error) {
	opts, err := cfg.ClassifierOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, classify.WithExtraForbiddenRules(mojang.IPNotSecuredRule))
	return &mojang.Config{
		APIBaseURL:       cfg.Endpoints.API,
		SessionBaseURL:   cfg.Endpoints.Session,
		Timeout:          cfg.HTTP.Timeout,
		UserAgent:        cfg.HTTP.UserAgent,
		Classifier:       classify.New(opts...),
		BatchConcurrency: cfg.Batch.Concurrency,
	}, nil
}
