// Package config loads fixgen configuration from a YAML file, FIXGEN_*
// environment variables, and command-line overrides, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when no --config flag is given.
// Its absence is not an error; built-in defaults and the environment apply.
const DefaultPath = "fixgen.yaml"

// Build configures the parser project's build step. An empty command skips
// the step (prebuilt parser).
type Build struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Dir     string   `yaml:"dir"`
}

// Parser configures the external parser command. The command receives
// fixture source on stdin and prints the serialized AST on stdout.
type Parser struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout string   `yaml:"timeout"` // per-file, e.g. "30s"; empty disables
}

// Upload configures optional artifact upload. Settings are passed through to
// the named provider.
type Upload struct {
	Provider string         `yaml:"provider"`
	Settings map[string]any `yaml:"settings"`
}

// Enabled reports whether artifact upload is configured.
func (u *Upload) Enabled() bool { return u.Provider != "" }

// Webhook configures the optional completion notification.
type Webhook struct {
	URL        string `yaml:"url"`
	AuthType   string `yaml:"auth_type"` // none, bearer, api-key
	AuthToken  string `yaml:"auth_token"`
	Timeout    string `yaml:"timeout"`     // total, including retries
	Retries    int    `yaml:"retries"`     // maximum retry attempts
	RetryDelay string `yaml:"retry_delay"` // initial backoff delay
}

// Enabled reports whether a webhook is configured.
func (w *Webhook) Enabled() bool { return w.URL != "" }

// Config is the full tool configuration.
type Config struct {
	Root      string  `yaml:"root"`
	Extension string  `yaml:"extension"`
	Build     Build   `yaml:"build"`
	Parser    Parser  `yaml:"parser"`
	Upload    Upload  `yaml:"upload"`
	Webhook   Webhook `yaml:"webhook"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Root:      "fixtures",
		Extension: ".td",
		Parser:    Parser{Timeout: "30s"},
		Webhook: Webhook{
			AuthType:   "none",
			Timeout:    "30s",
			Retries:    3,
			RetryDelay: "1s",
		},
	}
}

// Load reads the config file at path over the defaults and applies
// environment overrides. The file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadDefault loads DefaultPath if present, otherwise just defaults plus
// environment overrides.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat(DefaultPath); err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	return Load(DefaultPath)
}

// Validate checks the configuration and normalizes the extension.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if c.Extension == "" {
		return fmt.Errorf("extension is required")
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.Parser.Command == "" {
		return fmt.Errorf("parser.command is required")
	}
	if _, err := c.ParserTimeout(); err != nil {
		return err
	}
	if c.Webhook.Enabled() {
		switch c.Webhook.AuthType {
		case "", "none", "bearer", "api-key":
		default:
			return fmt.Errorf("webhook.auth_type must be none, bearer, or api-key")
		}
		if c.Webhook.Retries < 0 {
			return fmt.Errorf("webhook.retries must not be negative")
		}
		for _, d := range []struct{ name, value string }{
			{"webhook.timeout", c.Webhook.Timeout},
			{"webhook.retry_delay", c.Webhook.RetryDelay},
		} {
			if d.value == "" {
				continue
			}
			if _, err := time.ParseDuration(d.value); err != nil {
				return fmt.Errorf("invalid %s: %w", d.name, err)
			}
		}
	}
	return nil
}

// ParserTimeout parses the per-file timeout. Zero means no timeout.
func (c *Config) ParserTimeout() (time.Duration, error) {
	if c.Parser.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.Parser.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid parser.timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("parser.timeout must not be negative")
	}
	return timeout, nil
}
