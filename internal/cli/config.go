package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds CLI settings. Flags override the environment.
type Config struct {
	ServerURL string `env:"TCGARENA_SERVER" envDefault:"http://localhost:8080"`
	Token     string `env:"TCGARENA_TOKEN"`
	TokenFile string `env:"TCGARENA_TOKEN_FILE"`
	Output    string `env:"TCGARENA_OUTPUT" envDefault:"text"`
}

// LoadConfig reads the CLI environment
func LoadConfig() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	if c.TokenFile == "" {
		c.TokenFile = defaultTokenFile()
	}
	return c, nil
}

// Validate checks the flag and env combination before any request is made
func (c *Config) Validate() error {
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", c.Output)
	}
	if strings.TrimSpace(c.ServerURL) == "" {
		return errors.New("server URL is required")
	}
	return nil
}

// LoadToken reads the saved session token unless one was given explicitly
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken stores the token returned by sign-in for later commands
func (c *Config) SaveToken(token string) error {
	c.Token = token

	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(c.TokenFile, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tcgarena", "token")
	}
	return filepath.Join(home, ".tcgarena", "token")
}
