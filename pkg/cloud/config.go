package cloud

import (
	"fmt"
	"os"
	"regexp"
)

var accountIDPattern = regexp.MustCompile(`^\d{12}$`)

// Config holds AWS account and client parameters.
type Config struct {
	Region    string `toml:"region"`
	AccountID string `toml:"account_id"`
	Partition string `toml:"partition"`
	Profile   string `toml:"profile"`
	Endpoint  string `toml:"endpoint"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Region    string
	AccountID string
	Partition string
	Profile   string
	Endpoint  string
}

// Finalize applies defaults, environment variable overrides, and validation.
// Region falls back to the standard AWS_REGION and AWS_DEFAULT_REGION variables.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	if c.Region == "" {
		c.Region = firstEnv("AWS_REGION", "AWS_DEFAULT_REGION")
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.AccountID != "" {
		c.AccountID = overlay.AccountID
	}
	if overlay.Partition != "" {
		c.Partition = overlay.Partition
	}
	if overlay.Profile != "" {
		c.Profile = overlay.Profile
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
}

func (c *Config) loadDefaults() {
	if c.Partition == "" {
		c.Partition = "aws"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Region != "" {
		if v := os.Getenv(env.Region); v != "" {
			c.Region = v
		}
	}
	if env.AccountID != "" {
		if v := os.Getenv(env.AccountID); v != "" {
			c.AccountID = v
		}
	}
	if env.Partition != "" {
		if v := os.Getenv(env.Partition); v != "" {
			c.Partition = v
		}
	}
	if env.Profile != "" {
		if v := os.Getenv(env.Profile); v != "" {
			c.Profile = v
		}
	}
	if env.Endpoint != "" {
		if v := os.Getenv(env.Endpoint); v != "" {
			c.Endpoint = v
		}
	}
}

func (c *Config) validate() error {
	if c.Region == "" {
		return fmt.Errorf("region required")
	}
	if c.AccountID != "" && !accountIDPattern.MatchString(c.AccountID) {
		return fmt.Errorf("invalid account_id: %q", c.AccountID)
	}
	return nil
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
