package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/docflow/pkg/cloud"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvDocflowEnv             = "DOCFLOW_ENV"
	EnvDocflowShutdownTimeout = "DOCFLOW_SHUTDOWN_TIMEOUT"
	EnvDocflowVersion         = "DOCFLOW_VERSION"

	EnvAWSRegion    = "DOCFLOW_AWS_REGION"
	EnvAWSAccountID = "DOCFLOW_AWS_ACCOUNT_ID"
	EnvAWSPartition = "DOCFLOW_AWS_PARTITION"
	EnvAWSProfile   = "DOCFLOW_AWS_PROFILE"
	EnvAWSEndpoint  = "DOCFLOW_AWS_ENDPOINT"
)

var cloudEnv = &cloud.Env{
	Region:    EnvAWSRegion,
	AccountID: EnvAWSAccountID,
	Partition: EnvAWSPartition,
	Profile:   EnvAWSProfile,
	Endpoint:  EnvAWSEndpoint,
}

// Config is the root configuration shared by the units, the invoke server,
// and the provisioning CLI.
type Config struct {
	Pipeline        PipelineConfig `toml:"pipeline"`
	AWS             cloud.Config   `toml:"aws"`
	Logging         LoggingConfig  `toml:"logging"`
	Server          ServerConfig   `toml:"server"`
	API             APIConfig      `toml:"api"`
	Deploy          DeployConfig   `toml:"deploy"`
	ShutdownTimeout string         `toml:"shutdown_timeout"`
	Version         string         `toml:"version"`
}

// Env returns the DOCFLOW_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvDocflowEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// StateMachineARN returns the explicit ARN override when set, otherwise the
// ARN built from the state machine name and the configured account.
func (c *Config) StateMachineARN() (string, error) {
	if c.Pipeline.StateMachineARN != "" {
		return c.Pipeline.StateMachineARN, nil
	}
	arn, err := c.AWS.StateMachineARN(c.Pipeline.StateMachineName)
	if err != nil {
		return "", fmt.Errorf("state machine %s: %w", c.Pipeline.StateMachineName, err)
	}
	return arn, nil
}

// Load reads .env (if present) into the process environment without
// overriding variables already set, then reads the base config (if present),
// applies any environment overlay, and finalizes all values. Inside a function
// runtime neither file exists and environment variables provide everything.
func Load() (*Config, error) {
	if _, err := os.Stat(DotEnvFile); err == nil {
		if err := godotenv.Load(DotEnvFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
		}
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Pipeline.Merge(&overlay.Pipeline)
	c.AWS.Merge(&overlay.AWS)
	c.Logging.Merge(&overlay.Logging)
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Deploy.Merge(&overlay.Deploy)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.AWS.Finalize(cloudEnv); err != nil {
		return fmt.Errorf("aws: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Deploy.Finalize(); err != nil {
		return fmt.Errorf("deploy: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvDocflowShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvDocflowVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvDocflowEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
