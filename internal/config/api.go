package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/docflow/pkg/formatting"
	"github.com/JaimeStill/docflow/pkg/middleware"
)

const (
	EnvAPIBasePath    = "DOCFLOW_API_BASE_PATH"
	EnvAPIMaxBodySize = "DOCFLOW_API_MAX_BODY_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "DOCFLOW_CORS_ENABLED",
	Origins:          "DOCFLOW_CORS_ORIGINS",
	AllowedMethods:   "DOCFLOW_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "DOCFLOW_CORS_ALLOWED_HEADERS",
	AllowCredentials: "DOCFLOW_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "DOCFLOW_CORS_MAX_AGE",
}

// APIConfig holds the invoke module's mount point, request size limit, and CORS policy.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxBodySize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}
	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/invoke"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "256KB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}

func (c *APIConfig) validate() error {
	if !strings.HasPrefix(c.BasePath, "/") || strings.Count(c.BasePath, "/") != 1 {
		return fmt.Errorf("invalid base_path: %q", c.BasePath)
	}
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("invalid max_body_size: %q", c.MaxBodySize)
	}
	return nil
}
