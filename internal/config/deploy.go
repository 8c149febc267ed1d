package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	EnvDeployLambdaRole       = "DOCFLOW_DEPLOY_LAMBDA_ROLE"
	EnvDeployStatesRole       = "DOCFLOW_DEPLOY_STATES_ROLE"
	EnvDeployArtifact         = "DOCFLOW_DEPLOY_ARTIFACT"
	EnvDeployBucket           = "DOCFLOW_DEPLOY_BUCKET"
	EnvDeployTriggerFunction  = "DOCFLOW_DEPLOY_TRIGGER_FUNCTION"
	EnvDeployExtractFunction  = "DOCFLOW_DEPLOY_EXTRACT_FUNCTION"
	EnvDeployClassifyFunction = "DOCFLOW_DEPLOY_CLASSIFY_FUNCTION"
	EnvDeployRuntime          = "DOCFLOW_DEPLOY_RUNTIME"
	EnvDeployArchitecture     = "DOCFLOW_DEPLOY_ARCHITECTURE"
	EnvDeployTimeout          = "DOCFLOW_DEPLOY_TIMEOUT"
	EnvDeployMemorySize       = "DOCFLOW_DEPLOY_MEMORY_SIZE"
	EnvDeployDefinition       = "DOCFLOW_DEPLOY_DEFINITION"
	EnvDeployPropagationDelay = "DOCFLOW_DEPLOY_PROPAGATION_DELAY"
	EnvDeployConcurrency      = "DOCFLOW_DEPLOY_CONCURRENCY"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FunctionNames names the deployed function for each unit.
type FunctionNames struct {
	Trigger  string `toml:"trigger" validate:"required"`
	Extract  string `toml:"extract" validate:"required"`
	Classify string `toml:"classify" validate:"required"`
}

// DeployConfig holds provisioning parameters. Role, artifact, and bucket
// fields are only required when deploying, so they are checked by Validate
// rather than during Load.
type DeployConfig struct {
	LambdaRole       string        `toml:"lambda_role" validate:"required"`
	StatesRole       string        `toml:"states_role" validate:"required"`
	Artifact         string        `toml:"artifact" validate:"required"`
	Bucket           string        `toml:"bucket" validate:"required"`
	Functions        FunctionNames `toml:"functions"`
	Runtime          string        `toml:"runtime" validate:"required"`
	Architecture     string        `toml:"architecture" validate:"oneof=arm64 x86_64"`
	Timeout          int32         `toml:"timeout" validate:"min=1,max=900"`
	MemorySize       int32         `toml:"memory_size" validate:"min=128,max=10240"`
	Definition       string        `toml:"definition"`
	PropagationDelay string        `toml:"propagation_delay"`
	Concurrency      int           `toml:"concurrency" validate:"min=1"`
}

// PropagationDelayDuration returns PropagationDelay as a time.Duration.
func (c *DeployConfig) PropagationDelayDuration() time.Duration {
	return mustDuration(c.PropagationDelay)
}

// Validate checks every field a full deployment needs.
func (c *DeployConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("deploy config: %w", err)
	}
	return nil
}

// Finalize applies defaults, environment variable overrides, and validation
// of the values that have defaults.
func (c *DeployConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *DeployConfig) Merge(overlay *DeployConfig) {
	if overlay.LambdaRole != "" {
		c.LambdaRole = overlay.LambdaRole
	}
	if overlay.StatesRole != "" {
		c.StatesRole = overlay.StatesRole
	}
	if overlay.Artifact != "" {
		c.Artifact = overlay.Artifact
	}
	if overlay.Bucket != "" {
		c.Bucket = overlay.Bucket
	}
	if overlay.Functions.Trigger != "" {
		c.Functions.Trigger = overlay.Functions.Trigger
	}
	if overlay.Functions.Extract != "" {
		c.Functions.Extract = overlay.Functions.Extract
	}
	if overlay.Functions.Classify != "" {
		c.Functions.Classify = overlay.Functions.Classify
	}
	if overlay.Runtime != "" {
		c.Runtime = overlay.Runtime
	}
	if overlay.Architecture != "" {
		c.Architecture = overlay.Architecture
	}
	if overlay.Timeout != 0 {
		c.Timeout = overlay.Timeout
	}
	if overlay.MemorySize != 0 {
		c.MemorySize = overlay.MemorySize
	}
	if overlay.Definition != "" {
		c.Definition = overlay.Definition
	}
	if overlay.PropagationDelay != "" {
		c.PropagationDelay = overlay.PropagationDelay
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
}

func (c *DeployConfig) loadDefaults() {
	if c.Artifact == "" {
		c.Artifact = "dist/bootstrap.zip"
	}
	if c.Functions.Trigger == "" {
		c.Functions.Trigger = "docflow-trigger"
	}
	if c.Functions.Extract == "" {
		c.Functions.Extract = "docflow-extract"
	}
	if c.Functions.Classify == "" {
		c.Functions.Classify = "docflow-classify"
	}
	if c.Runtime == "" {
		c.Runtime = "provided.al2023"
	}
	if c.Architecture == "" {
		c.Architecture = "arm64"
	}
	if c.Timeout == 0 {
		c.Timeout = 10
	}
	if c.MemorySize == 0 {
		c.MemorySize = 128
	}
	if c.PropagationDelay == "" {
		c.PropagationDelay = "5s"
	}
	if c.Concurrency == 0 {
		c.Concurrency = 3
	}
}

func (c *DeployConfig) loadEnv() {
	strs := map[string]*string{
		EnvDeployLambdaRole:       &c.LambdaRole,
		EnvDeployStatesRole:       &c.StatesRole,
		EnvDeployArtifact:         &c.Artifact,
		EnvDeployBucket:           &c.Bucket,
		EnvDeployTriggerFunction:  &c.Functions.Trigger,
		EnvDeployExtractFunction:  &c.Functions.Extract,
		EnvDeployClassifyFunction: &c.Functions.Classify,
		EnvDeployRuntime:          &c.Runtime,
		EnvDeployArchitecture:     &c.Architecture,
		EnvDeployDefinition:       &c.Definition,
		EnvDeployPropagationDelay: &c.PropagationDelay,
	}
	for name, field := range strs {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	if v := os.Getenv(EnvDeployTimeout); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			c.Timeout = int32(n)
		}
	}
	if v := os.Getenv(EnvDeployMemorySize); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			c.MemorySize = int32(n)
		}
	}
	if v := os.Getenv(EnvDeployConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
}

func (c *DeployConfig) validate() error {
	if _, err := time.ParseDuration(c.PropagationDelay); err != nil {
		return fmt.Errorf("invalid propagation_delay: %w", err)
	}
	if err := validate.StructPartial(c, "Architecture", "Timeout", "MemorySize", "Concurrency", "Runtime"); err != nil {
		return err
	}
	return nil
}
