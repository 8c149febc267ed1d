package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	EnvPipelineStateMachineName = "DOCFLOW_STATE_MACHINE_NAME"
	EnvPipelineStateMachineARN  = "DOCFLOW_STATE_MACHINE_ARN"
)

// PipelineConfig identifies the workflow the trigger unit starts.
// StateMachineARN, when set, takes precedence over the ARN derived from
// StateMachineName and the configured account.
type PipelineConfig struct {
	StateMachineName string `toml:"state_machine_name"`
	StateMachineARN  string `toml:"state_machine_arn"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.StateMachineName != "" {
		c.StateMachineName = overlay.StateMachineName
	}
	if overlay.StateMachineARN != "" {
		c.StateMachineARN = overlay.StateMachineARN
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.StateMachineName == "" {
		c.StateMachineName = "docflow"
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineStateMachineName); v != "" {
		c.StateMachineName = v
	}
	if v := os.Getenv(EnvPipelineStateMachineARN); v != "" {
		c.StateMachineARN = v
	}
}

func (c *PipelineConfig) validate() error {
	if c.StateMachineARN != "" && !strings.HasPrefix(c.StateMachineARN, "arn:") {
		return fmt.Errorf("invalid state_machine_arn: %q", c.StateMachineARN)
	}
	return nil
}
