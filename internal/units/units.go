// Package units assembles the pipeline units and selects the one a process
// hosts. A single function binary serves all three units; the runtime's
// handler setting names the unit to run.
package units

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/sfn"

	"github.com/JaimeStill/docflow/internal/classify"
	"github.com/JaimeStill/docflow/internal/config"
	"github.com/JaimeStill/docflow/internal/extract"
	"github.com/JaimeStill/docflow/internal/infrastructure"
	"github.com/JaimeStill/docflow/internal/pipeline"
	"github.com/JaimeStill/docflow/internal/trigger"
)

// Unit names, used as the function handler setting.
const (
	Trigger  = "trigger"
	Extract  = "extract"
	Classify = "classify"
)

const (
	EnvUnit    = "DOCFLOW_UNIT"
	EnvHandler = "_HANDLER"
)

var (
	ErrUnknownUnit         = errors.New("unknown unit")
	ErrTriggerUnconfigured = errors.New("trigger unit unconfigured")
)

// Names lists every unit.
func Names() []string {
	return []string{Trigger, Extract, Classify}
}

// Selected returns the unit named by DOCFLOW_UNIT, falling back to the
// function runtime's _HANDLER setting.
func Selected() (string, error) {
	name := os.Getenv(EnvUnit)
	if name == "" {
		name = os.Getenv(EnvHandler)
	}
	if !slices.Contains(Names(), name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
	return name, nil
}

// Runtime carries what the units need from the host.
// StateMachineErr records why StateMachineARN could not be resolved; only the
// trigger unit depends on it.
type Runtime struct {
	Logger          *slog.Logger
	Starter         trigger.Starter
	StateMachineARN string
	StateMachineErr error
}

// NewRuntime builds a Runtime from configuration and infrastructure.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	arn, err := cfg.StateMachineARN()

	return &Runtime{
		Logger:          infra.Logger,
		Starter:         sfn.NewFromConfig(infra.AWS),
		StateMachineARN: arn,
		StateMachineErr: err,
	}
}

// Units holds the wrapped unit handlers.
type Units struct {
	Trigger  pipeline.Handler[events.S3Event, pipeline.Status]
	Extract  pipeline.Handler[pipeline.WorkflowInput, pipeline.DocumentMetadata]
	Classify pipeline.Handler[pipeline.ClassifyInput, pipeline.ClassificationResult]

	triggerErr error
}

// New builds every unit from rt. The trigger is built even without a state
// machine ARN so the other units stay usable; selecting it then fails.
func New(rt *Runtime) *Units {
	u := &Units{
		Extract:  pipeline.Wrap(rt.Logger, Extract, extract.New(rt.Logger).Handle),
		Classify: pipeline.Wrap(rt.Logger, Classify, classify.New(rt.Logger).Handle),
	}

	switch {
	case rt.StateMachineErr != nil:
		u.triggerErr = fmt.Errorf("%w: %v", ErrTriggerUnconfigured, rt.StateMachineErr)
	case rt.StateMachineARN == "":
		u.triggerErr = fmt.Errorf("%w: no state machine arn", ErrTriggerUnconfigured)
	case rt.Starter == nil:
		u.triggerErr = fmt.Errorf("%w: no execution starter", ErrTriggerUnconfigured)
	default:
		adapter := trigger.New(rt.Starter, rt.StateMachineARN, rt.Logger)
		u.Trigger = pipeline.Wrap(rt.Logger, Trigger, adapter.Handle)
	}

	return u
}

// Handler returns the named unit's handler in a form the function runtime accepts.
func (u *Units) Handler(name string) (any, error) {
	switch name {
	case Trigger:
		if u.triggerErr != nil {
			return nil, u.triggerErr
		}
		return u.Trigger, nil
	case Extract:
		return u.Extract, nil
	case Classify:
		return u.Classify, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
}

// TriggerErr reports why the trigger unit is unavailable, if it is.
func (u *Units) TriggerErr() error {
	return u.triggerErr
}
