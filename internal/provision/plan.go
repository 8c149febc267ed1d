package provision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JaimeStill/docflow/internal/config"
	"github.com/JaimeStill/docflow/internal/units"
	"github.com/JaimeStill/docflow/internal/workflow"
)

// Plan is a fully resolved deployment.
type Plan struct {
	Artifact         string
	Functions        []FunctionSpec
	Definition       *workflow.Definition
	StateMachineName string
	StatesRoleARN    string
	Bucket           string
	BucketARN        string
	PropagationDelay time.Duration
	Concurrency      int
}

// Result reports the resources a deployment created or updated.
type Result struct {
	Functions       map[string]string `json:"functions"`
	StateMachineARN string            `json:"state_machine_arn"`
	Bucket          string            `json:"bucket"`
}

// NewPlan resolves a Plan from configuration. Role names are expanded to ARNs
// in the configured account; values already in ARN form are used as given.
func NewPlan(cfg *config.Config) (*Plan, error) {
	if err := cfg.Deploy.Validate(); err != nil {
		return nil, err
	}

	// the trigger function resolves the same ARN from its environment
	if _, err := cfg.StateMachineARN(); err != nil {
		return nil, err
	}

	lambdaRole, err := roleARN(cfg, cfg.Deploy.LambdaRole)
	if err != nil {
		return nil, fmt.Errorf("lambda role: %w", err)
	}
	statesRole, err := roleARN(cfg, cfg.Deploy.StatesRole)
	if err != nil {
		return nil, fmt.Errorf("states role: %w", err)
	}

	def, err := LoadDefinition(cfg)
	if err != nil {
		return nil, err
	}

	env := FunctionEnvironment(cfg)
	spec := func(name, unit string) FunctionSpec {
		return FunctionSpec{
			Name:         name,
			Handler:      unit,
			RoleARN:      lambdaRole,
			Runtime:      cfg.Deploy.Runtime,
			Architecture: cfg.Deploy.Architecture,
			Timeout:      cfg.Deploy.Timeout,
			MemorySize:   cfg.Deploy.MemorySize,
			Environment:  env,
		}
	}

	fns := cfg.Deploy.Functions

	return &Plan{
		Artifact: cfg.Deploy.Artifact,
		Functions: []FunctionSpec{
			spec(fns.Extract, units.Extract),
			spec(fns.Classify, units.Classify),
			spec(fns.Trigger, units.Trigger),
		},
		Definition:       def,
		StateMachineName: cfg.Pipeline.StateMachineName,
		StatesRoleARN:    statesRole,
		Bucket:           cfg.Deploy.Bucket,
		BucketARN:        cfg.AWS.BucketARN(cfg.Deploy.Bucket),
		PropagationDelay: cfg.Deploy.PropagationDelayDuration(),
		Concurrency:      cfg.Deploy.Concurrency,
	}, nil
}

// LoadDefinition returns the configured definition file, or the default
// definition when none is configured.
func LoadDefinition(cfg *config.Config) (*workflow.Definition, error) {
	if cfg.Deploy.Definition == "" {
		return workflow.Default(), nil
	}
	def, err := workflow.Load(cfg.Deploy.Definition)
	if err != nil {
		return nil, fmt.Errorf("definition %s: %w", cfg.Deploy.Definition, err)
	}
	return def, nil
}

// Placeholders maps the definition placeholders to function ARNs keyed by unit.
func Placeholders(arns map[string]string) map[string]string {
	return map[string]string{
		workflow.PlaceholderExtract:  arns[units.Extract],
		workflow.PlaceholderClassify: arns[units.Classify],
	}
}

// FunctionEnvironment returns the environment every unit function runs with.
func FunctionEnvironment(cfg *config.Config) map[string]string {
	env := map[string]string{
		config.EnvPipelineStateMachineName: cfg.Pipeline.StateMachineName,
		config.EnvLogFormat:                config.LogFormatJSON,
		config.EnvLogLevel:                 cfg.Logging.Level,
	}
	if cfg.AWS.AccountID != "" {
		env[config.EnvAWSAccountID] = cfg.AWS.AccountID
	}
	if cfg.AWS.Partition != "" && cfg.AWS.Partition != "aws" {
		env[config.EnvAWSPartition] = cfg.AWS.Partition
	}
	if cfg.Pipeline.StateMachineARN != "" {
		env[config.EnvPipelineStateMachineARN] = cfg.Pipeline.StateMachineARN
	}
	return env
}

// RenderDefinition binds the configured definition to the function ARNs the
// configured names resolve to, without contacting AWS.
func RenderDefinition(cfg *config.Config) (*workflow.Definition, error) {
	def, err := LoadDefinition(cfg)
	if err != nil {
		return nil, err
	}

	arns := make(map[string]string, 2)
	for unit, name := range map[string]string{
		units.Extract:  cfg.Deploy.Functions.Extract,
		units.Classify: cfg.Deploy.Functions.Classify,
	} {
		arn, err := cfg.AWS.FunctionARN(name)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		arns[unit] = arn
	}

	return def.Bind(Placeholders(arns))
}

// Function returns the plan's function spec for unit.
func (p *Plan) Function(unit string) (FunctionSpec, bool) {
	for _, spec := range p.Functions {
		if spec.Handler == unit {
			return spec, true
		}
	}
	return FunctionSpec{}, false
}

// DeployFunctions uploads the artifact to every function in plan and returns
// their ARNs keyed by unit.
func (p *Provisioner) DeployFunctions(ctx context.Context, plan *Plan) (map[string]string, error) {
	code, err := ReadArtifact(plan.Artifact)
	if err != nil {
		return nil, err
	}
	return p.UpsertFunctions(ctx, plan.Functions, code, plan.Concurrency)
}

// DeployWorkflow binds the definition to the already deployed extract and
// classify functions and deploys the state machine.
func (p *Provisioner) DeployWorkflow(ctx context.Context, plan *Plan) (string, error) {
	arns := make(map[string]string, 2)
	for _, unit := range []string{units.Extract, units.Classify} {
		arn, err := p.unitARN(ctx, plan, unit)
		if err != nil {
			return "", err
		}
		arns[unit] = arn
	}
	return p.bindAndDeploy(ctx, plan, arns)
}

// Connect wires the bucket notification to the already deployed trigger function.
func (p *Provisioner) Connect(ctx context.Context, plan *Plan) error {
	arn, err := p.unitARN(ctx, plan, units.Trigger)
	if err != nil {
		return err
	}
	return p.ConnectBucket(ctx, plan.Bucket, plan.BucketARN, arn, plan.PropagationDelay)
}

// Deploy applies plan: functions, then the bound state machine, then the
// bucket notification.
func (p *Provisioner) Deploy(ctx context.Context, plan *Plan) (*Result, error) {
	arns, err := p.DeployFunctions(ctx, plan)
	if err != nil {
		return nil, err
	}

	smARN, err := p.bindAndDeploy(ctx, plan, arns)
	if err != nil {
		return nil, err
	}

	if err := p.ConnectBucket(ctx, plan.Bucket, plan.BucketARN, arns[units.Trigger], plan.PropagationDelay); err != nil {
		return nil, err
	}

	p.logger.Info("deployment complete", "state_machine_arn", smARN)

	return &Result{
		Functions:       arns,
		StateMachineARN: smARN,
		Bucket:          plan.Bucket,
	}, nil
}

func (p *Provisioner) bindAndDeploy(ctx context.Context, plan *Plan, arns map[string]string) (string, error) {
	bound, err := plan.Definition.Bind(Placeholders(arns))
	if err != nil {
		return "", fmt.Errorf("bind definition: %w", err)
	}
	return p.DeployStateMachine(ctx, plan.StateMachineName, plan.StatesRoleARN, bound)
}

func (p *Provisioner) unitARN(ctx context.Context, plan *Plan, unit string) (string, error) {
	spec, ok := plan.Function(unit)
	if !ok {
		return "", fmt.Errorf("%w: no %s function in plan", ErrFunctionNotFound, unit)
	}
	return p.FunctionARN(ctx, spec.Name)
}

func roleARN(cfg *config.Config, role string) (string, error) {
	if strings.HasPrefix(role, "arn:") {
		return role, nil
	}
	return cfg.AWS.RoleARN(role)
}
