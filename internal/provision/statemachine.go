package provision

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"

	"github.com/JaimeStill/docflow/internal/workflow"
)

// DeployStateMachine updates the named state machine with def, or creates it
// as a standard workflow when no state machine has that name. def must already
// be bound. It returns the state machine ARN.
func (p *Provisioner) DeployStateMachine(ctx context.Context, name, roleARN string, def *workflow.Definition) (string, error) {
	logger := p.logger.With("state_machine", name)

	if placeholders := def.Placeholders(); len(placeholders) > 0 {
		return "", fmt.Errorf("%w: %v", workflow.ErrUnboundPlaceholder, placeholders)
	}

	data, err := def.JSON()
	if err != nil {
		return "", fmt.Errorf("render definition: %w", err)
	}

	existing, err := p.findStateMachine(ctx, name)
	if err != nil {
		return "", err
	}

	if existing != "" {
		logger.Info("state machine exists, updating", "arn", existing)

		_, err := p.clients.States.UpdateStateMachine(ctx, &sfn.UpdateStateMachineInput{
			StateMachineArn: aws.String(existing),
			Definition:      aws.String(string(data)),
			RoleArn:         aws.String(roleARN),
		})
		if err != nil {
			return "", fmt.Errorf("update state machine %s: %w", name, err)
		}
		return existing, nil
	}

	logger.Info("creating state machine")

	out, err := p.clients.States.CreateStateMachine(ctx, &sfn.CreateStateMachineInput{
		Name:       aws.String(name),
		Definition: aws.String(string(data)),
		RoleArn:    aws.String(roleARN),
		Type:       sfntypes.StateMachineTypeStandard,
	})
	if err != nil {
		return "", fmt.Errorf("create state machine %s: %w", name, err)
	}
	return aws.ToString(out.StateMachineArn), nil
}

func (p *Provisioner) findStateMachine(ctx context.Context, name string) (string, error) {
	pages := sfn.NewListStateMachinesPaginator(p.clients.States, &sfn.ListStateMachinesInput{})

	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("list state machines: %w", err)
		}
		for _, sm := range page.StateMachines {
			if aws.ToString(sm.Name) == name {
				return aws.ToString(sm.StateMachineArn), nil
			}
		}
	}

	return "", nil
}
