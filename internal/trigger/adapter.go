// Package trigger converts object-created storage notifications into workflow
// executions.
package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"

	"github.com/JaimeStill/docflow/internal/pipeline"
)

// Starter is the subset of the Step Functions client the adapter calls.
type Starter interface {
	StartExecution(ctx context.Context, params *sfn.StartExecutionInput, optFns ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error)
}

// Adapter is the trigger unit.
type Adapter struct {
	starter         Starter
	stateMachineARN string
	logger          *slog.Logger
}

// New creates an Adapter that starts executions of stateMachineARN.
func New(starter Starter, stateMachineARN string, logger *slog.Logger) *Adapter {
	return &Adapter{
		starter:         starter,
		stateMachineARN: stateMachineARN,
		logger:          logger.With("system", "trigger"),
	}
}

// Handle starts one workflow execution for the first record of event.
// Additional records in a batched notification are ignored.
func (a *Adapter) Handle(ctx context.Context, event events.S3Event) (pipeline.Status, error) {
	n, err := NotificationFrom(event)
	if err != nil {
		return pipeline.Status{}, err
	}

	if len(event.Records) > 1 {
		a.logger.WarnContext(ctx, "ignoring additional records", "records", len(event.Records))
	}

	return a.Start(ctx, n)
}

// Start validates n and starts its workflow execution.
func (a *Adapter) Start(ctx context.Context, n pipeline.UploadNotification) (pipeline.Status, error) {
	if err := n.Validate(); err != nil {
		return pipeline.Status{}, err
	}

	payload, err := json.Marshal(n.WorkflowInput())
	if err != nil {
		return pipeline.Status{}, fmt.Errorf("marshal workflow input: %w", err)
	}

	name := n.ExecutionName()

	out, err := a.starter.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(a.stateMachineARN),
		Name:            aws.String(name),
		Input:           aws.String(string(payload)),
	})
	var exists *sfntypes.ExecutionAlreadyExists
	if errors.As(err, &exists) {
		arn := executionARN(a.stateMachineARN, name)
		a.logger.InfoContext(
			ctx, "duplicate notification, execution already exists",
			"document_id", n.DocumentID(),
			"execution_name", name,
			"execution_arn", arn,
		)
		return pipeline.Started(arn), nil
	}
	if err != nil {
		return pipeline.Status{}, fmt.Errorf("start execution %s: %w", name, err)
	}

	arn := aws.ToString(out.ExecutionArn)

	a.logger.InfoContext(
		ctx, "execution started",
		"document_id", n.DocumentID(),
		"s3_path", n.ResourcePath(),
		"execution_name", name,
		"execution_arn", arn,
	)

	return pipeline.Started(arn), nil
}

// executionARN derives the ARN of the named execution of stateMachineARN.
func executionARN(stateMachineARN, name string) string {
	return strings.Replace(stateMachineARN, ":stateMachine:", ":execution:", 1) + ":" + name
}

// NotificationFrom reduces the first record of event to an UploadNotification.
// Object keys arrive URL-encoded and are decoded here.
func NotificationFrom(event events.S3Event) (pipeline.UploadNotification, error) {
	if len(event.Records) == 0 {
		return pipeline.UploadNotification{}, pipeline.MissingField("Records")
	}

	rec := event.Records[0]

	if rec.S3.Bucket.Name == "" {
		return pipeline.UploadNotification{}, pipeline.MissingField("Records[0].s3.bucket.name")
	}
	if rec.S3.Object.Key == "" {
		return pipeline.UploadNotification{}, pipeline.MissingField("Records[0].s3.object.key")
	}

	return pipeline.UploadNotification{
		Bucket:    rec.S3.Bucket.Name,
		Key:       decodeKey(rec.S3.Object),
		Sequencer: rec.S3.Object.Sequencer,
	}, nil
}

func decodeKey(obj events.S3Object) string {
	if obj.URLDecodedKey != "" {
		return obj.URLDecodedKey
	}
	if key, err := url.QueryUnescape(obj.Key); err == nil {
		return key
	}
	return obj.Key
}
