package units_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/docflow/internal/classify"
	"github.com/JaimeStill/docflow/internal/pipeline"
	"github.com/JaimeStill/docflow/internal/units"
)

type recordingStarter struct {
	input string
}

func (s *recordingStarter) StartExecution(_ context.Context, in *sfn.StartExecutionInput, _ ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error) {
	s.input = aws.ToString(in.Input)
	return &sfn.StartExecutionOutput{ExecutionArn: aws.String("arn:aws:states:us-east-1:123456789012:execution:docflow:1")}, nil
}

func newRuntime(starter *recordingStarter) *units.Runtime {
	return &units.Runtime{
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		Starter:         starter,
		StateMachineARN: "arn:aws:states:us-east-1:123456789012:stateMachine:docflow",
	}
}

// TestPipeline drives all three units the way the workflow does: trigger
// payload into extraction, then the document id from the payload and the
// extracted extension into classification.
func TestPipeline(t *testing.T) {
	ctx := context.Background()
	starter := &recordingStarter{}
	u := units.New(newRuntime(starter))

	var event events.S3Event
	require.NoError(t, json.Unmarshal([]byte(`{
		"Records": [{"s3": {"bucket": {"name": "b"}, "object": {"key": "folder/report.docx"}}}]
	}`), &event))

	status, err := u.Trigger(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusStarted, status.Message)

	var payload pipeline.WorkflowInput
	require.NoError(t, json.Unmarshal([]byte(starter.input), &payload))
	assert.Equal(t, pipeline.WorkflowInput{DocumentID: "report", ResourcePath: "s3://b/folder/report.docx"}, payload)

	md, err := u.Extract(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, "b", md.BucketName)
	assert.Equal(t, ".docx", md.FileExtension)

	result, err := u.Classify(ctx, pipeline.ClassifyInput{
		DocumentID:    payload.DocumentID,
		FileExtension: md.FileExtension,
	})
	require.NoError(t, err)
	assert.Equal(t, pipeline.ClassificationResult{DocumentID: "report", Classification: classify.LabelWord}, result)
}

func TestHandler(t *testing.T) {
	u := units.New(newRuntime(&recordingStarter{}))

	for _, name := range units.Names() {
		t.Run(name, func(t *testing.T) {
			h, err := u.Handler(name)
			require.NoError(t, err)
			assert.NotNil(t, h)
		})
	}

	_, err := u.Handler("render")
	assert.ErrorIs(t, err, units.ErrUnknownUnit)
}

func TestHandlerTriggerUnconfigured(t *testing.T) {
	rt := newRuntime(&recordingStarter{})
	rt.StateMachineARN = ""
	rt.StateMachineErr = errors.New("account_id required")

	u := units.New(rt)

	_, err := u.Handler(units.Trigger)
	assert.ErrorIs(t, err, units.ErrTriggerUnconfigured)
	assert.ErrorContains(t, err, "account_id required")

	_, err = u.Handler(units.Extract)
	assert.NoError(t, err, "extract must not depend on the state machine")
	_, err = u.Handler(units.Classify)
	assert.NoError(t, err, "classify must not depend on the state machine")
}

func TestWrappedErrorsAreTyped(t *testing.T) {
	u := units.New(newRuntime(&recordingStarter{}))

	_, err := u.Extract(context.Background(), pipeline.WorkflowInput{DocumentID: "x"})
	var se *pipeline.StructuralInputError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "s3_path", se.Field)

	_, err = u.Trigger(context.Background(), events.S3Event{})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Records", se.Field)
}

func TestSelected(t *testing.T) {
	tests := []struct {
		name    string
		unit    string
		handler string
		want    string
		wantErr bool
	}{
		{name: "from handler", handler: "extract", want: units.Extract},
		{name: "override wins", unit: "classify", handler: "extract", want: units.Classify},
		{name: "unset", wantErr: true},
		{name: "unknown", handler: "bootstrap", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(units.EnvUnit, tt.unit)
			t.Setenv(units.EnvHandler, tt.handler)

			got, err := units.Selected()
			if tt.wantErr {
				assert.ErrorIs(t, err, units.ErrUnknownUnit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
