package trigger_test

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
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/docflow/internal/pipeline"
	"github.com/JaimeStill/docflow/internal/trigger"
)

const testStateMachineARN = "arn:aws:states:us-east-1:123456789012:stateMachine:docflow"

type fakeStarter struct {
	calls []*sfn.StartExecutionInput
	err   error
}

func (f *fakeStarter) StartExecution(_ context.Context, in *sfn.StartExecutionInput, _ ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sfn.StartExecutionOutput{
		ExecutionArn: aws.String("arn:aws:states:us-east-1:123456789012:execution:docflow:" + aws.ToString(in.Name)),
	}, nil
}

func newAdapter(starter trigger.Starter) *trigger.Adapter {
	return trigger.New(starter, testStateMachineARN, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func s3Event(t *testing.T, raw string) events.S3Event {
	t.Helper()
	var event events.S3Event
	require.NoError(t, json.Unmarshal([]byte(raw), &event))
	return event
}

func TestHandleStartsExecution(t *testing.T) {
	event := s3Event(t, `{
		"Records": [{
			"eventSource": "aws:s3",
			"eventName": "ObjectCreated:Put",
			"s3": {
				"bucket": {"name": "test-bucket"},
				"object": {"key": "folder/document.pdf", "sequencer": "0055AED6DCD90281E5"}
			}
		}]
	}`)

	starter := &fakeStarter{}
	status, err := newAdapter(starter).Handle(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 200, status.Code)
	assert.Equal(t, pipeline.StatusStarted, status.Message)
	assert.NotEmpty(t, status.ExecutionARN)

	require.Len(t, starter.calls, 1)
	call := starter.calls[0]
	assert.Equal(t, testStateMachineARN, aws.ToString(call.StateMachineArn))
	assert.JSONEq(t, `{
		"document_id": "document",
		"s3_path": "s3://test-bucket/folder/document.pdf"
	}`, aws.ToString(call.Input))

	want := pipeline.UploadNotification{
		Bucket:    "test-bucket",
		Key:       "folder/document.pdf",
		Sequencer: "0055AED6DCD90281E5",
	}
	assert.Equal(t, want.ExecutionName(), aws.ToString(call.Name))
}

func TestHandleRedeliveryReusesExecutionName(t *testing.T) {
	raw := `{"Records": [{"s3": {"bucket": {"name": "b"}, "object": {"key": "a.pdf", "sequencer": "01"}}}]}`

	starter := &fakeStarter{}
	adapter := newAdapter(starter)

	_, err := adapter.Handle(context.Background(), s3Event(t, raw))
	require.NoError(t, err)
	_, err = adapter.Handle(context.Background(), s3Event(t, raw))
	require.NoError(t, err)

	require.Len(t, starter.calls, 2)
	assert.Equal(t, aws.ToString(starter.calls[0].Name), aws.ToString(starter.calls[1].Name))
}

func TestHandleExistingExecutionIsStarted(t *testing.T) {
	raw := `{"Records": [{"s3": {"bucket": {"name": "b"}, "object": {"key": "a.pdf", "sequencer": "01"}}}]}`

	starter := &fakeStarter{err: &sfntypes.ExecutionAlreadyExists{Message: aws.String("Execution Already Exists")}}
	status, err := newAdapter(starter).Handle(context.Background(), s3Event(t, raw))
	require.NoError(t, err)

	require.Len(t, starter.calls, 1)
	name := aws.ToString(starter.calls[0].Name)

	assert.Equal(t, 200, status.Code)
	assert.Equal(t, pipeline.StatusStarted, status.Message)
	assert.Equal(t, "arn:aws:states:us-east-1:123456789012:execution:docflow:"+name, status.ExecutionARN)
}

func TestHandleWithoutSequencerStartsEachTime(t *testing.T) {
	raw := `{"Records": [{"s3": {"bucket": {"name": "b"}, "object": {"key": "a.pdf"}}}]}`

	starter := &fakeStarter{}
	adapter := newAdapter(starter)

	for range 2 {
		_, err := adapter.Handle(context.Background(), s3Event(t, raw))
		require.NoError(t, err)
	}

	require.Len(t, starter.calls, 2)
	assert.NotEqual(t, aws.ToString(starter.calls[0].Name), aws.ToString(starter.calls[1].Name))
}

func TestHandleDecodesKey(t *testing.T) {
	event := s3Event(t, `{"Records": [{"s3": {"bucket": {"name": "b"}, "object": {"key": "scans/annual+report%282024%29.pdf"}}}]}`)

	starter := &fakeStarter{}
	_, err := newAdapter(starter).Handle(context.Background(), event)
	require.NoError(t, err)

	require.Len(t, starter.calls, 1)
	assert.JSONEq(t, `{
		"document_id": "annual report(2024)",
		"s3_path": "s3://b/scans/annual report(2024).pdf"
	}`, aws.ToString(starter.calls[0].Input))
}

func TestHandleStructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"empty event", `{}`, "Records"},
		{"empty records", `{"Records": []}`, "Records"},
		{"missing bucket", `{"Records": [{"s3": {"object": {"key": "a.pdf"}}}]}`, "Records[0].s3.bucket.name"},
		{"missing key", `{"Records": [{"s3": {"bucket": {"name": "b"}}}]}`, "Records[0].s3.object.key"},
		{"folder key", `{"Records": [{"s3": {"bucket": {"name": "b"}, "object": {"key": "folder/"}}}]}`, "key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			starter := &fakeStarter{}
			_, err := newAdapter(starter).Handle(context.Background(), s3Event(t, tt.raw))

			var se *pipeline.StructuralInputError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.field, se.Field)
			assert.Empty(t, starter.calls, "no execution may start on structural failure")
		})
	}
}

func TestHandleStartFailure(t *testing.T) {
	event := s3Event(t, `{"Records": [{"s3": {"bucket": {"name": "b"}, "object": {"key": "a.pdf"}}}]}`)

	starter := &fakeStarter{err: errors.New("AccessDeniedException")}
	_, err := newAdapter(starter).Handle(context.Background(), event)
	require.Error(t, err)

	assert.Equal(t, pipeline.KindUnexpected, pipeline.KindOf(err))
	assert.ErrorContains(t, err, "AccessDeniedException")
}

func TestNotificationFromUsesFirstRecord(t *testing.T) {
	event := s3Event(t, `{"Records": [
		{"s3": {"bucket": {"name": "first"}, "object": {"key": "one.pdf"}}},
		{"s3": {"bucket": {"name": "second"}, "object": {"key": "two.pdf"}}}
	]}`)

	n, err := trigger.NotificationFrom(event)
	require.NoError(t, err)
	assert.Equal(t, "first", n.Bucket)
	assert.Equal(t, "one.pdf", n.Key)
}
