// Package pipeline defines the messages exchanged between the ingestion units,
// the error taxonomy shared by every unit boundary, and the path rules used to
// derive document identifiers from object keys.
package pipeline

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// StatusStarted is the message returned by the trigger unit once a workflow
// execution has been started.
const StatusStarted = "Step Functions execution started successfully"

// executionNamespace scopes UUIDv5 execution names to this pipeline.
var executionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/JaimeStill/docflow/executions"))

// UploadNotification is the storage event reduced to the fields the pipeline consumes.
// Sequencer is the per-event ordering token S3 attaches to object notifications.
type UploadNotification struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	Sequencer string `json:"sequencer,omitempty"`
}

// Validate checks the notification invariants: bucket and key present, and a key
// that ends in a filename segment.
func (n UploadNotification) Validate() error {
	if n.Bucket == "" {
		return MissingField("bucket")
	}
	if n.Key == "" {
		return MissingField("key")
	}
	if BaseName(n.Key) == "" {
		return &StructuralInputError{Field: "key", Reason: fmt.Sprintf("%q has no filename segment", n.Key)}
	}
	return nil
}

// ResourcePath returns the s3:// URI of the uploaded object.
func (n UploadNotification) ResourcePath() string {
	return ResourceURI(n.Bucket, n.Key)
}

// DocumentID returns the object's filename without its extension.
func (n UploadNotification) DocumentID() string {
	return DocumentID(n.Key)
}

// ExecutionName returns the workflow execution name for this notification.
// With a sequencer the name is deterministic: re-deliveries of the same event
// map to the same name and a new upload of the same key maps to a new one.
// Without a sequencer (hand-built events, invoke API requests) there is no way
// to tell a re-delivery from a new upload, so every call returns a fresh random
// name and each notification starts its own execution.
func (n UploadNotification) ExecutionName() string {
	if n.Sequencer == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(executionNamespace, []byte(n.ResourcePath()+"#"+n.Sequencer)).String()
}

// WorkflowInput returns the payload that starts a workflow execution.
func (n UploadNotification) WorkflowInput() WorkflowInput {
	return WorkflowInput{
		DocumentID:   n.DocumentID(),
		ResourcePath: n.ResourcePath(),
	}
}

// WorkflowInput is the execution payload and the input to metadata extraction.
type WorkflowInput struct {
	DocumentID   string `json:"document_id"`
	ResourcePath string `json:"s3_path"`
}

// DocumentMetadata is produced by metadata extraction.
// FileExtension keeps its leading separator and original case.
type DocumentMetadata struct {
	BucketName    string `json:"bucket_name"`
	ResourcePath  string `json:"s3_path"`
	FileName      string `json:"file_name"`
	FileExtension string `json:"file_extension"`
}

// ClassifyInput is the classifier's input. A missing FileExtension decodes as empty.
type ClassifyInput struct {
	DocumentID    string `json:"document_id"`
	FileExtension string `json:"file_extension"`
}

// ClassificationResult is the terminal output of a pipeline run.
type ClassificationResult struct {
	DocumentID     string `json:"document_id"`
	Classification string `json:"classification"`
}

// Status is the trigger unit's response descriptor.
type Status struct {
	Code         int    `json:"statusCode"`
	Message      string `json:"body"`
	ExecutionARN string `json:"executionArn,omitempty"`
}

// Started returns the success status for a started execution.
func Started(executionARN string) Status {
	return Status{
		Code:         http.StatusOK,
		Message:      StatusStarted,
		ExecutionARN: executionARN,
	}
}
