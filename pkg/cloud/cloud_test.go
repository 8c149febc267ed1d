package cloud_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/JaimeStill/docflow/pkg/cloud"
)

var testEnv = &cloud.Env{
	Region:    "TEST_CLOUD_REGION",
	AccountID: "TEST_CLOUD_ACCOUNT_ID",
	Profile:   "TEST_CLOUD_PROFILE",
}

func TestFinalizeDefaults(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")

	cfg := &cloud.Config{Region: "us-east-1"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Partition != "aws" {
		t.Errorf("partition: got %s, want aws", cfg.Partition)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_CLOUD_REGION", "eu-west-1")
	t.Setenv("TEST_CLOUD_ACCOUNT_ID", "123456789012")
	t.Setenv("TEST_CLOUD_PROFILE", "docflow")

	cfg := &cloud.Config{Region: "us-east-1"}
	if err := cfg.Finalize(testEnv); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.Region != "eu-west-1" {
		t.Errorf("region: got %s", cfg.Region)
	}
	if cfg.AccountID != "123456789012" {
		t.Errorf("account_id: got %s", cfg.AccountID)
	}
	if cfg.Profile != "docflow" {
		t.Errorf("profile: got %s", cfg.Profile)
	}
}

func TestFinalizeRegionFallback(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "us-west-2")

	cfg := &cloud.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Region != "us-west-2" {
		t.Errorf("region: got %s, want us-west-2", cfg.Region)
	}
}

func TestFinalizeValidation(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")

	tests := []struct {
		name string
		cfg  cloud.Config
	}{
		{"missing region", cloud.Config{}},
		{"short account", cloud.Config{Region: "us-east-1", AccountID: "1234"}},
		{"non numeric account", cloud.Config{Region: "us-east-1", AccountID: "12345678901a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := &cloud.Config{Region: "us-east-1", AccountID: "123456789012"}
	base.Merge(&cloud.Config{Region: "us-gov-west-1", Partition: "aws-us-gov"})

	if base.Region != "us-gov-west-1" || base.Partition != "aws-us-gov" {
		t.Errorf("merge: got %+v", base)
	}
	if base.AccountID != "123456789012" {
		t.Error("merge overwrote account_id with zero value")
	}
}

func TestARNs(t *testing.T) {
	cfg := &cloud.Config{Region: "us-east-1", AccountID: "123456789012", Partition: "aws"}

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"role", func() (string, error) { return cfg.RoleARN("docflow-lambda") }, "arn:aws:iam::123456789012:role/docflow-lambda"},
		{"function", func() (string, error) { return cfg.FunctionARN("docflow-trigger") }, "arn:aws:lambda:us-east-1:123456789012:function:docflow-trigger"},
		{"state machine", func() (string, error) { return cfg.StateMachineARN("docflow") }, "arn:aws:states:us-east-1:123456789012:stateMachine:docflow"},
		{"bucket", func() (string, error) { return cfg.BucketARN("uploads"), nil }, "arn:aws:s3:::uploads"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestARNRequiresAccount(t *testing.T) {
	cfg := &cloud.Config{Region: "us-east-1", Partition: "aws"}

	if _, err := cfg.StateMachineARN("docflow"); !errors.Is(err, cloud.ErrAccountRequired) {
		t.Errorf("got %v, want ErrAccountRequired", err)
	}
	if got := cfg.BucketARN("uploads"); got != "arn:aws:s3:::uploads" {
		t.Errorf("bucket arn: got %s", got)
	}
}

func TestCheckCredentials(t *testing.T) {
	if err := cloud.CheckCredentials(context.Background(), aws.Config{}); err == nil {
		t.Error("expected error without credential provider")
	}

	static := aws.Config{
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret"}, nil
		}),
	}
	if err := cloud.CheckCredentials(context.Background(), static); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
