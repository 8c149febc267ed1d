package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StatementID returns the permission statement id granting bucket invoke access.
func StatementID(bucket string) string {
	return "S3InvokeFunction-" + bucket
}

// ConnectBucket grants the bucket permission to invoke the function, waits
// delay for the permission to propagate, and configures object-created
// notifications on the bucket to invoke it. The notification configuration
// replaces any existing configuration on the bucket.
func (p *Provisioner) ConnectBucket(ctx context.Context, bucket, bucketARN, functionARN string, delay time.Duration) error {
	logger := p.logger.With("bucket", bucket)

	_, err := p.clients.Functions.AddPermission(ctx, &lambda.AddPermissionInput{
		FunctionName: aws.String(functionARN),
		StatementId:  aws.String(StatementID(bucket)),
		Action:       aws.String("lambda:InvokeFunction"),
		Principal:    aws.String("s3.amazonaws.com"),
		SourceArn:    aws.String(bucketARN),
	})

	var conflict *lambdatypes.ResourceConflictException
	switch {
	case err == nil:
		logger.Info("invoke permission added")
	case errors.As(err, &conflict):
		logger.Info("invoke permission already exists")
	default:
		return fmt.Errorf("add permission for %s: %w", bucket, err)
	}

	if delay > 0 {
		logger.Info("waiting for permission propagation", "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	_, err = p.clients.Buckets.PutBucketNotificationConfiguration(ctx, &s3.PutBucketNotificationConfigurationInput{
		Bucket: aws.String(bucket),
		NotificationConfiguration: &s3types.NotificationConfiguration{
			LambdaFunctionConfigurations: []s3types.LambdaFunctionConfiguration{
				{
					LambdaFunctionArn: aws.String(functionARN),
					Events:            []s3types.Event{s3types.Event("s3:ObjectCreated:*")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("configure notifications for %s: %w", bucket, err)
	}

	logger.Info("bucket notifications configured", "function", functionARN)
	return nil
}
