package cloud

import "fmt"

// ARN builds an ARN in the configured partition, region, and account.
// Global services such as IAM and S3 omit the region; S3 also omits the account.
func (c *Config) ARN(service, resource string) (string, error) {
	switch service {
	case "s3":
		return fmt.Sprintf("arn:%s:s3:::%s", c.Partition, resource), nil
	case "iam":
		if c.AccountID == "" {
			return "", ErrAccountRequired
		}
		return fmt.Sprintf("arn:%s:iam::%s:%s", c.Partition, c.AccountID, resource), nil
	default:
		if c.AccountID == "" {
			return "", ErrAccountRequired
		}
		return fmt.Sprintf("arn:%s:%s:%s:%s:%s", c.Partition, service, c.Region, c.AccountID, resource), nil
	}
}

// RoleARN returns the ARN of the named IAM role.
func (c *Config) RoleARN(name string) (string, error) {
	return c.ARN("iam", "role/"+name)
}

// BucketARN returns the ARN of the named S3 bucket.
func (c *Config) BucketARN(name string) string {
	arn, _ := c.ARN("s3", name)
	return arn
}

// FunctionARN returns the ARN of the named Lambda function.
func (c *Config) FunctionARN(name string) (string, error) {
	return c.ARN("lambda", "function:"+name)
}

// StateMachineARN returns the ARN of the named Step Functions state machine.
func (c *Config) StateMachineARN(name string) (string, error) {
	return c.ARN("states", "stateMachine:"+name)
}
