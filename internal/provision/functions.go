package provision

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/docflow/pkg/formatting"
)

// BootstrapEntry is the executable a custom-runtime artifact must contain.
const BootstrapEntry = "bootstrap"

// FunctionSpec describes one unit function. Handler names the unit the shared
// bootstrap binary runs.
type FunctionSpec struct {
	Name         string
	Handler      string
	RoleARN      string
	Runtime      string
	Architecture string
	Timeout      int32
	MemorySize   int32
	Environment  map[string]string
}

// ReadArtifact reads the deployment archive at path and checks that it is a
// zip containing the bootstrap executable.
func ReadArtifact(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, path, err)
	}
	for _, f := range zr.File {
		if f.Name == BootstrapEntry {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no %s entry", ErrInvalidArtifact, path, BootstrapEntry)
}

// UpsertFunction updates the code of an existing function, or creates it and
// waits until it is active. It returns the function ARN.
func (p *Provisioner) UpsertFunction(ctx context.Context, spec FunctionSpec, code []byte) (string, error) {
	logger := p.logger.With("function", spec.Name)

	_, err := p.clients.Functions.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(spec.Name),
	})

	switch {
	case err == nil:
		logger.Info("function exists, updating code", "size", formatting.FormatBytes(int64(len(code)), 1))

		out, err := p.clients.Functions.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
			FunctionName: aws.String(spec.Name),
			ZipFile:      code,
		})
		if err != nil {
			return "", fmt.Errorf("update function %s: %w", spec.Name, err)
		}
		return aws.ToString(out.FunctionArn), nil

	case isNotFound(err):
		logger.Info("creating function", "handler", spec.Handler, "runtime", spec.Runtime)

		out, err := p.clients.Functions.CreateFunction(ctx, createInput(spec, code))
		if err != nil {
			return "", fmt.Errorf("create function %s: %w", spec.Name, err)
		}

		waiter := lambda.NewFunctionActiveV2Waiter(p.clients.Functions)
		if err := waiter.Wait(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(spec.Name)}, p.ActiveTimeout); err != nil {
			return "", fmt.Errorf("wait for function %s: %w", spec.Name, err)
		}

		logger.Info("function active")
		return aws.ToString(out.FunctionArn), nil

	default:
		return "", fmt.Errorf("get function %s: %w", spec.Name, err)
	}
}

// UpsertFunctions upserts every spec concurrently, at most limit at a time,
// and returns the function ARNs keyed by handler.
func (p *Provisioner) UpsertFunctions(ctx context.Context, specs []FunctionSpec, code []byte, limit int) (map[string]string, error) {
	arns := make([]string, len(specs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))

	for i, spec := range specs {
		g.Go(func() error {
			arn, err := p.UpsertFunction(ctx, spec, code)
			if err != nil {
				return err
			}
			arns[i] = arn
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]string, len(specs))
	for i, spec := range specs {
		result[spec.Handler] = arns[i]
	}
	return result, nil
}

// FunctionARN resolves the ARN of an existing function.
func (p *Provisioner) FunctionARN(ctx context.Context, name string) (string, error) {
	out, err := p.clients.Functions.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
		}
		return "", fmt.Errorf("get function %s: %w", name, err)
	}
	if out.Configuration == nil {
		return "", fmt.Errorf("get function %s: no configuration returned", name)
	}
	return aws.ToString(out.Configuration.FunctionArn), nil
}

func createInput(spec FunctionSpec, code []byte) *lambda.CreateFunctionInput {
	in := &lambda.CreateFunctionInput{
		FunctionName:  aws.String(spec.Name),
		Runtime:       lambdatypes.Runtime(spec.Runtime),
		Role:          aws.String(spec.RoleARN),
		Handler:       aws.String(spec.Handler),
		Code:          &lambdatypes.FunctionCode{ZipFile: code},
		Timeout:       aws.Int32(spec.Timeout),
		MemorySize:    aws.Int32(spec.MemorySize),
		Architectures: []lambdatypes.Architecture{lambdatypes.Architecture(spec.Architecture)},
	}
	if len(spec.Environment) > 0 {
		in.Environment = &lambdatypes.Environment{Variables: spec.Environment}
	}
	return in
}

func isNotFound(err error) bool {
	var nf *lambdatypes.ResourceNotFoundException
	return errors.As(err, &nf)
}
