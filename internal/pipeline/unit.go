package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

// Handler is the shape of every unit: one input message in, one output message
// or a failure out.
type Handler[In, Out any] func(ctx context.Context, in In) (Out, error)

// Wrap returns fn guarded by the unit boundary contract. Panics are recovered
// as UnexpectedError, every failure is normalized to one of the two typed unit
// errors, logged with its kind, and returned to the caller. Nothing is retried
// or defaulted.
func Wrap[In, Out any](logger *slog.Logger, unit string, fn Handler[In, Out]) Handler[In, Out] {
	logger = logger.With("unit", unit)

	return func(ctx context.Context, in In) (out Out, err error) {
		log := requestLogger(ctx, logger)

		defer func() {
			if r := recover(); r != nil {
				var zero Out
				out = zero
				err = &UnexpectedError{Err: fmt.Errorf("panic: %v", r)}
			}

			if err != nil {
				log.ErrorContext(ctx, "invocation failed", "kind", KindOf(err), "error", err)
			}
		}()

		out, err = fn(ctx, in)
		if err != nil {
			var zero Out
			return zero, Normalize(err)
		}

		return out, nil
	}
}

func requestLogger(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return logger.With("aws_request_id", lc.AwsRequestID)
	}
	return logger
}
