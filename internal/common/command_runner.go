package common

import (
	"context"
	"io"
	"os"

	"proedualt/internal/errors"
)

// OperationFunc produces the value a command prints
type OperationFunc[Output any] func(context.Context) (Output, error)

// RunCommand validates the output settings, runs op and prints its result.
// Output settings are checked first so a bad --format never reaches the
// backend.
func RunCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	op OperationFunc[Output],
) error {
	return RunCommandTo(ctx, os.Stdout, logger, cmdConfig, op)
}

// RunCommandTo is RunCommand writing to w
func RunCommandTo[Output any](
	ctx context.Context,
	w io.Writer,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	op OperationFunc[Output],
) error {
	if err := ValidateOutputFormat(cmdConfig.OutputFormat, cmdConfig.SupportedFormats); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), err)
	}

	result, err := op(ctx)
	if err != nil {
		return err
	}

	return NewOutputHandlerTo(w, logger).HandleOutput(result, cmdConfig)
}
