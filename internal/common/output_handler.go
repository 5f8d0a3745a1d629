package common

import (
	"fmt"
	"io"
	"os"

	"proedualt/internal/errors"
	"proedualt/internal/formatters"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile       string
	OutputFormat     string
	SupportedFormats []string
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
	out           io.Writer
}

// NewOutputHandler creates an output handler writing to stdout
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return NewOutputHandlerTo(os.Stdout, logger)
}

// NewOutputHandlerTo creates an output handler writing to w
func NewOutputHandlerTo(w io.Writer, logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		registry:      formatters.NewFormatterRegistry(),
		logger:        logger,
		out:           w,
	}
}

// HandleOutput formats data and writes it to the configured destination
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := ValidateOutputFormat(config.OutputFormat, config.SupportedFormats); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), err)
	}
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile != "" {
		if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
			return err
		}
		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
		return nil
	}

	_, err = fmt.Fprint(oh.out, output)
	return err
}

// GetSupportedFormats returns all formats the registry can render
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}
