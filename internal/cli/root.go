package cli

import (
	"context"

	"proedualt/internal/common"
	"proedualt/internal/config"
	"proedualt/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "proedualt",
		Short: "Career guidance from your GitHub profile and résumé",
		Long: `ProEduAlt analyzes your GitHub profile and résumé, recommends careers,
builds learning plans you can track task by task, and publishes a public
portfolio of your work.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newProfileCmd(),
		newResumeCmd(),
		newAnalyzeCmd(),
		newPlanCmd(),
		newTaskCmd(),
		newProgressCmd(),
		newProjectsCmd(),
		newPortfolioCmd(),
		newJobsCmd(),
		newInterviewCmd(),
		newShellCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line with cfg and logger available to every
// subcommand
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	return newRootCmd().ExecuteContext(ctx)
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// addOutputFlags registers --output and --format on cmd
func addOutputFlags(cmd *cobra.Command, oc *common.CommandConfig) {
	cmd.Flags().StringVarP(&oc.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&oc.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, ok := cmd.Context().Value(configKey).(*config.Config)
		if !ok {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if oc.OutputFormat == "" {
			oc.OutputFormat = cfg.App.DefaultFormat
		}
		oc.SupportedFormats = cfg.App.SupportedFormats
		if err := common.ValidateOutputFormat(oc.OutputFormat, oc.SupportedFormats); err != nil {
			return errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), err)
		}
		return nil
	}
}

// render prints value through the output settings of cmd
func render[T any](cmd *cobra.Command, oc common.CommandConfig, value T) error {
	return common.RunCommandTo(cmd.Context(), cmd.OutOrStdout(), getLoggerFromContext(cmd.Context()), oc,
		func(context.Context) (T, error) { return value, nil })
}
