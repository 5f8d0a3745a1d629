package cli

import (
	"context"
	"fmt"

	"proedualt/internal/common"
	"proedualt/internal/errors"
	"proedualt/internal/formatters"
	"proedualt/internal/jobs"
	"proedualt/internal/portfolio"

	"github.com/spf13/cobra"
)

func newPortfolioCmd() *cobra.Command {
	var oc common.CommandConfig

	cmd := &cobra.Command{
		Use:   "portfolio <github-username>",
		Short: "Show the public portfolio of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			view := portfolio.NewRenderer(a.client, a.om.Metrics(), a.logger).Load(cmd.Context(), args[0])
			if err := render(cmd, oc, view); err != nil {
				return err
			}
			if view.Status == portfolio.StatusError {
				return errors.NewBackendError(errors.ErrCodeProfileNotFound, view.Error, nil).
					WithContext("handle", view.Handle)
			}
			return nil
		},
	}
	addOutputFlags(cmd, &oc)
	return cmd
}

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse job postings",
	}

	var listOC common.CommandConfig
	list := &cobra.Command{
		Use:   "list",
		Short: "List current job postings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			board := jobs.NewBoard(a.client, a.logger)
			return common.RunCommandTo(cmd.Context(), cmd.OutOrStdout(), a.logger, listOC,
				func(ctx context.Context) (formatters.JobList, error) {
					list, err := board.List(ctx)
					return formatters.JobList(list), err
				})
		},
	}
	addOutputFlags(list, &listOC)

	var scrapeOC common.CommandConfig
	scrape := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch new postings, then list them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			board := jobs.NewBoard(a.client, a.logger)
			return common.RunCommandTo(cmd.Context(), cmd.OutOrStdout(), a.logger, scrapeOC,
				func(ctx context.Context) (formatters.JobList, error) {
					msg, list, err := board.Scrape(ctx)
					if msg != "" {
						fmt.Fprintln(cmd.ErrOrStderr(), msg)
					}
					return formatters.JobList(list), err
				})
		},
	}
	addOutputFlags(scrape, &scrapeOC)

	cmd.AddCommand(list, scrape)
	return cmd
}
