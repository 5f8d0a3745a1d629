package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"proedualt/internal/common"
	"proedualt/internal/dashboard"
	"proedualt/internal/errors"
	"proedualt/internal/formatters"
	"proedualt/internal/types"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		oc     common.CommandConfig
		handle string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Recommend careers from your GitHub profile and résumé",
		Long: `Analyze your saved GitHub username and résumé skills and rank the careers
they fit best. Each recommendation shows its score and the gap between your
skills and the ones the career requires.

With --username the analysis runs for any GitHub user without signing in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handle != "" {
				return analyzeHandle(cmd, oc, handle)
			}

			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl, err := a.signedInDashboard(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			a.logger.Info("Starting career analysis", "output_format", oc.OutputFormat)
			if err := ctrl.Analyze(cmd.Context()); err != nil {
				return err
			}
			s := ctrl.Snapshot()
			if err := render(cmd, oc, s); err != nil {
				return err
			}
			return phaseError(s)
		},
	}
	cmd.Flags().StringVar(&handle, "username", "", "Analyze this GitHub username without signing in")
	addOutputFlags(cmd, &oc)
	return cmd
}

func analyzeHandle(cmd *cobra.Command, oc common.CommandConfig, handle string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	return common.RunCommandTo(cmd.Context(), cmd.OutOrStdout(), a.logger, oc,
		func(ctx context.Context) (formatters.Analysis, error) {
			handle = strings.TrimSpace(handle)
			res, err := a.client.AnalyzeByHandle(ctx, handle)
			if err != nil {
				return formatters.Analysis{}, err
			}
			recs, err := res.Unwrap()
			if err != nil && !res.IsEmpty() {
				return formatters.Analysis{}, err
			}
			return formatters.Analysis{Handle: handle, Recommendations: recs}, nil
		})
}

func newPlanCmd() *cobra.Command {
	var oc common.CommandConfig

	cmd := &cobra.Command{
		Use:   "plan <career>",
		Short: "Generate a learning plan for a recommended career",
		Long: `Run an analysis and generate a learning plan for one of the recommended
careers. The career may be given by name or by its position in the
recommendation list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl, err := a.signedInDashboard(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if err := analyzeAndPlan(cmd.Context(), ctrl, args[0]); err != nil {
				return err
			}
			s := ctrl.Snapshot()
			if err := render(cmd, oc, s); err != nil {
				return err
			}
			return phaseError(s)
		},
	}
	addOutputFlags(cmd, &oc)
	return cmd
}

// analyzeAndPlan runs an analysis and, when it succeeds, the plan for career
func analyzeAndPlan(ctx context.Context, ctrl *dashboard.Controller, career string) error {
	if err := ctrl.Analyze(ctx); err != nil {
		return err
	}
	s := ctrl.Snapshot()
	if s.Phase != dashboard.PhaseResults {
		return phaseError(s)
	}
	name, err := resolveCareer(s, career)
	if err != nil {
		return err
	}
	return ctrl.GeneratePlan(ctx, name)
}

// resolveCareer matches input against the recommended careers by name,
// ignoring case, or by 1-based position
func resolveCareer(s dashboard.State, input string) (string, error) {
	input = strings.TrimSpace(input)
	for _, r := range s.Recommendations {
		if strings.EqualFold(r.Career, input) {
			return r.Career, nil
		}
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(s.Recommendations) {
		return s.Recommendations[n-1].Career, nil
	}

	names := make([]string, len(s.Recommendations))
	for i, r := range s.Recommendations {
		names[i] = r.Career
	}
	return "", errors.NewValidationError(errors.ErrCodeUnknownCareer,
		fmt.Sprintf("%q is not a recommended career (have: %s)", input, strings.Join(names, ", ")), nil)
}

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Mark learning plan tasks done or not done",
	}
	cmd.AddCommand(newToggleCmd("complete", "Mark a task as completed", true), newToggleCmd("undo", "Mark a completed task as not done", false))
	return cmd
}

func newToggleCmd(use, short string, complete bool) *cobra.Command {
	var (
		oc     common.CommandConfig
		career string
	)

	cmd := &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Long: short + `. Task ids come from a learning plan, so unless the task is
already completed the plan's career must be given with --career.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl, err := a.signedInDashboard(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			id := types.ResourceID(strings.TrimSpace(args[0]))
			if career != "" && !ctrl.Snapshot().IsCompleted(id) {
				if err := analyzeAndPlan(cmd.Context(), ctrl, career); err != nil {
					return err
				}
				if err := phaseError(ctrl.Snapshot()); err != nil {
					return err
				}
			}

			if err := ctrl.Toggle(cmd.Context(), id, complete); err != nil {
				return err
			}
			return render(cmd, oc, progressOf(ctrl.Snapshot()))
		},
	}
	cmd.Flags().StringVar(&career, "career", "", "Career whose learning plan contains the task")
	addOutputFlags(cmd, &oc)
	return cmd
}

func newProgressCmd() *cobra.Command {
	var oc common.CommandConfig

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "List completed tasks and total XP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl, err := a.signedInDashboard(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ctrl.Close()
			return render(cmd, oc, progressOf(ctrl.Snapshot()))
		},
	}
	addOutputFlags(cmd, &oc)
	return cmd
}

func progressOf(s dashboard.State) formatters.Progress {
	completed := s.Completed
	if completed == nil {
		completed = []types.ResourceID{}
	}
	return formatters.Progress{Completed: completed, TotalXP: s.TotalXP()}
}
