package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"proedualt/internal/common"
	"proedualt/internal/types"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change your profile",
	}
	cmd.AddCommand(newProfileShowCmd(), newProfileSetHandleCmd(), newProfileUpdateCmd())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	var oc common.CommandConfig

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your profile, XP and résumé skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl, err := a.dashboard(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ctrl.Close()
			return render(cmd, oc, ctrl.Snapshot())
		},
	}
	addOutputFlags(cmd, &oc)
	return cmd
}

func newProfileSetHandleCmd() *cobra.Command {
	var oc common.CommandConfig

	cmd := &cobra.Command{
		Use:   "set-handle <github-username>",
		Short: "Save your GitHub username",
		Args:  cobra.ExactArgs(1),
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

			ctrl.BeginEdit()
			ctrl.SetHandleInput(args[0])
			if err := ctrl.SaveHandle(cmd.Context()); err != nil {
				return err
			}
			return render(cmd, oc, ctrl.Snapshot())
		},
	}
	addOutputFlags(cmd, &oc)
	return cmd
}

func newProfileUpdateCmd() *cobra.Command {
	var (
		oc     common.CommandConfig
		fields types.ProfileUpdate
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile settings",
		Long: `Update profile settings. Only the flags you pass change; every other
field keeps its stored value.`,
		Args: cobra.NoArgs,
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

			s := ctrl.Snapshot()
			update := types.UpdateFromProfile(s.Session.UserID(), s.Profile)
			flags := cmd.Flags()
			if flags.Changed("github-username") {
				update.GithubUsername = fields.GithubUsername
			}
			if flags.Changed("full-name") {
				update.FullName = fields.FullName
			}
			if flags.Changed("bio") {
				update.Bio = fields.Bio
			}
			if flags.Changed("linkedin-url") {
				update.LinkedinURL = fields.LinkedinURL
			}
			if flags.Changed("public") {
				update.IsPublic = fields.IsPublic
			}

			if err := ctrl.UpdateProfile(cmd.Context(), update); err != nil {
				return err
			}
			return render(cmd, oc, ctrl.Snapshot())
		},
	}
	cmd.Flags().StringVar(&fields.GithubUsername, "github-username", "", "GitHub username")
	cmd.Flags().StringVar(&fields.FullName, "full-name", "", "Full name shown on your portfolio")
	cmd.Flags().StringVar(&fields.Bio, "bio", "", "Short bio shown on your portfolio")
	cmd.Flags().StringVar(&fields.LinkedinURL, "linkedin-url", "", "LinkedIn profile URL")
	cmd.Flags().BoolVar(&fields.IsPublic, "public", false, "Make your portfolio public")
	addOutputFlags(cmd, &oc)
	return cmd
}

func newResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Manage your résumé",
	}

	var oc common.CommandConfig
	upload := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF résumé and extract its skills",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			content, err := common.NewFileProcessor(a.logger).ReadResume(args[0], a.cfg.Backend.MaxResumeSize)
			if err != nil {
				return err
			}

			ctrl, err := a.signedInDashboard(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			skills, err := ctrl.UploadResume(cmd.Context(), filepath.Base(args[0]), content)
			if err != nil {
				return err
			}
			return render(cmd, oc, types.Message{Message: skillsMessage(skills)})
		},
	}
	addOutputFlags(upload, &oc)
	cmd.AddCommand(upload)
	return cmd
}

func skillsMessage(skills []string) string {
	if len(skills) == 0 {
		return "Résumé uploaded. No skills were found."
	}
	return fmt.Sprintf("Résumé uploaded. Skills found: %s", strings.Join(skills, ", "))
}

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage the GitHub projects on your portfolio",
	}

	var oc common.CommandConfig
	sync := &cobra.Command{
		Use:   "sync",
		Short: "Pull your public GitHub repositories into your portfolio",
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

			msg, err := ctrl.SyncProjects(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, oc, types.Message{Message: msg})
		},
	}
	addOutputFlags(sync, &oc)
	cmd.AddCommand(sync)
	return cmd
}
