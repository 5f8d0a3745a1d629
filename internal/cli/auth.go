package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"proedualt/internal/common"
	"proedualt/internal/errors"
	"proedualt/internal/types"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd() *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login [email-or-phone]",
		Short: "Sign in with your email or phone number",
		Long: `Sign in with a password. An identifier containing "@" is treated as an
email address, anything else as a phone number. The session is stored under
the configured session file and shared by every proedualt process.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			in := bufio.NewReader(cmd.InOrStdin())
			identifier := ""
			if len(args) == 1 {
				identifier = args[0]
			} else {
				fmt.Fprint(cmd.ErrOrStderr(), "Email or phone: ")
				if identifier, err = readLine(in); err != nil {
					return err
				}
			}

			password, err := readPassword(cmd, in, passwordStdin)
			if err != nil {
				return err
			}

			s, err := a.accounts.SignIn(cmd.Context(), identifier, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", s.Contact())
			return nil
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.accounts.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	var oc common.CommandConfig

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.accounts.CurrentSession(cmd.Context())
			if err != nil {
				return err
			}
			if s == nil {
				return render(cmd, oc, types.Message{Message: "Not signed in."})
			}

			msg := fmt.Sprintf("Signed in as %s (user %s).", s.Contact(), s.UserID())
			if exp, err := s.Expiry(); err == nil {
				msg += fmt.Sprintf(" Token valid until %s.", exp.Local().Format(time.RFC1123))
			}
			return render(cmd, oc, types.Message{Message: msg})
		},
	}
	addOutputFlags(cmd, &oc)
	return cmd
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.NewIOError(errors.ErrCodeInvalidRequest, "failed to read input", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo from a terminal, or a line from stdin
// when fromStdin is set
func readPassword(cmd *cobra.Command, in *bufio.Reader, fromStdin bool) (string, error) {
	if fromStdin {
		return readLine(in)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"no terminal for the password prompt, use --password-stdin", nil)
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeInvalidRequest, "failed to read password", err)
	}
	return string(password), nil
}
