package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"proedualt/internal/common"
	"proedualt/internal/dashboard"
	"proedualt/internal/errors"
	"proedualt/internal/formatters"
	"proedualt/internal/identity"
	"proedualt/internal/jobs"
	"proedualt/internal/portfolio"
	"proedualt/internal/types"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const shellHelp = `Commands:
  dashboard              show the dashboard
  login <email|phone>    sign in
  logout                 sign out
  edit                   edit your GitHub username
  handle <username>      set the username being edited
  save                   save the edited username
  cancel                 stop editing
  analyze                recommend careers
  plan <career|number>   generate a learning plan
  done <task-id>         mark a task completed
  undo <task-id>         mark a task not done
  progress               list completed tasks
  upload <file.pdf>      upload your résumé
  sync                   sync your GitHub projects
  portfolio [username]   show a public portfolio
  jobs                   list job postings
  scrape                 fetch new job postings
  help                   show this help
  exit                   leave the shell`

// signer signs users in. *identity.Manager satisfies it.
type signer interface {
	SignIn(ctx context.Context, identifier, password string) (*identity.Session, error)
}

// shell is the interactive dashboard. One controller lives for the whole
// session, so state survives between commands.
type shell struct {
	ctrl         *dashboard.Controller
	accounts     signer
	portfolios   *portfolio.Renderer
	board        *jobs.Board
	files        *common.FileProcessor
	maxResume    int64
	registry     *formatters.FormatterRegistry
	out          io.Writer
	readPassword func() (string, error)
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive dashboard",
		Long: `Start an interactive dashboard. It opens on your dashboard when a session
exists and on a sign-in prompt otherwise. Type "help" for the commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "proedualt> ",
				HistoryFile:     filepath.Join(filepath.Dir(a.cfg.Session.File), "history"),
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				Stdout:          cmd.OutOrStdout(),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize readline: %w", err)
			}
			defer rl.Close()

			ctrl, err := a.dashboard(cmd.Context(), rl.Stderr())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			sh := &shell{
				ctrl:       ctrl,
				accounts:   a.accounts,
				portfolios: portfolio.NewRenderer(a.client, a.om.Metrics(), a.logger),
				board:      jobs.NewBoard(a.client, a.logger),
				files:      common.NewFileProcessor(a.logger),
				maxResume:  a.cfg.Backend.MaxResumeSize,
				registry:   formatters.NewFormatterRegistry(),
				out:        rl.Stdout(),
				readPassword: func() (string, error) {
					b, err := term.ReadPassword(int(os.Stdin.Fd()))
					return string(b), err
				},
			}
			return sh.run(cmd.Context(), rl)
		},
	}
}

func (sh *shell) run(ctx context.Context, rl lineReader) error {
	sh.landing()

	for {
		line, err := rl.Readline()
		if err != nil {
			return endOfInput(err)
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}
		if err := sh.exec(ctx, args[0], args[1:]); err != nil {
			fmt.Fprintf(sh.out, "Error: %s\n", errors.UserMessage(err))
		}
	}
}

// landing shows the dashboard to a signed-in user and the sign-in hint
// to everyone else
func (sh *shell) landing() {
	if sh.ctrl.Snapshot().SignedIn() {
		sh.show(sh.ctrl.Snapshot())
		return
	}
	fmt.Fprintln(sh.out, "Welcome to ProEduAlt. Sign in with: login <email-or-phone>")
}

func (sh *shell) exec(ctx context.Context, name string, args []string) error {
	switch name {
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
		return nil
	case "login":
		return sh.login(ctx, args)
	}

	run, ok := shellCommands[name]
	if !ok {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown command %q, type help", name), nil)
	}
	if !publicCommands[name] && !sh.ctrl.Snapshot().SignedIn() {
		return errors.NewAuthError(errors.ErrCodeNotSignedIn, "Please sign in first: login <email-or-phone>", errors.ErrNoSession)
	}
	return run(sh, ctx, args)
}

// publicCommands work without a session
var publicCommands = map[string]bool{"portfolio": true, "jobs": true, "scrape": true}

var shellCommands = map[string]func(sh *shell, ctx context.Context, args []string) error{
	"dashboard": func(sh *shell, ctx context.Context, args []string) error {
		sh.show(sh.ctrl.Snapshot())
		return nil
	},
	"logout": func(sh *shell, ctx context.Context, args []string) error {
		if err := sh.ctrl.SignOut(ctx); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, "Signed out.")
		return nil
	},
	"edit": func(sh *shell, ctx context.Context, args []string) error {
		sh.ctrl.BeginEdit()
		sh.show(sh.ctrl.Snapshot())
		return nil
	},
	"handle": func(sh *shell, ctx context.Context, args []string) error {
		sh.ctrl.BeginEdit()
		sh.ctrl.SetHandleInput(strings.Join(args, " "))
		return nil
	},
	"save": func(sh *shell, ctx context.Context, args []string) error {
		if err := sh.ctrl.SaveHandle(ctx); err != nil {
			return err
		}
		sh.show(sh.ctrl.Snapshot())
		return nil
	},
	"cancel": func(sh *shell, ctx context.Context, args []string) error {
		sh.ctrl.CancelEdit()
		sh.show(sh.ctrl.Snapshot())
		return nil
	},
	"analyze": func(sh *shell, ctx context.Context, args []string) error {
		fmt.Fprintln(sh.out, "Analyzing...")
		if err := sh.ctrl.Analyze(ctx); err != nil {
			return err
		}
		sh.show(sh.ctrl.Snapshot())
		return nil
	},
	"plan": func(sh *shell, ctx context.Context, args []string) error {
		career, err := resolveCareer(sh.ctrl.Snapshot(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Generating plan for %s...\n", career)
		if err := sh.ctrl.GeneratePlan(ctx, career); err != nil {
			return err
		}
		sh.show(sh.ctrl.Snapshot())
		return nil
	},
	"done": func(sh *shell, ctx context.Context, args []string) error {
		return sh.toggle(args, true)
	},
	"undo": func(sh *shell, ctx context.Context, args []string) error {
		return sh.toggle(args, false)
	},
	"progress": func(sh *shell, ctx context.Context, args []string) error {
		sh.show(progressOf(sh.ctrl.Snapshot()))
		return nil
	},
	"upload": func(sh *shell, ctx context.Context, args []string) error {
		if len(args) != 1 {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest, dashboard.MsgNoFile, nil)
		}
		content, err := sh.files.ReadResume(args[0], sh.maxResume)
		if err != nil {
			return err
		}
		skills, err := sh.ctrl.UploadResume(ctx, filepath.Base(args[0]), content)
		if err != nil {
			return err
		}
		fmt.Fprintln(sh.out, skillsMessage(skills))
		return nil
	},
	"sync": func(sh *shell, ctx context.Context, args []string) error {
		msg, err := sh.ctrl.SyncProjects(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(sh.out, msg)
		return nil
	},
	"portfolio": func(sh *shell, ctx context.Context, args []string) error {
		handle := ""
		if len(args) > 0 {
			handle = args[0]
		} else if p := sh.ctrl.Snapshot().Profile; p.HasHandle() {
			handle = p.GithubUsername
		}
		sh.show(sh.portfolios.Load(ctx, handle))
		return nil
	},
	"jobs": func(sh *shell, ctx context.Context, args []string) error {
		list, err := sh.board.List(ctx)
		if err != nil {
			return err
		}
		sh.show(formatters.JobList(list))
		return nil
	},
	"scrape": func(sh *shell, ctx context.Context, args []string) error {
		msg, list, err := sh.board.Scrape(ctx)
		if msg != "" {
			fmt.Fprintln(sh.out, msg)
		}
		if err != nil {
			return err
		}
		sh.show(formatters.JobList(list))
		return nil
	},
}

func (sh *shell) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "usage: login <email-or-phone>", nil)
	}
	fmt.Fprint(sh.out, "Password: ")
	password, err := sh.readPassword()
	fmt.Fprintln(sh.out)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidRequest, "failed to read password", err)
	}

	s, err := sh.accounts.SignIn(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Signed in as %s.\n", s.Contact())
	return nil
}

// toggle applies the change at once; a failed save is reported through
// the controller's notices
func (sh *shell) toggle(args []string, complete bool) error {
	if len(args) != 1 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "a task id is required", nil)
	}
	id := types.ResourceID(args[0])
	if err := sh.ctrl.ToggleAsync(id, complete); err != nil {
		return err
	}
	if complete {
		fmt.Fprintf(sh.out, "[x] %s\n", id)
	} else {
		fmt.Fprintf(sh.out, "[ ] %s\n", id)
	}
	return nil
}

func (sh *shell) show(v any) {
	out, err := sh.registry.Format(v, "text")
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %s\n", err)
		return
	}
	fmt.Fprint(sh.out, out)
}
