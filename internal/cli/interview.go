package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"proedualt/internal/errors"
	"proedualt/internal/interview"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

// lineReader is the part of *readline.Instance the interactive loops use
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

func newInterviewCmd() *cobra.Command {
	var career string

	cmd := &cobra.Command{
		Use:   "interview",
		Short: "Practice a mock interview",
		Long: `Practice a mock interview. Pick a career path, answer the question and
read the feedback. Type /next for another question and /quit to finish.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "career> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "/quit",
				Stdout:          cmd.OutOrStdout(),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize readline: %w", err)
			}
			defer rl.Close()

			sess := interview.NewSession(a.client, a.logger)
			return runInterview(cmd.Context(), sess, rl, cmd.OutOrStdout(), career)
		},
	}
	cmd.Flags().StringVar(&career, "career", "", "Career path (name or number)")
	return cmd
}

// runInterview drives one interview until the user quits or input ends
func runInterview(ctx context.Context, sess *interview.Session, rl lineReader, out io.Writer, career string) error {
	for sess.State().Stage == interview.StageSelecting {
		if career == "" {
			fmt.Fprintln(out, "Choose a career path:")
			for i, c := range interview.Careers {
				fmt.Fprintf(out, "  %d. %s\n", i+1, c)
			}
			rl.SetPrompt("career> ")
			line, err := rl.Readline()
			if err != nil {
				return endOfInput(err)
			}
			career = strings.TrimSpace(line)
			if career == "/quit" {
				return nil
			}
		}

		name, ok := interview.ResolveCareer(career)
		career = ""
		if !ok {
			fmt.Fprintln(out, interview.MsgSelectCareer)
			continue
		}
		question, err := sess.Start(ctx, name)
		if err != nil {
			fmt.Fprintf(out, "Error: %s\n", errors.UserMessage(err))
			continue
		}
		printQuestion(out, question)
	}

	rl.SetPrompt("answer> ")
	for {
		line, err := rl.Readline()
		if err != nil {
			return endOfInput(err)
		}

		switch strings.TrimSpace(line) {
		case "/quit":
			return nil
		case "/next":
			question, err := sess.Next(ctx)
			if err != nil {
				fmt.Fprintf(out, "Error: %s\n", errors.UserMessage(err))
				continue
			}
			printQuestion(out, question)
		default:
			feedback, err := sess.Submit(ctx, line)
			if err != nil {
				fmt.Fprintf(out, "Error: %s\n", errors.UserMessage(err))
				continue
			}
			fmt.Fprintf(out, "\nFeedback:\n%s\n\nType /next for another question or /quit to finish.\n", feedback)
		}
	}
}

func printQuestion(out io.Writer, question string) {
	fmt.Fprintf(out, "\nQuestion:\n%s\n\n", question)
}

// endOfInput maps the errors that end an interactive loop normally to nil
func endOfInput(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
		return nil
	}
	return err
}
