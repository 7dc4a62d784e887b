package security

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steviee/nidhogg/internal/cli/cmdutil"
	"github.com/steviee/nidhogg/internal/tui"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/data"
	"github.com/steviee/nidhogg/pkg/mojang"
)

// NewCommand creates the security command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security",
		Short: "Secure the current IP with security questions",
		Long: `Check whether the current IP is trusted for the stored session and
answer the account's security questions to trust it.

Skin changes and some account operations fail until the IP is secured.`,
		Example: `  # Is this IP trusted?
  nidhogg security check

  # Show the questions
  nidhogg security challenges

  # Answer them interactively
  nidhogg security answer

  # Answer them from a script
  nidhogg security answer --answer 101=rex --answer 102=alien --answer 103=beetle`,
	}

	// Add subcommands
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewChallengesCommand())
	cmd.AddCommand(NewAnswerCommand())

	return cmd
}

// NewCheckCommand creates the security check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		Short:   "Check whether the current IP is secured",
		Long:    `Check whether the current IP is trusted for the stored session.`,
		Example: `  nidhogg security check`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput())
		},
	}
}

func runCheck(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool) error {
	session, err := env.Session()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	client, err := env.MojangClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	secure, err := client.IsIPSecure(ctx, session)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, map[string]bool{"secure": secure}, "")
	}
	if secure {
		_, _ = fmt.Fprintln(w, "This IP is secured")
	} else {
		_, _ = fmt.Fprintln(w, "This IP is not secured, run 'nidhogg security answer'")
	}
	return nil
}

// NewChallengesCommand creates the security challenges command.
func NewChallengesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "challenges",
		Short:   "Show the security questions",
		Long:    `Show the account's security questions with the ids their answers must carry.`,
		Example: `  nidhogg security challenges`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			return runChallenges(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput())
		},
	}
}

func runChallenges(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool) error {
	session, err := env.Session()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	client, err := env.MojangClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	challenges, err := client.GetSecurityChallenges(ctx, session)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	if jsonOutput {
		return cmdutil.WriteSuccess(w, challenges, "")
	}
	for _, c := range challenges {
		_, _ = fmt.Fprintf(w, "%4d  %s\n", c.Answer.ID, c.Question.Question)
	}
	return nil
}

// NewAnswerCommand creates the security answer command.
func NewAnswerCommand() *cobra.Command {
	var answers []string

	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Answer the security questions",
		Long: `Answer the three security questions to secure the current IP.

Without --answer the questions are asked interactively. With --answer all
three answers must be given as <id>=<answer>, using the ids shown by
'nidhogg security challenges'.`,
		Example: `  # Interactive
  nidhogg security answer

  # Non-interactive
  nidhogg security answer --answer 101=rex --answer 102=alien --answer 103=beetle`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdutil.LoadEnv()
			if err != nil {
				return err
			}
			if len(answers) == 0 {
				return runAnswerInteractive(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput())
			}
			return runAnswer(cmd.Context(), cmd.OutOrStdout(), env, cmdutil.IsJSONOutput(), answers)
		},
	}

	cmd.Flags().StringArrayVar(&answers, "answer", nil, "Answer as <id>=<answer> (repeat for each question)")

	return cmd
}

// parseAnswers parses --answer values.
func parseAnswers(values []string) ([]data.SecurityChallengeSolve, error) {
	if len(values) != mojang.ChallengeCount {
		return nil, apierr.InvalidArgument("expected %d answers, got %d", mojang.ChallengeCount, len(values))
	}

	solves := make([]data.SecurityChallengeSolve, 0, len(values))
	for _, v := range values {
		idText, answer, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(answer) == "" {
			return nil, apierr.InvalidArgument("answer %q must look like <id>=<answer>", v)
		}
		id, err := strconv.Atoi(strings.TrimSpace(idText))
		if err != nil {
			return nil, apierr.InvalidArgument("answer id %q is not a number", idText)
		}
		solves = append(solves, data.SecurityChallengeSolve{ID: id, Answer: answer})
	}
	return solves, nil
}

func runAnswer(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool, values []string) error {
	solves, err := parseAnswers(values)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	session, err := env.Session()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	client, err := env.MojangClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	if err := client.SubmitSecurityChallengeAnswers(ctx, session, solves); err != nil {
		return cmdutil.OutputError(w, jsonOutput, fmt.Errorf("answers rejected: %w", err))
	}

	return printSecured(w, jsonOutput)
}

func runAnswerInteractive(ctx context.Context, w io.Writer, env *cmdutil.Env, jsonOutput bool) error {
	session, err := env.Session()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	client, err := env.MojangClient()
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}
	defer client.Close()

	challenges, err := client.GetSecurityChallenges(ctx, session)
	if err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	submit := func(ctx context.Context, answers []data.SecurityChallengeSolve) error {
		return client.SubmitSecurityChallengeAnswers(ctx, session, answers)
	}
	if _, err := tui.RunChallengePrompt(ctx, challenges, submit); err != nil {
		return cmdutil.OutputError(w, jsonOutput, err)
	}

	return printSecured(w, jsonOutput)
}

func printSecured(w io.Writer, jsonOutput bool) error {
	if jsonOutput {
		return cmdutil.WriteSuccess(w, map[string]bool{"secure": true}, "IP secured")
	}
	_, _ = fmt.Fprintln(w, "This IP is now secured")
	return nil
}
