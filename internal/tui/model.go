// Package tui implements the interactive security challenge prompt.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/steviee/nidhogg/pkg/data"
	"github.com/steviee/nidhogg/pkg/mojang"
)

// ErrCancelled is returned when the user aborts the prompt.
var ErrCancelled = errors.New("security challenge prompt cancelled")

// MaxAttempts is how many times wrong answers may be submitted before the
// prompt gives up.
const MaxAttempts = 3

// SubmitFunc sends the collected answers to the server.
type SubmitFunc func(ctx context.Context, answers []data.SecurityChallengeSolve) error

// ChallengeModel is the bubbletea model for answering security questions
type ChallengeModel struct {
	ctx        context.Context
	challenges [mojang.ChallengeCount]data.SecurityChallenge
	answers    [mojang.ChallengeCount]string
	current    int
	input      []rune
	reveal     bool
	submit     SubmitFunc
	submitting bool
	attempts   int
	err        error
	errorTime  time.Time
	fatal      error
	done       bool
	cancelled  bool
}

// NewChallengeModel creates a prompt for challenges whose answers are handed
// to submit once all of them are filled in.
func NewChallengeModel(ctx context.Context, challenges [mojang.ChallengeCount]data.SecurityChallenge, submit SubmitFunc) ChallengeModel {
	return ChallengeModel{
		ctx:        ctx,
		challenges: challenges,
		submit:     submit,
	}
}

// Init initializes the model
func (m ChallengeModel) Init() tea.Cmd {
	return nil
}

// Solves returns the collected answers keyed by the challenges' answer ids.
func (m ChallengeModel) Solves() []data.SecurityChallengeSolve {
	solves := make([]data.SecurityChallengeSolve, 0, len(m.challenges))
	for i, c := range m.challenges {
		solves = append(solves, data.SecurityChallengeSolve{ID: c.Answer.ID, Answer: m.answers[i]})
	}
	return solves
}

// submitCmd returns a command that submits the answers
func submitCmd(ctx context.Context, submit SubmitFunc, answers []data.SecurityChallengeSolve) tea.Cmd {
	return func() tea.Msg {
		return submitResultMsg{err: submit(ctx, answers)}
	}
}

// clearErrorCmd returns a command that clears the error message after a delay
func clearErrorCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}

// RunChallengePrompt asks the user the three security questions on the
// terminal and submits the answers. Wrong answers restart the questions up
// to MaxAttempts times.
func RunChallengePrompt(ctx context.Context, challenges [mojang.ChallengeCount]data.SecurityChallenge, submit SubmitFunc) ([]data.SecurityChallengeSolve, error) {
	p := tea.NewProgram(
		NewChallengeModel(ctx, challenges, submit),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
	)

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run prompt: %w", err)
	}

	m, ok := final.(ChallengeModel)
	if !ok {
		return nil, fmt.Errorf("unexpected prompt model %T", final)
	}

	switch {
	case m.cancelled:
		return nil, ErrCancelled
	case m.fatal != nil:
		return nil, m.fatal
	case !m.done:
		return nil, ErrCancelled
	}
	return m.Solves(), nil
}
