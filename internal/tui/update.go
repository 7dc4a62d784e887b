package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/steviee/nidhogg/pkg/apierr"
)

// Update handles messages and updates the model
func (m ChallengeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case submitResultMsg:
		m.submitting = false
		if msg.err == nil {
			slog.Info("security challenges answered")
			m.done = true
			return m, tea.Quit
		}

		m.attempts++
		if !isWrongAnswer(msg.err) || m.attempts >= MaxAttempts {
			slog.Error("security challenge submission failed", "attempt", m.attempts, "error", msg.err)
			m.fatal = msg.err
			return m, tea.Quit
		}

		slog.Warn("security answers rejected", "attempt", m.attempts)
		m.answers = [len(m.answers)]string{}
		m.current = 0
		m.input = nil
		m.err = fmt.Errorf("answers rejected, %d attempt(s) left", MaxAttempts-m.attempts)
		m.errorTime = time.Now()
		return m, clearErrorCmd()

	case clearErrorMsg:
		// Only clear if error is older than 3 seconds
		if time.Since(m.errorTime) >= 3*time.Second {
			m.err = nil
		}
		return m, nil
	}

	return m, nil
}

// isWrongAnswer reports whether the server rejected the answers themselves.
func isWrongAnswer(err error) bool {
	return errors.Is(err, apierr.ErrInvalidArgument) && apierr.StatusCode(err) == http.StatusForbidden
}

// handleKeyPress handles keyboard input
func (m ChallengeModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	}

	// Input is frozen while the answers are in flight.
	if m.submitting {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		return m.confirm()

	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil

	case tea.KeyShiftTab, tea.KeyUp:
		if m.current > 0 {
			m.answers[m.current] = string(m.input)
			m.current--
			m.input = []rune(m.answers[m.current])
		}
		return m, nil

	case tea.KeyCtrlR:
		m.reveal = !m.reveal
		return m, nil

	case tea.KeySpace:
		m.input = append(m.input, ' ')
		return m, nil

	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
		return m, nil
	}

	return m, nil
}

// confirm stores the current answer and advances, submitting after the last
// question.
func (m ChallengeModel) confirm() (tea.Model, tea.Cmd) {
	answer := strings.TrimSpace(string(m.input))
	if answer == "" {
		m.err = errors.New("answer cannot be empty")
		m.errorTime = time.Now()
		return m, clearErrorCmd()
	}

	m.answers[m.current] = answer
	m.err = nil

	if m.current < len(m.challenges)-1 {
		m.current++
		m.input = []rune(m.answers[m.current])
		return m, nil
	}

	m.input = nil
	m.submitting = true
	return m, submitCmd(m.ctx, m.submit, m.Solves())
}
