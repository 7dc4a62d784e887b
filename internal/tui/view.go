package tui

import (
	"fmt"
	"strings"
	"time"
)

// View renders the prompt
func (m ChallengeModel) View() string {
	if m.cancelled {
		return "Cancelled.\n"
	}
	if m.done {
		return successStyle.Render("Security challenges answered, this IP is now secured.") + "\n"
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render("Security questions"))
	b.WriteString("\n\n")

	for i, c := range m.challenges {
		switch {
		case i < m.current:
			b.WriteString(answeredStyle.Render(fmt.Sprintf("✓ %s", c.Question.Question)))
		case i == m.current && !m.submitting:
			b.WriteString(questionStyle.Render(fmt.Sprintf("(%d/%d) %s", i+1, len(m.challenges), c.Question.Question)))
			b.WriteString("\n")
			b.WriteString(inputStyle.Render("> " + m.renderInput()))
		default:
			b.WriteString(pendingStyle.Render(fmt.Sprintf("  %s", c.Question.Question)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.submitting {
		b.WriteString("Submitting answers...\n")
	} else {
		b.WriteString(footerStyle.Render("enter: next • shift+tab: back • ctrl+r: show/hide • esc: cancel"))
		b.WriteString("\n")
	}

	if m.err != nil && time.Since(m.errorTime) < 3*time.Second {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %s", m.err)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderInput returns the current input, masked unless revealed
func (m ChallengeModel) renderInput() string {
	if m.reveal {
		return string(m.input)
	}
	return strings.Repeat("•", len(m.input))
}
