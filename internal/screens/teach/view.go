package teach

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/saurav/teachback/internal/session"
	"github.com/saurav/teachback/internal/ui/layout"
	"github.com/saurav/teachback/internal/ui/theme"
)

// visibleTurns bounds how much transcript is drawn; the full transcript
// still goes to the scorer.
const visibleTurns = 8

func (m *Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	status := fmt.Sprintf("turn %d  ·  %s", m.coord.Turn()+1, m.coord.Strategy())
	header := layout.RenderHeader("Teaching: "+m.transcript.Topic, status, m.width)
	footer := layout.RenderFooter(m.keyHints(), m.width)

	var content string
	switch {
	case m.errMsg != "":
		content = lipgloss.NewStyle().
			Width(m.width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nSession error: %s", m.errMsg))
	case m.report != nil:
		content = m.renderReport()
	default:
		content = m.renderConversation()
	}

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func (m *Model) keyHints() []layout.KeyHint {
	if m.report != nil || m.errMsg != "" {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Finish early"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m *Model) renderConversation() string {
	var b strings.Builder
	b.WriteString("\n")

	turns := m.transcript.Turns
	if len(turns) > visibleTurns {
		turns = turns[len(turns)-visibleTurns:]
		b.WriteString(theme.Hint.Render("  … earlier turns hidden"))
		b.WriteString("\n\n")
	}

	bodyWidth := m.width - 8
	if bodyWidth < 20 {
		bodyWidth = 20
	}

	for _, turn := range turns {
		var speaker string
		if turn.Role == "learner" {
			speaker = theme.Learner.Render("  you")
		} else {
			speaker = theme.Student.Render("  student")
		}
		b.WriteString(speaker)
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Text).
			Width(bodyWidth).
			PaddingLeft(2).
			Render(turn.Content))
		b.WriteString("\n\n")
	}

	if m.waiting {
		if m.coord.Status() == session.StatusScoring {
			b.WriteString(theme.Hint.Render("  scoring your explanation..."))
		} else {
			b.WriteString(theme.Hint.Render("  student is thinking..."))
		}
	} else {
		b.WriteString("  " + m.input.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *Model) renderReport() string {
	r := m.report
	var b strings.Builder
	b.WriteString("\n")

	gradeStyle := theme.Good
	if r.Grade.Grade == "D" || r.Grade.Grade == "F" || !r.Grade.ConjunctivePass {
		gradeStyle = theme.Weak
	}

	b.WriteString(fmt.Sprintf("  %s  %s\n",
		theme.Title.Render("Session graded:"),
		gradeStyle.Render(r.Grade.Grade)))
	b.WriteString(theme.Subtitle.Render(
		fmt.Sprintf("  aggregate %.2f · score %d/100", r.Grade.WeightedAggregate, r.Grade.LegacyScore)))
	b.WriteString("\n")
	if !r.Grade.ConjunctivePass {
		b.WriteString(theme.Weak.Render("  conjunctive pass failed: one criterion fell below the floor"))
		b.WriteString("\n")
	}
	if r.GradeRationale != "" {
		b.WriteString(theme.Hint.Render("  " + r.GradeRationale))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	criteria := []struct {
		label string
		value int
	}{
		{"completeness", r.Grade.Completeness},
		{"depth", r.Grade.Depth},
		{"clarity", r.Grade.Clarity},
		{"coherence", r.Grade.StructuralCoherence},
		{"insight", r.Grade.PedagogicalInsight},
	}
	for _, c := range criteria {
		filled := strings.Repeat("●", c.value)
		empty := strings.Repeat("○", 5-c.value)
		b.WriteString(fmt.Sprintf("  %-14s %s%s\n", c.label,
			lipgloss.NewStyle().Foreground(theme.Primary).Render(filled),
			theme.Subtitle.Render(empty)))
	}
	b.WriteString("\n")

	if len(r.RatingResults) > 0 {
		b.WriteString(theme.Body.Render("  Ratings"))
		b.WriteString("\n")
		for _, res := range r.RatingResults {
			arrow := "+"
			style := theme.Good
			if res.Delta < 0 {
				arrow = ""
				style = theme.Weak
			}
			b.WriteString(fmt.Sprintf("    %-22s %d %s\n", res.Dimension, res.After,
				style.Render(fmt.Sprintf("(%s%d)", arrow, res.Delta))))
		}
		b.WriteString("\n")
	}

	if len(r.Outcome.Mastered) > 0 {
		b.WriteString("  " + theme.Good.Render("Understood: ") +
			theme.Body.Render(strings.Join(r.Outcome.Mastered, ", ")))
		b.WriteString("\n")
	}
	if len(r.Outcome.Gaps) > 0 {
		b.WriteString("  " + theme.Weak.Render("Gaps: ") +
			theme.Body.Render(strings.Join(r.Outcome.Gaps, ", ")))
		b.WriteString("\n")
	}

	for _, badge := range r.NewBadges {
		b.WriteString(fmt.Sprintf("  %s %s — %s\n",
			badge.Tier.Icon(),
			theme.Selected.Render(badge.Title),
			theme.Subtitle.Render(badge.Description)))
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Body.Render("  Next up"))
		b.WriteString("\n")
		for _, rec := range r.Recommendations {
			b.WriteString(fmt.Sprintf("    · %s %s\n", rec.Label,
				theme.Hint.Render("("+rec.Reason+")")))
		}
	}

	return b.String()
}
