// Package review implements the spaced-repetition review queue: due
// concepts are presented one at a time and the learner self-grades recall
// on the 0-5 scale.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/saurav/teachback/internal/app"
	"github.com/saurav/teachback/internal/spacedrep"
	"github.com/saurav/teachback/internal/ui/components"
	"github.com/saurav/teachback/internal/ui/layout"
	"github.com/saurav/teachback/internal/ui/theme"
)

type gradedMsg struct {
	item *spacedrep.ReviewItem
	err  error
}

// Model steps through the due review queue.
type Model struct {
	app *app.App
	due []*spacedrep.ReviewItem

	index    int
	revealed bool
	waiting  bool
	last     *spacedrep.ReviewItem

	width  int
	height int
	errMsg string
}

// New builds the review queue for the given moment.
func New(a *app.App, now time.Time) *Model {
	return &Model{
		app: a,
		due: a.Scheduler.DueReviews(now),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) current() *spacedrep.ReviewItem {
	if m.index >= len(m.due) {
		return nil
	}
	return m.due[m.index]
}

func (m *Model) grade(quality int) tea.Cmd {
	concept := m.current().Concept
	return func() tea.Msg {
		item, err := m.app.RecordReview(context.Background(), concept, quality, time.Now())
		return gradedMsg{item: item, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case gradedMsg:
		m.waiting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.last = msg.item
		m.index++
		m.revealed = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	}

	if m.current() == nil || m.waiting {
		if key == "enter" {
			return m, tea.Quit
		}
		return m, nil
	}

	if !m.revealed {
		if key == "enter" || key == " " {
			m.revealed = true
		}
		return m, nil
	}

	if len(key) == 1 && key[0] >= '0' && key[0] <= '5' {
		m.waiting = true
		return m, m.grade(int(key[0] - '0'))
	}
	return m, nil
}

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

	status := fmt.Sprintf("%d of %d", min(m.index+1, len(m.due)), len(m.due))
	if len(m.due) == 0 {
		status = ""
	}
	header := layout.RenderHeader("Review", status, m.width)
	footer := layout.RenderFooter(m.keyHints(), m.width)

	v.SetContent(layout.RenderFrame(header, m.renderContent(), footer, m.width, m.height))
	return v
}

func (m *Model) keyHints() []layout.KeyHint {
	switch {
	case m.current() == nil:
		return []layout.KeyHint{{Key: "Enter", Description: "Done"}}
	case !m.revealed:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Reveal grading"},
			{Key: "Esc", Description: "Stop"},
		}
	default:
		return []layout.KeyHint{
			{Key: "0-5", Description: "Grade recall"},
			{Key: "Esc", Description: "Stop"},
		}
	}
}

func (m *Model) renderContent() string {
	if m.errMsg != "" {
		return lipgloss.NewStyle().
			Width(m.width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", m.errMsg))
	}

	if len(m.due) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing due. Come back tomorrow.")
	}

	item := m.current()
	if item == nil {
		return m.renderDone()
	}

	var b strings.Builder
	b.WriteString("\n\n")

	label := item.Concept
	if node := m.app.Graph.Node(item.Concept); node != nil {
		label = node.Label
	}

	b.WriteString(lipgloss.NewStyle().
		Width(m.width).Align(lipgloss.Center).Bold(true).Foreground(theme.Text).
		Render("Recall: " + label))
	b.WriteString("\n\n")

	if node := m.app.Graph.Node(item.Concept); node != nil {
		bar := components.NewMasteryBar("mastery", node.EffectiveMastery(time.Now()), true, 40)
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, bar.View()))
		b.WriteString("\n\n")
	}

	if overdue := item.OverdueDays(time.Now()); overdue >= 1 {
		b.WriteString(lipgloss.NewStyle().
			Width(m.width).Align(lipgloss.Center).Foreground(theme.Warning).
			Render(fmt.Sprintf("%.0f days overdue", overdue)))
		b.WriteString("\n\n")
	}

	if !m.revealed {
		b.WriteString(lipgloss.NewStyle().
			Width(m.width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("Explain it to yourself, then press Enter."))
		return b.String()
	}

	scale := []string{
		"0  blank",
		"1  wrong, recognized the answer",
		"2  wrong, answer felt close",
		"3  correct with real effort",
		"4  correct after hesitation",
		"5  instant and correct",
	}
	for _, line := range scale {
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center,
			theme.Body.Render(line)))
		b.WriteString("\n")
	}

	if m.last != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(m.width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render(fmt.Sprintf("last: next review in %d day(s)", m.last.IntervalDays)))
	}

	return b.String()
}

func (m *Model) renderDone() string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(m.width).Align(lipgloss.Center).Foreground(theme.Success).Bold(true).
		Render(fmt.Sprintf("Reviewed %d concept(s).", len(m.due))))
	if m.last != nil {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(m.width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render(fmt.Sprintf("Most recent comes back in %d day(s).", m.last.IntervalDays)))
	}
	return b.String()
}

// Run starts the review program and saves state when it exits.
func Run(a *app.App) error {
	m := New(a, time.Now())
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return err
	}
	return a.SaveSnapshot(context.Background())
}
