package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/saurav/teachback/internal/ui/theme"
)

// MasteryBar displays a labeled horizontal bar for one concept's
// effective mastery, colored by the traffic-light thresholds.
type MasteryBar struct {
	Label       string
	Value       float64 // 0-1
	ShowPercent bool
	Width       int
}

// NewMasteryBar creates a new mastery bar.
func NewMasteryBar(label string, value float64, showPercent bool, width int) MasteryBar {
	return MasteryBar{
		Label:       label,
		Value:       value,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the bar.
func (b MasteryBar) View() string {
	var result string

	if b.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(b.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if b.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := b.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * b.Value)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	filledStr := lipgloss.NewStyle().
		Background(theme.MasteryColor(b.Value)).
		Render(strings.Repeat(" ", filled))

	emptyStr := lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))

	result += filledStr + emptyStr

	if b.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(b.Value*100)))
	}

	return result
}
