package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/saurav/teachback/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with teachback styling. It is the
// learner's side of the teach-back conversation, so it allows long
// free-text entry.
type TextInput struct {
	Model     textinput.Model
	submitted bool
}

// NewTextInput creates a new styled text input.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.submitted {
		view += " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render("…")
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Clear resets the input for the next turn.
func (t *TextInput) Clear() {
	t.Model.SetValue("")
	t.submitted = false
}

// Submit marks the input as waiting on the other side of the conversation.
func (t *TextInput) Submit() {
	t.submitted = true
}
