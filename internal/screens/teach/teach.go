// Package teach implements the interactive teach-back session: the
// learner explains a topic to an AI student, turn by turn, and the
// session is scored when the turn budget runs out or the learner stops.
package teach

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/saurav/teachback/internal/app"
	"github.com/saurav/teachback/internal/extract"
	"github.com/saurav/teachback/internal/session"
	"github.com/saurav/teachback/internal/store"
	"github.com/saurav/teachback/internal/ui/components"
)

type studentTurnMsg struct {
	opening bool
	result  *extract.TurnResult
	err     error
}

type scoredMsg struct {
	report *app.Report
	err    error
}

// Model is the root Bubble Tea model for one teach-back session.
type Model struct {
	app        *app.App
	coord      *session.Coordinator
	transcript *extract.Transcript
	input      components.TextInput

	width   int
	height  int
	waiting bool
	report  *app.Report
	errMsg  string
}

// New creates a session model for the given topic. The coordinator is
// walked to active immediately; context loading happened in the caller.
func New(a *app.App, topic, mode string, maxTurns int) (*Model, error) {
	coord := session.New(session.Config{Topic: topic, Mode: mode, MaxTurns: maxTurns})
	if err := coord.Begin(); err != nil {
		return nil, err
	}
	if err := coord.Ready(); err != nil {
		return nil, err
	}
	if err := coord.Start(); err != nil {
		return nil, err
	}

	return &Model{
		app:   a,
		coord: coord,
		transcript: &extract.Transcript{
			SessionID: coord.ID(),
			Topic:     topic,
		},
		input:   components.NewTextInput("Explain it in your own words...", 2000),
		waiting: true,
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.input.Init(),
		m.recordStart(),
		m.studentTurn(true),
	)
}

func (m *Model) recordStart() tea.Cmd {
	return func() tea.Msg {
		err := m.app.Store.EventRepo().AppendSessionEvent(context.Background(), store.SessionEventData{
			SessionID: m.coord.ID(),
			Topic:     m.transcript.Topic,
			Action:    "start",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: record session start: %v\n", err)
		}
		return nil
	}
}

// studentTurn asks the AI student for its next reply. The opening turn
// carries no assessment of the learner.
func (m *Model) studentTurn(opening bool) tea.Cmd {
	strategy := m.coord.Strategy().String()
	snapshot := *m.transcript
	return func() tea.Msg {
		res, err := m.app.Extractor.StudentTurn(context.Background(), &snapshot, strategy)
		return studentTurnMsg{opening: opening, result: res, err: err}
	}
}

func (m *Model) score() tea.Cmd {
	snapshot := *m.transcript
	turns := m.coord.Turn()
	rqsAvg := m.coord.AverageQuality()
	mode := m.coord.Mode()
	return func() tea.Msg {
		report, err := m.app.FinishSession(context.Background(), &snapshot,
			mode, false, turns, rqsAvg, time.Now())
		return scoredMsg{report: report, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case studentTurnMsg:
		return m.handleStudentTurn(msg)

	case scoredMsg:
		return m.handleScored(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if !m.waiting && m.report == nil {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleStudentTurn(msg studentTurnMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.coord.Fail(msg.err)
		m.errMsg = msg.err.Error()
		return m, nil
	}

	if !msg.opening {
		out, err := m.coord.RecordTurn(session.TurnSignal{
			Quality:         msg.result.Quality,
			LeadingQuestion: msg.result.LeadingQuestion,
		})
		if err != nil {
			m.coord.Fail(err)
			m.errMsg = err.Error()
			return m, nil
		}
		if out.ScoringDue {
			m.transcript.Turns = append(m.transcript.Turns,
				extract.Turn{Role: "tutor", Content: msg.result.Reply})
			m.waiting = true
			return m, m.score()
		}
	}

	m.transcript.Turns = append(m.transcript.Turns,
		extract.Turn{Role: "tutor", Content: msg.result.Reply})
	m.waiting = false
	m.input.Clear()
	return m, nil
}

func (m *Model) handleScored(msg scoredMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.coord.Fail(msg.err)
		m.errMsg = msg.err.Error()
		return m, nil
	}
	if err := m.coord.CompleteScoring(); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.report = msg.report
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.report != nil || m.errMsg != "" {
			return m, tea.Quit
		}
		if m.coord.Status() == session.StatusActive && !m.waiting {
			// Learner is done early; score what we have.
			if err := m.coord.ForceFinish(); err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.waiting = true
			return m, m.score()
		}
		return m, nil

	case "enter":
		if m.report != nil {
			return m, tea.Quit
		}
		if m.waiting || m.coord.Status() != session.StatusActive {
			return m, nil
		}
		text := m.input.Value()
		if text == "" {
			return m, nil
		}
		m.transcript.Turns = append(m.transcript.Turns,
			extract.Turn{Role: "learner", Content: text})
		m.input.Submit()
		m.waiting = true
		return m, m.studentTurn(false)
	}

	if !m.waiting && m.report == nil {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Run starts the session program.
func Run(a *app.App, topic, mode string, maxTurns int) error {
	m, err := New(a, topic, mode, maxTurns)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m).Run()
	return err
}
