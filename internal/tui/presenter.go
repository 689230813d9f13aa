package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/quotype/internal/model"
	"github.com/verte-zerg/quotype/internal/session"
)

const summaryDelay = time.Second

type summaryMsg struct {
	id int
}

// RenderQuote implements game.Presenter.
func (m *Model) RenderQuote(q model.Quote) {
	m.loading = false
	m.quote = q
	m.targetRunes = []rune(q.Text)
	m.charStates = make([]session.CharState, len(m.targetRunes))
}

// SetCharacterState implements game.Presenter.
func (m *Model) SetCharacterState(index int, state session.CharState) {
	if index < 0 || index >= len(m.charStates) {
		return
	}
	m.charStates[index] = state
}

// SetTimerDisplay implements game.Presenter.
func (m *Model) SetTimerDisplay(seconds int) {
	m.timerSeconds = seconds
}

// SetMetricsDisplay implements game.Presenter.
func (m *Model) SetMetricsDisplay(metrics model.Metrics, animate bool) {
	m.animID++
	if !animate || !m.cfg.Animate {
		m.counter.set(metrics)
		return
	}
	m.counter.begin(metrics, m.now())
	m.queue(animCmd(m.animID))
}

// ShowCompletionSummary implements game.Presenter. The summary appears
// after a short delay so the counters can settle first.
func (m *Model) ShowCompletionSummary(metrics model.Metrics) {
	m.summary = metrics
	m.history = append(m.history, metrics)
	m.summaryID++
	id := m.summaryID
	m.queue(tea.Tick(summaryDelay, func(time.Time) tea.Msg {
		return summaryMsg{id: id}
	}))
}

// HideCompletionSummary implements game.Presenter.
func (m *Model) HideCompletionSummary() {
	m.summaryVisible = false
	m.summaryID++
}

// ShowStartPrompt implements game.Presenter.
func (m *Model) ShowStartPrompt() {
	m.prompt = true
}

// HideStartPrompt implements game.Presenter.
func (m *Model) HideStartPrompt() {
	m.prompt = false
}

func (m *Model) queue(cmd tea.Cmd) {
	m.pending = append(m.pending, cmd)
}

func (m *Model) drain() tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}
