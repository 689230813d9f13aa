// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/quotype/internal/game"
	"github.com/verte-zerg/quotype/internal/model"
	"github.com/verte-zerg/quotype/internal/quote"
	"github.com/verte-zerg/quotype/internal/session"
	"github.com/verte-zerg/quotype/internal/stats"
)

type quoteMsg game.Loaded

type tickMsg struct {
	id int
}

// Model implements the Bubble Tea typing UI and receives notifications
// from the game controller.
type Model struct {
	cfg    model.Config
	ctrl   *game.Controller
	logger *slog.Logger
	now    func() time.Time

	input   textinput.Model
	spinner spinner.Model

	width  int
	height int

	token       string
	loading     bool
	quote       model.Quote
	targetRunes []rune
	charStates  []session.CharState
	prompt      bool

	timerSeconds int
	counter      counter
	animID       int

	summary        model.Metrics
	summaryID      int
	summaryVisible bool

	history []model.Metrics
	pending []tea.Cmd
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	authorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Italic(true)
	promptStyle      = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F0F0F0")).
				Padding(1, 4).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
	modalTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	modalValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// NewModel constructs a typing TUI model.
func NewModel(cfg model.Config, src quote.Source, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	input := textinput.New()
	input.Prompt = ""
	input.Cursor.SetMode(cursor.CursorHide)

	m := &Model{
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		input:   input,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(currentWordStyle)),
	}
	m.ctrl = game.NewController(src, m,
		game.WithLogger(logger),
		game.WithClock(func() time.Time { return m.now() }),
	)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.restart()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case quoteMsg:
		if !m.ctrl.OnQuoteLoaded(game.Loaded(msg)) {
			return m, nil
		}
		m.input.Reset()
		return m, tea.Batch(m.input.Focus(), m.drain())
	case tickMsg:
		if m.ctrl.OnTick(msg.id) {
			return m, tickCmd(msg.id)
		}
		return m, nil
	case animMsg:
		if msg.id != m.animID {
			return m, nil
		}
		if m.counter.step(msg.at) {
			return m, animCmd(msg.id)
		}
		return m, nil
	case summaryMsg:
		if msg.id == m.summaryID {
			m.summaryVisible = true
		}
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	content := m.renderContent(contentWidth)
	if m.width == 0 || m.height == 0 {
		return content
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	header := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderHeader())
	body := lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, content)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return header + "\n" + body + "\n" + footer
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyCtrlR:
		return m, m.restart()
	}

	if m.summaryVisible {
		switch msg.Type {
		case tea.KeyEsc:
			m.summaryVisible = false
		case tea.KeyEnter:
			return m, m.restart()
		}
		return m, nil
	}
	if m.loading {
		return m, nil
	}
	if m.prompt {
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace {
			m.ctrl.DismissStartPrompt()
		}
		return m, m.drain()
	}
	if !m.ctrl.Accepting() {
		if msg.Type == tea.KeyEnter {
			return m, m.restart()
		}
		return m, nil
	}
	if msg.Type == tea.KeyEnter {
		return m, nil
	}

	prev := m.input.Value()
	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	if m.input.Value() == prev {
		return m, inputCmd
	}

	res := m.ctrl.OnInputChanged([]rune(m.input.Value()), m.input.Position())
	if res.Changed {
		m.input.SetValue(string(res.Input))
		m.input.SetCursor(res.Cursor)
	}
	if res.Ended {
		m.input.Blur()
	}
	cmds := []tea.Cmd{inputCmd, m.drain()}
	if res.TimerID != 0 {
		cmds = append(cmds, tickCmd(res.TimerID))
	}
	return m, tea.Batch(cmds...)
}

// restart abandons the current session and fetches a new quote.
func (m *Model) restart() tea.Cmd {
	m.token = m.ctrl.Restart()
	m.loading = true
	m.quote = model.Quote{}
	m.targetRunes = nil
	m.charStates = nil
	m.prompt = false
	m.input.Reset()
	m.input.Blur()
	m.logger.Debug("fetching quote", "session", m.token)

	ctrl := m.ctrl
	token := m.token
	fetch := func() tea.Msg {
		return quoteMsg(ctrl.Fetch(context.Background(), token))
	}
	return tea.Batch(m.drain(), m.spinner.Tick, fetch)
}

func tickCmd(id int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

func (m *Model) renderContent(width int) string {
	switch {
	case m.summaryVisible:
		return m.renderSummary()
	case m.loading:
		return m.spinner.View() + " " + pendingStyle.Render("Fetching a quote...")
	case m.prompt:
		return promptStyle.Render("Press enter to start typing")
	}
	if len(m.targetRunes) == 0 {
		return ""
	}
	styled := buildStyledRunes(m.targetRunes, m.charStates)
	text := renderStyledRunes(styled)
	if m.width > 0 {
		text = lipgloss.NewStyle().Width(width).Render(wrapStyledRunes(styled, width))
	}
	if m.quote.Author == "" {
		return text
	}
	return text + "\n\n" + authorStyle.Render("— "+m.quote.Author)
}

func (m *Model) renderHeader() string {
	wpm, acc := m.counter.values()
	return headerStyle.Render(fmt.Sprintf("%ds   %d WPM   %d%%", m.timerSeconds, wpm, acc))
}

func (m *Model) renderFooter() string {
	progress := 0
	if len(m.targetRunes) > 0 {
		progress = int(float64(len([]rune(m.input.Value()))) / float64(len(m.targetRunes)) * 100)
	}
	segments := []string{fmt.Sprintf("Progress %d%%", progress)}
	if len(m.history) > 0 {
		last := m.history[len(m.history)-1]
		segments = append(segments, fmt.Sprintf("Last %d WPM · %d%%", last.WPM, last.Accuracy))
		best := last
		wpms := make([]float64, 0, len(m.history))
		for _, h := range m.history {
			if h.WPM > best.WPM {
				best = h
			}
			wpms = append(wpms, float64(h.WPM))
		}
		segments = append(segments, fmt.Sprintf("Best %d WPM", best.WPM))
		if len(wpms) > 1 {
			segments = append(segments, "Trend "+stats.Sparkline(wpms))
		}
	}
	segments = append(segments, "ctrl+r restart · ctrl+c quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderSummary() string {
	rows := formatTable([][]string{
		{"WPM", fmt.Sprintf("%d", m.summary.WPM)},
		{"Accuracy", fmt.Sprintf("%d%%", m.summary.Accuracy)},
		{"Time", m.summary.Elapsed.Round(100 * time.Millisecond).String()},
	}, map[int]bool{1: true})
	lines := []string{modalTitleStyle.Render("Results"), ""}
	for _, row := range rows {
		lines = append(lines, modalValueStyle.Render(row))
	}
	if m.quote.Fallback {
		lines = append(lines, "", footerStyle.Render("(offline quote)"))
	}
	lines = append(lines, "", footerStyle.Render("enter try again · esc close"))
	return modalStyle.Render(strings.Join(lines, "\n"))
}
