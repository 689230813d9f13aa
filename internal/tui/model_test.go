package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/quotype/internal/logging"
	"github.com/verte-zerg/quotype/internal/model"
	"github.com/verte-zerg/quotype/internal/quote"
	"github.com/verte-zerg/quotype/internal/session"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestModel(t *testing.T, text string, animate bool) (*Model, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Unix(1000, 0)}
	cfg := model.Config{Animate: animate}
	m := NewModel(cfg, quote.StaticSource{Quote: model.Quote{Text: text, Author: "Anon"}}, logging.Discard())
	m.now = clock.Now
	m.Init()
	if !m.loading {
		t.Fatalf("expected loading state after init")
	}
	m.Update(quoteMsg(m.ctrl.Fetch(context.Background(), m.token)))
	if m.loading || !m.prompt {
		t.Fatalf("expected loaded quote behind start prompt")
	}
	return m, clock
}

func press(m *Model, key tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: key})
	return cmd
}

func typeRunes(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestModelIgnoresTypingBehindPrompt(t *testing.T) {
	m, _ := newTestModel(t, "abc", false)
	typeRunes(m, "a")
	if m.input.Value() != "" {
		t.Fatalf("typing behind the start prompt must be ignored")
	}
	press(m, tea.KeyEnter)
	if m.prompt {
		t.Fatalf("expected enter to dismiss the prompt")
	}
	if m.charStates[0] != session.Cursor {
		t.Fatalf("expected cursor on first character")
	}
}

func TestModelTracksCharacterStates(t *testing.T) {
	m, _ := newTestModel(t, "abcd", false)
	press(m, tea.KeyEnter)
	typeRunes(m, "ax")

	want := []session.CharState{session.Correct, session.Incorrect, session.Cursor, session.Untyped}
	for i, st := range want {
		if m.charStates[i] != st {
			t.Fatalf("char %d: got %v, want %v", i, m.charStates[i], st)
		}
	}

	press(m, tea.KeyBackspace)
	if m.charStates[1] != session.Cursor {
		t.Fatalf("expected backspace to clear the mistyped char, got %v", m.charStates[1])
	}
	if m.ctrl.Session().ErrorCount() != 0 {
		t.Fatalf("expected corrected error count 0")
	}
}

func TestModelCompletesSession(t *testing.T) {
	m, clock := newTestModel(t, "hello world", false)
	press(m, tea.KeyEnter)
	typeRunes(m, "h")
	clock.now = clock.now.Add(6 * time.Second)
	typeRunes(m, "ello worlx")

	metrics, ok := m.ctrl.Metrics()
	if !ok {
		t.Fatalf("expected finished session")
	}
	// 11 chars / 5 / (6/60) = 22 wpm, 10/11 = 91%.
	if metrics.WPM != 22 || metrics.Accuracy != 91 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
	wpm, acc := m.counter.values()
	if wpm != 22 || acc != 91 {
		t.Fatalf("expected header to show final metrics, got %d/%d", wpm, acc)
	}
	if m.timerSeconds != 6 {
		t.Fatalf("expected timer to freeze at 6, got %d", m.timerSeconds)
	}
	if m.summaryVisible {
		t.Fatalf("summary must wait for the delay")
	}
	m.Update(summaryMsg{id: m.summaryID})
	if !m.summaryVisible {
		t.Fatalf("expected summary after delay")
	}
	if !strings.Contains(m.View(), "91%") {
		t.Fatalf("expected summary to show accuracy")
	}

	typeRunes(m, "z")
	if m.input.Value() != "hello worlx" {
		t.Fatalf("input must be disabled after completion, got %q", m.input.Value())
	}

	press(m, tea.KeyEsc)
	if m.summaryVisible {
		t.Fatalf("expected esc to close the summary")
	}
	if len(m.history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(m.history))
	}
	if !strings.Contains(m.renderFooter(), "Last 22 WPM · 91%") {
		t.Fatalf("footer missing last result: %s", m.renderFooter())
	}
}

func TestModelRestartDropsStaleMessages(t *testing.T) {
	m, _ := newTestModel(t, "abcdef", false)
	press(m, tea.KeyEnter)
	typeRunes(m, "a")
	oldTimer := m.ctrl.TimerID()
	if oldTimer == 0 {
		t.Fatalf("expected running timer")
	}
	oldToken := m.token

	press(m, tea.KeyCtrlR)
	if !m.loading || m.timerSeconds != 0 {
		t.Fatalf("expected reset display while loading")
	}
	if _, cmd := m.Update(tickMsg{id: oldTimer}); cmd != nil {
		t.Fatalf("stale tick must not re-arm")
	}
	m.Update(staleQuote(oldToken, "zzz"))
	if !m.loading {
		t.Fatalf("stale quote must be discarded")
	}
	m.Update(quoteMsg(m.ctrl.Fetch(context.Background(), m.token)))
	if m.loading || string(m.targetRunes) != "abcdef" {
		t.Fatalf("expected fresh quote after restart")
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared after restart")
	}
}

func TestModelTickUpdatesTimer(t *testing.T) {
	m, clock := newTestModel(t, "abcdef", false)
	press(m, tea.KeyEnter)
	typeRunes(m, "a")
	id := m.ctrl.TimerID()

	clock.now = clock.now.Add(2 * time.Second)
	if _, cmd := m.Update(tickMsg{id: id}); cmd == nil {
		t.Fatalf("live tick must re-arm")
	}
	if m.timerSeconds != 2 {
		t.Fatalf("expected 2 seconds, got %d", m.timerSeconds)
	}
}

func TestModelAnimatesMetrics(t *testing.T) {
	m, clock := newTestModel(t, "ab", true)
	press(m, tea.KeyEnter)
	typeRunes(m, "a")
	clock.now = clock.now.Add(3 * time.Second)
	typeRunes(m, "b")

	if wpm, _ := m.counter.values(); wpm != 0 {
		t.Fatalf("expected counter to start from zero, got %d", wpm)
	}
	m.Update(animMsg{id: m.animID, at: clock.now.Add(counterDuration / 2)})
	mid, _ := m.counter.values()
	if _, cmd := m.Update(animMsg{id: m.animID, at: clock.now.Add(counterDuration)}); cmd != nil {
		t.Fatalf("animation must stop at the end")
	}
	final, acc := m.counter.values()
	if final != 8 || acc != 100 {
		t.Fatalf("expected final 8 WPM 100%%, got %d/%d", final, acc)
	}
	if mid <= 0 || mid > final {
		t.Fatalf("expected intermediate value between 0 and %d, got %d", final, mid)
	}
}

func TestEaseOutCubic(t *testing.T) {
	if easeOutCubic(0) != 0 || easeOutCubic(1) != 1 {
		t.Fatalf("ease must map endpoints to themselves")
	}
	if easeOutCubic(0.5) <= 0.5 {
		t.Fatalf("ease-out must run ahead of linear at the midpoint")
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		input:       textinput.New(),
		targetRunes: []rune("abcd"),
		history: []model.Metrics{
			{WPM: 60, Accuracy: 95},
			{WPM: 72, Accuracy: 98},
			{WPM: 65, Accuracy: 97},
		},
	}
	m.input.SetValue("ab")
	out := m.renderFooter()
	for _, needle := range []string{"Progress 50%", "Last 65 WPM · 97%", "Best 72 WPM", "Trend "} {
		if !strings.Contains(out, needle) {
			t.Fatalf("footer missing %q: %s", needle, out)
		}
	}
}

func staleQuote(token, text string) quoteMsg {
	return quoteMsg{Token: token, Quote: model.Quote{Text: text}}
}
