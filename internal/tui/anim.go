package tui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/quotype/internal/model"
)

const (
	counterDuration = 800 * time.Millisecond
	frameInterval   = time.Second / 30
)

type animMsg struct {
	id int
	at time.Time
}

// counter eases displayed metrics from zero to their final values.
type counter struct {
	target  model.Metrics
	wpm     float64
	acc     float64
	started time.Time
	active  bool
}

func (c *counter) set(m model.Metrics) {
	c.target = m
	c.wpm = float64(m.WPM)
	c.acc = float64(m.Accuracy)
	c.active = false
}

func (c *counter) begin(m model.Metrics, now time.Time) {
	c.target = m
	c.wpm = 0
	c.acc = 0
	c.started = now
	c.active = true
}

// step advances to now and reports whether more frames are needed.
func (c *counter) step(now time.Time) bool {
	if !c.active {
		return false
	}
	t := float64(now.Sub(c.started)) / float64(counterDuration)
	if t >= 1 {
		c.set(c.target)
		return false
	}
	if t < 0 {
		t = 0
	}
	e := easeOutCubic(t)
	c.wpm = e * float64(c.target.WPM)
	c.acc = e * float64(c.target.Accuracy)
	return true
}

func (c *counter) values() (wpm, accuracy int) {
	return int(math.Round(c.wpm)), int(math.Round(c.acc))
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

func animCmd(id int) tea.Cmd {
	return tea.Tick(frameInterval, func(at time.Time) tea.Msg {
		return animMsg{id: id, at: at}
	})
}
