// Package game wires quote sources, typing sessions and scoring into one
// event-driven controller.
//
// All Controller methods except Fetch must be called from a single
// goroutine (the UI event loop). Fetch only reads immutable fields so it
// can run in the background while the loop keeps handling events.
package game

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/quotype/internal/model"
	"github.com/verte-zerg/quotype/internal/quote"
	"github.com/verte-zerg/quotype/internal/session"
	"github.com/verte-zerg/quotype/internal/stats"
)

// Presenter receives display notifications from the controller.
type Presenter interface {
	RenderQuote(q model.Quote)
	SetCharacterState(index int, state session.CharState)
	SetTimerDisplay(seconds int)
	// SetMetricsDisplay shows metrics. animate asks for a smoothed
	// transition towards the final values.
	SetMetricsDisplay(m model.Metrics, animate bool)
	ShowCompletionSummary(m model.Metrics)
	HideCompletionSummary()
	ShowStartPrompt()
	HideStartPrompt()
}

// Loaded is the result of a quote fetch for one session token.
type Loaded struct {
	Token string
	Quote model.Quote
}

// InputResult tells the UI what happened to an input change.
type InputResult struct {
	// Input and Cursor are what the input field should hold now.
	Input  []rune
	Cursor int
	// Changed is set when Input differs from what was typed.
	Changed bool
	// TimerID is non-zero when this event started the tick timer.
	TimerID int
	Ended   bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithTokens replaces the session token generator.
func WithTokens(next func() string) Option {
	return func(c *Controller) { c.newToken = next }
}

// Controller owns the current session and drives the Presenter.
type Controller struct {
	source   quote.Source
	view     Presenter
	now      func() time.Time
	logger   *slog.Logger
	newToken func() string

	token   string
	current *session.Session
	armed   bool
	metrics *model.Metrics

	timerID   int
	lastTimer int
}

// NewController returns a controller with no session.
func NewController(source quote.Source, view Presenter, opts ...Option) *Controller {
	c := &Controller{
		source:   source,
		view:     view,
		now:      time.Now,
		logger:   slog.Default(),
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restart abandons the current session and returns the token the next
// quote must carry. Any running tick timer is invalidated.
func (c *Controller) Restart() string {
	c.stopTimer()
	if c.current != nil && c.current.State() == session.Running {
		c.logger.Info("session abandoned", "session", c.current.ID(), "typed", c.current.TotalTyped())
	}
	c.current = nil
	c.armed = false
	c.metrics = nil
	c.token = c.newToken()
	c.view.HideCompletionSummary()
	c.view.SetTimerDisplay(0)
	c.view.SetMetricsDisplay(model.Metrics{}, false)
	return c.token
}

// Fetch asks the quote source for the session identified by token.
func (c *Controller) Fetch(ctx context.Context, token string) Loaded {
	return Loaded{Token: token, Quote: c.source.Fetch(ctx)}
}

// OnQuoteLoaded starts an idle session for a fetched quote. Results for
// tokens other than the current one are stale and dropped.
func (c *Controller) OnQuoteLoaded(l Loaded) bool {
	if l.Token == "" || l.Token != c.token {
		c.logger.Debug("stale quote discarded", "token", l.Token, "current", c.token)
		return false
	}
	if c.current != nil {
		return false
	}
	s, err := session.New(l.Token, l.Quote)
	if errors.Is(err, session.ErrEmptyQuote) {
		c.logger.Warn("empty quote, using fallback", "session", l.Token)
		s, err = session.New(l.Token, quote.Fallback())
	}
	if err != nil {
		c.logger.Error("failed to start session", "session", l.Token, "err", err)
		return false
	}
	c.current = s
	c.view.RenderQuote(s.Quote())
	c.emitChars(make([]session.CharState, s.Len()))
	c.view.SetTimerDisplay(0)
	c.view.SetMetricsDisplay(model.Metrics{}, false)
	c.view.ShowStartPrompt()
	c.logger.Info("session ready", "session", s.ID(), "chars", s.Len(), "fallback", s.Quote().Fallback)
	return true
}

// DismissStartPrompt hides the start prompt and accepts input.
func (c *Controller) DismissStartPrompt() {
	if c.current == nil || c.armed {
		return
	}
	c.armed = true
	c.view.HideStartPrompt()
	c.emitChars(cursorOnly(c.current.Len()))
}

// Accepting reports whether input changes are processed.
func (c *Controller) Accepting() bool {
	return c.current != nil && c.armed && c.current.State() != session.Ended
}

// OnInputChanged processes the whole input value after an edit.
func (c *Controller) OnInputChanged(raw []rune, cursor int) InputResult {
	if !c.Accepting() {
		return InputResult{Input: raw, Cursor: cursor}
	}
	step, err := c.current.Apply(raw, cursor, c.now())
	if err != nil {
		c.logger.Debug("input ignored", "session", c.current.ID(), "err", err)
		return InputResult{Input: raw, Cursor: cursor}
	}
	res := InputResult{
		Input:   step.Input,
		Cursor:  step.Cursor,
		Changed: step.Truncated || step.Cursor != cursor,
		Ended:   step.Ended,
	}
	if step.Truncated {
		c.logger.Debug("input truncated", "session", c.current.ID(), "typed", len(raw), "limit", c.current.Len())
	}
	if step.Started {
		res.TimerID = c.startTimer()
		c.view.SetTimerDisplay(0)
	}
	c.emitChars(step.Chars)
	if step.Ended {
		c.endSession()
	}
	return res
}

// OnTick reports elapsed whole seconds for the live timer. It returns
// false for stale timers, which must not be re-armed.
func (c *Controller) OnTick(timerID int) bool {
	if timerID == 0 || timerID != c.timerID {
		return false
	}
	if c.current == nil || c.current.State() != session.Running {
		c.stopTimer()
		return false
	}
	c.view.SetTimerDisplay(int(c.current.Elapsed(c.now()) / time.Second))
	return true
}

// TimerID returns the live timer handle, or zero.
func (c *Controller) TimerID() int { return c.timerID }

// Session returns the current session, or nil while a quote is loading.
func (c *Controller) Session() *session.Session { return c.current }

// Metrics returns the final metrics once the session has ended.
func (c *Controller) Metrics() (model.Metrics, bool) {
	if c.metrics == nil {
		return model.Metrics{}, false
	}
	return *c.metrics, true
}

func (c *Controller) endSession() {
	c.stopTimer()
	if c.metrics != nil {
		return
	}
	elapsed := c.current.Elapsed(c.now())
	c.view.SetTimerDisplay(int(elapsed / time.Second))
	m, err := stats.ComputeMetrics(c.current.TotalTyped(), c.current.ErrorCount(), elapsed.Seconds())
	if err != nil {
		c.logger.Error("metrics unavailable", "session", c.current.ID(), "typed", c.current.TotalTyped(), "elapsed", elapsed, "err", err)
		m = model.Metrics{Elapsed: elapsed}
	}
	c.metrics = &m
	c.logger.Info("session ended",
		"session", c.current.ID(),
		"wpm", m.WPM,
		"accuracy", m.Accuracy,
		"errors", c.current.ErrorCount(),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	c.view.SetMetricsDisplay(m, true)
	c.view.ShowCompletionSummary(m)
}

func (c *Controller) startTimer() int {
	c.lastTimer++
	c.timerID = c.lastTimer
	return c.timerID
}

func (c *Controller) stopTimer() {
	c.timerID = 0
}

func (c *Controller) emitChars(states []session.CharState) {
	for i, st := range states {
		c.view.SetCharacterState(i, st)
	}
}

func cursorOnly(n int) []session.CharState {
	states := make([]session.CharState, n)
	if n > 0 {
		states[0] = session.Cursor
	}
	return states
}
