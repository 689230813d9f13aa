// Package session implements the typing-session state machine.
package session

import (
	"errors"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/quotype/internal/model"
)

// State is the lifecycle stage of a session.
type State int

// Session states.
const (
	Idle State = iota
	Running
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// CharState is the display state of one quote character.
type CharState int

// Character states.
const (
	Untyped CharState = iota
	Correct
	Incorrect
	Cursor
)

func (c CharState) String() string {
	switch c {
	case Untyped:
		return "untyped"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case Cursor:
		return "cursor"
	default:
		return "unknown"
	}
}

var (
	// ErrEmptyQuote is returned when a session is created without text.
	ErrEmptyQuote = errors.New("session: empty quote")
	// ErrSessionEnded is returned when input arrives after completion.
	ErrSessionEnded = errors.New("session: already ended")
)

// Session tracks one attempt at typing a quote.
type Session struct {
	id    string
	quote model.Quote
	runes []rune

	state      State
	startedAt  time.Time
	endedAt    time.Time
	totalTyped int
	errorCount int
}

// Step reports the outcome of one input change.
type Step struct {
	// Input is the accepted input, truncated to the quote length.
	Input []rune
	// Cursor is the input cursor clamped to the accepted input.
	Cursor    int
	Truncated bool
	// Started is set on the event that moved the session to Running.
	Started bool
	// Ended is set on the event that moved the session to Ended.
	Ended bool
	// Chars holds one state per quote character.
	Chars []CharState
}

// New creates an idle session for the quote.
func New(id string, quote model.Quote) (*Session, error) {
	runes := []rune(quote.Text)
	if len(runes) == 0 {
		return nil, ErrEmptyQuote
	}
	return &Session{id: id, quote: quote, runes: runes}, nil
}

// ID returns the session token.
func (s *Session) ID() string { return s.id }

// Quote returns the quote being typed.
func (s *Session) Quote() model.Quote { return s.quote }

// Len returns the quote length in characters.
func (s *Session) Len() int { return len(s.runes) }

// State returns the current lifecycle stage.
func (s *Session) State() State { return s.state }

// StartedAt returns when the first character was typed.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// TotalTyped returns the number of characters currently typed.
func (s *Session) TotalTyped() int { return s.totalTyped }

// ErrorCount returns the number of mismatched positions.
func (s *Session) ErrorCount() int { return s.errorCount }

// Elapsed returns the time spent typing so far.
func (s *Session) Elapsed(now time.Time) time.Duration {
	switch s.state {
	case Running:
		return now.Sub(s.startedAt)
	case Ended:
		return s.endedAt.Sub(s.startedAt)
	default:
		return 0
	}
}

// Apply processes the full input after a change. Errors are recounted
// from scratch, so corrected characters no longer count.
func (s *Session) Apply(input []rune, cursor int, now time.Time) (Step, error) {
	if s.state == Ended {
		return Step{}, ErrSessionEnded
	}
	step := Step{}
	if len(input) > len(s.runes) {
		input = input[:len(s.runes)]
		step.Truncated = true
	}
	step.Input = append([]rune(nil), input...)
	step.Cursor = lo.Clamp(cursor, 0, len(input))

	if s.state == Idle && len(input) > 0 {
		s.state = Running
		s.startedAt = now
		step.Started = true
	}

	step.Chars = make([]CharState, len(s.runes))
	errorCount := 0
	for i, target := range s.runes {
		switch {
		case i < len(input) && input[i] == target:
			step.Chars[i] = Correct
		case i < len(input):
			step.Chars[i] = Incorrect
			errorCount++
		case i == len(input):
			step.Chars[i] = Cursor
		default:
			step.Chars[i] = Untyped
		}
	}
	s.errorCount = errorCount
	s.totalTyped = len(input)

	if s.state == Running && len(input) == len(s.runes) {
		s.state = Ended
		s.endedAt = now
		step.Ended = true
	}
	return step, nil
}
