// Package model defines shared data structures.
package model

import "time"

// Config defines game settings.
type Config struct {
	QuoteURL   string
	Timeout    time.Duration
	QuotesFile string
	Offline    bool
	Animate    bool
	LogLevel   string
}

// Quote is the text typed during one session.
type Quote struct {
	Text     string
	Author   string
	Fallback bool
}

// Metrics are the final results of a completed session.
type Metrics struct {
	WPM      int
	Accuracy int
	Elapsed  time.Duration
}
