// Package quote supplies the text for a typing session.
package quote

import (
	"context"

	"github.com/verte-zerg/quotype/internal/model"
)

// DefaultURL returns a random quotation as JSON.
const DefaultURL = "https://dummyjson.com/quotes/random"

// FallbackText is used whenever no other quote can be obtained.
const FallbackText = "Mr. and Mrs. Dursley, of number four, Privet Drive, were proud to say that they were perfectly normal, thank you very much. They were the last people you'd expect to be involved in anything strange or mysterious, because they just didn't hold with such nonsense."

// Source returns a quote. Implementations never fail; they fall back instead.
type Source interface {
	Fetch(ctx context.Context) model.Quote
}

// Fallback returns the fixed fallback quote.
func Fallback() model.Quote {
	return model.Quote{Text: FallbackText, Author: "J.K. Rowling", Fallback: true}
}

// StaticSource always returns the same quote.
type StaticSource struct {
	Quote model.Quote
}

// Fetch implements Source.
func (s StaticSource) Fetch(context.Context) model.Quote {
	if Normalize(s.Quote.Text) == "" {
		return Fallback()
	}
	q := s.Quote
	q.Text = Normalize(q.Text)
	return q
}
