package quote

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/quotype/internal/model"
)

var authorSeparators = []string{" — ", " -- "}

// LoadQuotes reads one quote per line. A line may end with
// " — Author" or " -- Author". Blank lines and lines starting with # are skipped.
func LoadQuotes(path string) ([]model.Quote, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only quote list.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	lines = lo.Filter(lines, func(line string, _ int) bool {
		line = strings.TrimSpace(line)
		return line != "" && !strings.HasPrefix(line, "#")
	})
	quotes := lo.FilterMap(lines, func(line string, _ int) (model.Quote, bool) {
		q := parseLine(line)
		return q, q.Text != ""
	})
	if len(quotes) == 0 {
		return nil, fmt.Errorf("quote list is empty")
	}
	return quotes, nil
}

func parseLine(line string) model.Quote {
	for _, sep := range authorSeparators {
		if idx := strings.LastIndex(line, sep); idx > 0 {
			return model.Quote{
				Text:   Normalize(line[:idx]),
				Author: Normalize(line[idx+len(sep):]),
			}
		}
	}
	return model.Quote{Text: Normalize(line)}
}

// FileSource picks a random quote from a preloaded list.
type FileSource struct {
	quotes []model.Quote

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewFileSource loads the quotes at path.
func NewFileSource(path string, logger *slog.Logger) (*FileSource, error) {
	quotes, err := LoadQuotes(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotes from %s: %w", path, err)
	}
	if logger != nil {
		logger.Info("quote list loaded", "path", path, "quotes", len(quotes))
	}
	return NewListSource(quotes, rand.New(rand.NewSource(time.Now().UnixNano()))), nil
}

// NewListSource returns a source over quotes using rnd for selection.
func NewListSource(quotes []model.Quote, rnd *rand.Rand) *FileSource {
	return &FileSource{quotes: quotes, rnd: rnd}
}

// Fetch implements Source.
func (s *FileSource) Fetch(context.Context) model.Quote {
	if len(s.quotes) == 0 {
		return Fallback()
	}
	s.mu.Lock()
	idx := s.rnd.Intn(len(s.quotes))
	s.mu.Unlock()
	return s.quotes[idx]
}
