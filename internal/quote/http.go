package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/verte-zerg/quotype/internal/model"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 64 << 10

	// Repeated restarts may queue fetches; keep the endpoint at about one call per second.
	fetchInterval = time.Second
	fetchBurst    = 3
)

type quoteResponse struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// HTTPSource fetches one random quote per call from a JSON endpoint.
type HTTPSource struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewHTTPSource returns a source for url. A zero timeout uses the default.
func NewHTTPSource(url string, timeout time.Duration, logger *slog.Logger) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(fetchInterval), fetchBurst),
		logger:  logger,
	}
}

// Fetch implements Source. Any failure yields the fallback quote.
func (s *HTTPSource) Fetch(ctx context.Context) model.Quote {
	q, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("quote fetch failed, using fallback", "url", s.url, "err", err)
		return Fallback()
	}
	s.logger.Debug("quote fetched", "url", s.url, "chars", len([]rune(q.Text)))
	return q
}

func (s *HTTPSource) fetch(ctx context.Context) (model.Quote, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return model.Quote{}, fmt.Errorf("fetch throttled: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return model.Quote{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return model.Quote{}, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var payload quoteResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return model.Quote{}, fmt.Errorf("failed to decode quote: %w", err)
	}
	text := Normalize(payload.Quote)
	if text == "" {
		return model.Quote{}, fmt.Errorf("response has no quote text")
	}
	return model.Quote{Text: text, Author: Normalize(payload.Author)}, nil
}
