package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
	"github.com/rl1809/ticket-inventory/internal/metrics"
	"github.com/rl1809/ticket-inventory/internal/port"
)

var (
	ErrUnavailable    = errors.New("ticket feed unavailable")
	ErrInvalidPayload = errors.New("ticket feed returned an invalid payload")
)

const (
	ticketHistoryPath = "/seller/my-listings/ticket-history"
	overviewPath      = "/seller/my-listings/overview"

	endpointHistory  = "ticket_history"
	endpointOverview = "overview"

	maxBodyBytes = 10 << 20
)

type Config struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration

	// Consecutive failures before the breaker opens, and how long it stays open.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

type Option func(*Client)

// WithCache keeps the last good payload of each endpoint and serves it when
// the feed is down.
func WithCache(cache port.CacheRepository) Option {
	return func(c *Client) { c.cache = cache }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// Client reads the seller's ticket history and overview from the ticket API.
type Client struct {
	baseURL  string
	token    string
	cacheTTL time.Duration

	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	cache   port.CacheRepository
	schemas *schemas
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewClient(cfg Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("ticket feed base url is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sch, err := compileSchemas()
	if err != nil {
		return nil, fmt.Errorf("compile feed schemas: %w", err)
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		cacheTTL: cfg.CacheTTL,
		http:     &http.Client{Timeout: cfg.Timeout},
		schemas:  sch,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	threshold := cfg.FailureThreshold
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ticket-feed",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c, nil
}

// List fetches the ticket history and flattens it into listings. Tickets that
// do not match the ticket schema are skipped.
func (c *Client) List(ctx context.Context) ([]domain.InventoryItem, error) {
	body, err := c.fetch(ctx, endpointHistory, ticketHistoryPath, func(b []byte) error {
		return validate(c.schemas.history, b)
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data struct {
			Data []struct {
				MatchInfo domain.MatchInfo  `json:"match_info"`
				Tickets   []json.RawMessage `json:"tickets"`
			} `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	var resp domain.TicketHistoryResponse
	resp.Success = true
	skipped := 0
	for _, entry := range raw.Data.Data {
		e := domain.TicketHistoryEntry{MatchInfo: entry.MatchInfo}
		for _, rt := range entry.Tickets {
			var t domain.Ticket
			if err := validate(c.schemas.ticket, rt); err != nil {
				skipped++
				c.logger.Debug("skipping malformed ticket",
					zap.Int64("match_id", entry.MatchInfo.MatchID), zap.Error(err))
				continue
			}
			if err := json.Unmarshal(rt, &t); err != nil {
				skipped++
				continue
			}
			e.Tickets = append(e.Tickets, t)
		}
		resp.Data.Data = append(resp.Data.Data, e)
	}
	if skipped > 0 {
		c.logger.Warn("skipped malformed tickets in feed", zap.Int("count", skipped))
	}

	return domain.FlattenTicketHistory(resp), nil
}

func (c *Client) Overview(ctx context.Context) (domain.Overview, error) {
	body, err := c.fetch(ctx, endpointOverview, overviewPath, func(b []byte) error {
		return validate(c.schemas.overview, b)
	})
	if err != nil {
		return domain.Overview{}, err
	}

	var resp domain.OverviewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Overview{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return resp.Data, nil
}

// fetch calls the endpoint through the breaker. A payload that passes check is
// cached; when the call fails the cached copy is returned instead.
func (c *Client) fetch(ctx context.Context, endpoint, path string, check func([]byte) error) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		body, err := c.get(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := check(body); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return body, nil
	})
	c.metrics.ObserveRemote(endpoint, err)

	if err == nil {
		body := result.([]byte)
		c.store(ctx, endpoint, body)
		return body, nil
	}

	if cached, ok := c.cached(ctx, endpoint); ok {
		c.logger.Warn("ticket feed failed, serving cached payload",
			zap.String("endpoint", endpoint), zap.Error(err))
		return cached, nil
	}

	if errors.Is(err, ErrInvalidPayload) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, endpoint, err)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

func (c *Client) store(ctx context.Context, endpoint string, body []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, "feed:"+endpoint, body, c.cacheTTL); err != nil {
		c.logger.Warn("failed to cache feed payload", zap.String("endpoint", endpoint), zap.Error(err))
	}
}

func (c *Client) cached(ctx context.Context, endpoint string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, "feed:"+endpoint)
	if err != nil {
		c.logger.Warn("failed to read cached feed payload", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, false
	}
	return body, ok
}
