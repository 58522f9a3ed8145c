package bridge

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/policy"
)

// FetcherConfig configures outbound fetches.
type FetcherConfig struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// DefaultFetcherConfig returns the settings used when none are configured.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:   30 * time.Second,
		UserAgent: "mcpview/1.0",
	}
}

// Fetcher performs single-attempt GET requests behind a rate limiter and a
// per-origin circuit breaker.
type Fetcher struct {
	client   *resty.Client
	limiter  *rate.Limiter
	breakers *resilience.Group
	logger   *zap.Logger
}

// NewFetcher creates a fetcher. Requests are never retried.
func NewFetcher(cfg FetcherConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("fetch")

	pooled := retryablehttp.NewClient()
	pooled.RetryMax = 0
	pooled.Logger = nil

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetTransport(pooled.HTTPClient.Transport)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	breakers := resilience.NewGroup(resilience.Settings{
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5 ||
				(c.Requests >= 20 && float64(c.TotalFailures)/float64(c.Requests) > 0.6)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("origin breaker state changed",
				zap.String("origin", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	return &Fetcher{client: client, limiter: limiter, breakers: breakers, logger: logger}
}

// Get fetches rawURL. Any HTTP status is returned as a response; only
// transport failures, an open breaker and limiter cancellation are errors.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*resty.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s", rawURL)
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	origin := policy.Origin(u)
	resp, err := resilience.Execute(f.breakers.Get(origin), func() (*resty.Response, error) {
		return f.client.R().SetContext(ctx).Get(rawURL)
	}, func(r *resty.Response) bool {
		return r.StatusCode() >= 500
	})
	if err != nil {
		f.logger.Debug("fetch failed", zap.String("url", rawURL), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// Breakers exposes per-origin breaker states.
func (f *Fetcher) Breakers() map[string]resilience.State {
	return f.breakers.States()
}
