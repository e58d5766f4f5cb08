package robotevents

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"vexrank/pkg/cache"
	"vexrank/pkg/config"
	errs "vexrank/pkg/errors"
	"vexrank/pkg/logger"
	"vexrank/pkg/ratelimit"
	"vexrank/pkg/retry"
)

const userAgent = "vexrank/1.0"

// Client is a paced RobotEvents API client. All requests go through one
// pacing clock, so no matter how many harvest workers share the client the
// API sees at most one request per configured interval. Transient failures
// are retried with exponential backoff, honoring the server's Retry-After
// when it sends one.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	perPage    int
	pacer      ratelimit.Limiter
	retryCfg   retry.Config
	cache      cache.Store
	cacheTTL   time.Duration
	logger     logger.Logger

	onRequest   func()
	onRateLimit func(retryAfter time.Duration)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithPacer replaces the pacing clock.
func WithPacer(l ratelimit.Limiter) Option {
	return func(c *Client) {
		c.pacer = l
	}
}

// WithCache attaches a response cache. Successful list responses are
// stored for ttl and served without touching the pacing clock.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithRequestHook registers a callback invoked each time a request takes a
// pacing slot, retries included. Cached responses do not fire it.
func WithRequestHook(fn func()) Option {
	return func(c *Client) {
		c.onRequest = fn
	}
}

// WithRateLimitHook registers a callback invoked when the API answers 429,
// carrying the parsed Retry-After delay.
func WithRateLimitHook(fn func(retryAfter time.Duration)) Option {
	return func(c *Client) {
		c.onRateLimit = fn
	}
}

// NewClient creates a RobotEvents API client from configuration.
func NewClient(cfg *config.APIConfig, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: baseURL,
		token:   cfg.Token,
		perPage: perPage,
		pacer:   ratelimit.NewInterval(cfg.RequestInterval),
		retryCfg: retry.Config{
			MaxAttempts: cfg.MaxRetries + 1,
			Backoff: &retry.ExponentialBackoff{
				BaseDelay:    cfg.RetryBaseDelay,
				MaxDelay:     cfg.RetryMaxDelay,
				Multiplier:   2.0,
				JitterFactor: 0.1,
			},
			RetryIf: retry.DefaultRetryIf,
			Logger:  log,
		},
		logger: log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Seasons lists seasons, optionally filtered to one program.
func (c *Client) Seasons(ctx context.Context, programID int) ([]Season, error) {
	query := url.Values{}
	if programID > 0 {
		query.Set("program[]", strconv.Itoa(programID))
	}
	return fetchPages[Season](ctx, c, endpointSeasons, SeasonsPath(), query)
}

// SeasonEvents lists all events of a season.
func (c *Client) SeasonEvents(ctx context.Context, seasonID int) ([]Event, error) {
	return fetchPages[Event](ctx, c, endpointEvents, SeasonEventsPath(seasonID), nil)
}

// EventDivisions lists the divisions of an event.
func (c *Client) EventDivisions(ctx context.Context, eventID int) ([]Division, error) {
	return fetchPages[Division](ctx, c, endpointDivisions, EventDivisionsPath(eventID), nil)
}

// DivisionMatches lists the matches of a division. With scoredOnly the
// server filters out matches that were never played.
func (c *Client) DivisionMatches(ctx context.Context, eventID, divisionID int, scoredOnly bool) ([]Match, error) {
	query := url.Values{}
	if scoredOnly {
		query.Set("scored", "1")
	}
	return fetchPages[Match](ctx, c, endpointMatches, DivisionMatchesPath(eventID, divisionID), query)
}

// get fetches one URL through the cache, pacer and retry layers, returning
// the raw response body.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	key := cache.Key{Path: path, Query: query}

	if c.cache != nil {
		if entry, err := c.cache.Get(ctx, key); err == nil {
			c.logger.DebugWithFields("serving cached response", map[string]interface{}{
				"path": path,
			})
			return entry.Data, nil
		}
	}

	cfg := c.retryCfg
	cfg.Context = ctx
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		apiRetriesTotal.WithLabelValues(endpoint).Inc()
	}

	var body []byte
	err := retry.Do(func() error {
		// Every attempt takes a pacing slot, retries included.
		if err := c.pacer.Wait(ctx); err != nil {
			return err
		}
		if c.onRequest != nil {
			c.onRequest()
		}
		data, err := c.doRequest(ctx, endpoint, path, query)
		if err != nil {
			return err
		}
		body = data
		return nil
	}, &cfg)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, cache.NewEntry(body, http.StatusOK, c.cacheTTL))
	}

	return body, nil
}

// doRequest performs a single HTTP attempt and classifies the outcome.
func (c *Client) doRequest(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		apiRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      reqURL,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "read response body")
	}

	apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	apiRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      reqURL,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode != http.StatusOK {
		retryAfter := parseRetryAfter(resp.Header)
		if resp.StatusCode == http.StatusTooManyRequests {
			apiRateLimitedTotal.Inc()
			c.logger.WarnWithFields("Rate limited by API", map[string]interface{}{
				"endpoint":    endpoint,
				"retry_after": retryAfter.String(),
			})
			if c.onRateLimit != nil {
				c.onRateLimit(retryAfter)
			}
		}
		return nil, errs.FromStatus(resp.StatusCode, string(body), retryAfter)
	}

	return body, nil
}

// parseRetryAfter reads the Retry-After header, which carries either a
// delay in seconds or an HTTP date.
func parseRetryAfter(h http.Header) time.Duration {
	value := h.Get("Retry-After")
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
