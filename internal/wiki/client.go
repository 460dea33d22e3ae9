// Package wiki provides the upstream client for the MediaWiki action API and
// the Wikimedia pageview REST API.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wikidash/wikidash/internal/metrics"
)

const (
	// DefaultTimeout is the total per-request timeout.
	DefaultTimeout = 10 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 5 * time.Second

	// DefaultRetryDelay is the base delay before the single retry.
	DefaultRetryDelay = 500 * time.Millisecond
	// JitterFactor is the ±percentage of jitter applied to the retry delay.
	JitterFactor = 0.2

	// DefaultMaxPages bounds every pagination loop.
	DefaultMaxPages = 10

	// maxErrorBody caps how much of a failed response body ends up in errors.
	maxErrorBody = 512
)

// Endpoint labels for metrics.
const (
	endpointAPI       = "api"
	endpointPageviews = "pageviews"
)

// Config configures the upstream client.
type Config struct {
	APIURL       string
	PageviewsURL string
	Project      string
	UserAgent    string
	Timeout      time.Duration
	RPS          float64
	Burst        int
	Retries      int
	MaxPages     int
}

// Client issues queries against the wiki content API and the pageview API.
// It applies a fixed timeout, a static User-Agent and an outbound rate limit.
// It does not cache.
type Client struct {
	http         *http.Client
	apiURL       string
	pageviewsURL string
	project      string
	userAgent    string
	limiter      *rate.Limiter
	retries      int
	retryDelay   time.Duration
	maxPages     int
	logger       *slog.Logger
	metrics      metrics.Recorder
}

// NewHTTPClient creates an HTTP client configured for upstream API calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// New creates a Client.
func New(cfg Config, logger *slog.Logger, recorder metrics.Recorder) *Client {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}

	return &Client{
		http:         NewHTTPClient(cfg.Timeout),
		apiURL:       cfg.APIURL,
		pageviewsURL: strings.TrimSuffix(cfg.PageviewsURL, "/"),
		project:      cfg.Project,
		userAgent:    cfg.UserAgent,
		limiter:      rate.NewLimiter(limit, burst),
		retries:      retries,
		retryDelay:   DefaultRetryDelay,
		maxPages:     maxPages,
		logger:       logger.With("component", "wiki.client"),
		metrics:      recorder,
	}
}

// Fetch performs a GET against endpoint with params and returns the raw JSON
// body. Every failure is a *FetchError. Network failures, 429 and 5xx are
// retried at most c.retries times.
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	target := endpoint
	if len(params) > 0 {
		target = endpoint + "?" + params.Encode()
	}
	label := c.endpointLabel(endpoint)

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Kind: KindNetwork, Message: "rate limiter: " + err.Error(), Err: err}
		}

		start := time.Now()
		body, err := c.do(ctx, target)
		c.metrics.ObserveUpstreamRequest(label, outcomeOf(err), time.Since(start))
		if err == nil {
			return body, nil
		}

		var fe *FetchError
		if attempt >= c.retries || !errors.As(err, &fe) || !fe.Retryable() {
			return nil, err
		}

		c.metrics.IncUpstreamRetry(label)
		c.logger.Debug("retrying upstream request",
			slog.String("endpoint", label),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return nil, &FetchError{Kind: KindNetwork, Message: ctx.Err().Error(), Err: ctx.Err()}
		case <-time.After(jittered(c.retryDelay)):
		}
	}
}

func (c *Client) do(ctx context.Context, target string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Message: "failed to create request: " + err.Error(), Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &FetchError{
			Kind:       KindHTTPStatus,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Message: "failed to read response body: " + err.Error(), Err: err}
	}
	if !json.Valid(body) {
		return nil, &FetchError{Kind: KindDecode, Message: "invalid JSON body"}
	}

	return json.RawMessage(body), nil
}

// Query calls the MediaWiki action API with the common query parameters and
// surfaces in-band API errors.
func (c *Client) Query(ctx context.Context, params url.Values) (json.RawMessage, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("formatversion", "2")

	body, err := c.Fetch(ctx, c.apiURL, q)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &FetchError{Kind: KindDecode, Message: err.Error(), Err: err}
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}

	return body, nil
}

func (c *Client) endpointLabel(endpoint string) string {
	if c.pageviewsURL != "" && strings.HasPrefix(endpoint, c.pageviewsURL) {
		return endpointPageviews
	}
	return endpointAPI
}

func outcomeOf(err error) string {
	var fe *FetchError
	if err == nil {
		return metrics.OutcomeSuccess
	}
	if errors.As(err, &fe) {
		switch fe.Kind {
		case KindHTTPStatus:
			return metrics.OutcomeHTTP
		case KindDecode:
			return metrics.OutcomeDecode
		}
	}
	return metrics.OutcomeNetwork
}

// jittered applies ±JitterFactor to base.
func jittered(base time.Duration) time.Duration {
	jitterRange := float64(base) * JitterFactor
	jitter := (rand.Float64()*2 - 1) * jitterRange
	return time.Duration(float64(base) + jitter)
}
