// Package client is the base layer for exchange REST API clients:
// session handling, request signing, rate limiting, retries and
// generic JSON decoding with embedded-error detection. Concrete
// exchange clients are built on top of it by supplying endpoint names
// and a SignFunc.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantor/tradeapi/cache"
	"github.com/quantor/tradeapi/circuit"
	"github.com/quantor/tradeapi/metrics"
	"github.com/quantor/tradeapi/ratelimit"
)

const (
	// DefaultTimeout is the overall per-request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultRateLimit is the minimum spacing between request starts.
	DefaultRateLimit = 1000 * time.Millisecond
	// DefaultCacheTTL applies when a cache is configured without a TTL.
	DefaultCacheTTL = time.Minute
)

// Config holds everything a Client needs. All fields are fixed at
// construction; a Client never mutates its configuration.
type Config struct {
	Server Server

	// Timeout is the overall request timeout. Default 30s.
	Timeout time.Duration

	// ErrorKey names a JSON object key whose truthy value marks an
	// application-level failure even under HTTP 200. Empty disables
	// the check.
	ErrorKey string

	// RateLimit is the minimum spacing between request starts.
	// Default one second. DisableRateLimit turns the throttle off.
	RateLimit        time.Duration
	DisableRateLimit bool

	// Retry enables transport-level retries. Nil means no retries.
	Retry *RetryPolicy

	// Sign computes authentication material per request. Nil sends
	// everything unsigned.
	Sign SignFunc

	UserAgent string

	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger

	// Breaker, when set, runs every send through a circuit breaker.
	Breaker *circuit.Breaker

	// Metrics, when set, records request counts and latencies.
	Metrics *metrics.Recorder

	// Cache, when set, serves repeated GET responses without touching
	// the network. CacheTTL defaults to one minute.
	Cache    cache.Cache
	CacheTTL time.Duration

	// Transport overrides the HTTP transport. Mostly a test seam.
	Transport http.RoundTripper
}

// Client dispatches requests against one exchange REST API. A single
// instance is safe for sequential use; concurrent use is safe but the
// throttle spacing becomes best-effort rather than strict.
type Client struct {
	server      Server
	httpClient  *http.Client
	errorKey    string
	sign        SignFunc
	throttle    *ratelimit.Throttle
	rateLimited bool
	userAgent   string
	log         zerolog.Logger
	breaker     *circuit.Breaker
	metrics     *metrics.Recorder
	cache       cache.Cache
	cacheTTL    time.Duration
}

// New creates a Client. Zero-valued config fields get defaults; the
// rate limit throttle is on unless DisableRateLimit is set.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			MaxIdleConns:    10,
			IdleConnTimeout: 30 * time.Second,
		}
	}
	if cfg.Retry != nil {
		var onRetry func()
		if cfg.Metrics != nil {
			onRetry = cfg.Metrics.IncRetry
		}
		transport = &retryTransport{
			base:    transport,
			policy:  cfg.Retry,
			log:     logger,
			onRetry: onRetry,
		}
	}

	return &Client{
		server: cfg.Server,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		errorKey:    cfg.ErrorKey,
		sign:        cfg.Sign,
		throttle:    ratelimit.NewThrottle(cfg.RateLimit),
		rateLimited: !cfg.DisableRateLimit,
		userAgent:   cfg.UserAgent,
		log:         logger,
		breaker:     cfg.Breaker,
		metrics:     cfg.Metrics,
		cache:       cfg.Cache,
		cacheTTL:    cfg.CacheTTL,
	}
}

// Server returns the server descriptor this client talks to.
func (c *Client) Server() Server {
	return c.server
}

// Close releases the client's connection pool. The client must not be
// used afterwards.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Get issues a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (any, error) {
	return c.request(ctx, http.MethodGet, endpoint, params, nil)
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body map[string]any) (any, error) {
	return c.request(ctx, http.MethodPost, endpoint, nil, body)
}

// Put issues a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body map[string]any) (any, error) {
	return c.request(ctx, http.MethodPut, endpoint, nil, body)
}

// Patch issues a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, endpoint string, body map[string]any) (any, error) {
	return c.request(ctx, http.MethodPatch, endpoint, nil, body)
}

// Delete issues a DELETE request with an optional JSON body.
func (c *Client) Delete(ctx context.Context, endpoint string, body map[string]any) (any, error) {
	return c.request(ctx, http.MethodDelete, endpoint, nil, body)
}

func (c *Client) request(ctx context.Context, method, endpoint string, params url.Values, body map[string]any) (any, error) {
	fullURL, path := c.urlPathFor(endpoint)

	data, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	cacheKey := ""
	if c.cache != nil && method == http.MethodGet {
		cacheKey = requestCacheKey(method, fullURL, params)
		if raw, ok := c.cache.Get(ctx, cacheKey); ok {
			if c.metrics != nil {
				c.metrics.IncCacheHit()
			}
			return c.decodeBody(raw, fullURL, http.StatusOK, nil)
		}
	}

	if c.rateLimited {
		if wait := c.throttle.Wait(); wait > 0 {
			c.log.Debug().Dur("wait", wait).Str("endpoint", endpoint).Msg("throttled request")
			if c.metrics != nil {
				c.metrics.ObserveThrottleWait(wait)
			}
		}
	}
	// Spacing is measured between request starts, so mark before
	// sending, not after.
	c.throttle.Mark()

	headers := make(map[string]string)
	reqParams := params
	reqData := data
	if c.sign != nil {
		signed, err := c.sign(method, path, params, data)
		if err != nil {
			return nil, fmt.Errorf("signing request: %w", err)
		}
		if signed != nil {
			for k, v := range signed.Headers {
				headers[k] = v
			}
			if signed.Params != nil {
				reqParams = signed.Params
			}
			if signed.Data != "" {
				reqData = signed.Data
			}
		}
	}

	var bodyReader io.Reader
	if reqData != "" {
		bodyReader = strings.NewReader(reqData)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, endpoint, err)
	}
	if len(reqParams) > 0 {
		req.URL.RawQuery = reqParams.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if reqData != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	requestID := uuid.NewString()
	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", req.URL.String()).
		Msg("dispatching request")

	start := time.Now()
	resp, err := c.send(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.ObserveRequest(method, 0, time.Since(start))
		}
		return nil, fmt.Errorf("sending %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if c.metrics != nil {
		c.metrics.ObserveRequest(method, resp.StatusCode, time.Since(start))
	}
	c.log.Debug().
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("received response")

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &InvalidResponseError{
			Status: resp.StatusCode,
			Header: resp.Header,
			Body:   raw,
			URL:    fullURL,
		}
	}

	decoded, err := c.decodeBody(raw, fullURL, resp.StatusCode, resp.Header)
	if err != nil {
		return nil, err
	}
	if cacheKey != "" {
		c.cache.Set(ctx, cacheKey, raw, c.cacheTTL)
	}
	return decoded, nil
}

// send runs the request through the circuit breaker when one is
// configured.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}
	v, err := c.breaker.Execute(func() (any, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}

// decodeBody parses a JSON response and applies the error-key check.
func (c *Client) decodeBody(raw []byte, fullURL string, status int, header http.Header) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		if c.metrics != nil {
			c.metrics.IncDecodeFailure()
		}
		return nil, &DecodeError{Body: raw, Err: err}
	}
	if m, ok := v.(map[string]any); ok && c.errorKey != "" {
		if truthy(m[c.errorKey]) {
			return nil, &InvalidResponseError{
				Status: status,
				Header: header,
				Body:   raw,
				URL:    fullURL,
			}
		}
	}
	return v, nil
}

// urlFor resolves an endpoint to its full URL on this server.
func (c *Client) urlFor(endpoint string) string {
	return fmt.Sprintf("%s/%s", c.server.URL, strings.TrimPrefix(endpoint, "/"))
}

// urlPathFor resolves an endpoint to its full URL and the URL's path
// component. Signing usually covers path+body, not the host.
func (c *Client) urlPathFor(endpoint string) (fullURL, path string) {
	fullURL = c.urlFor(endpoint)
	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL, ""
	}
	return fullURL, u.Path
}

// Nonce returns a microsecond wall-clock token for signing hooks that
// need an anti-replay value. Uniqueness is only as good as the clock
// resolution.
func (c *Client) Nonce() string {
	return strconv.FormatInt(Microseconds(), 10)
}

// Seconds returns the current wall-clock time in whole seconds.
func Seconds() int64 {
	return time.Now().Unix()
}

// Milliseconds returns the current wall-clock time in milliseconds.
func Milliseconds() int64 {
	return time.Now().UnixMilli()
}

// Microseconds returns the current wall-clock time in microseconds.
func Microseconds() int64 {
	return time.Now().UnixMicro()
}

// encodeBody drops nil-valued entries and JSON-encodes what is left.
// An empty mapping encodes to "" (no body).
func encodeBody(body map[string]any) (string, error) {
	cleaned := cleanParameters(body)
	if len(cleaned) == 0 {
		return "", nil
	}
	b, err := json.Marshal(cleaned)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// cleanParameters removes nil-valued entries from a request mapping.
func cleanParameters(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	cleaned := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		cleaned[k] = v
	}
	return cleaned
}

// truthy mirrors loose JSON truthiness: nil, false, zero, "" and empty
// containers are falsy, everything else is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func requestCacheKey(method, fullURL string, params url.Values) string {
	if len(params) == 0 {
		return method + ":" + fullURL
	}
	return method + ":" + fullURL + "?" + params.Encode()
}
