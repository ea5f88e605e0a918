// Package publish delivers reports to a tracking endpoint over HTTP.
//
// A report is sent as the JSON body of POST {url}/api/v1/reports with the
// API key in the X-API-Key header. Network failures and 5xx responses are
// retried with exponential backoff; authentication failures are not.
//
//	c, err := publish.NewClient(cfg.URL, cfg.APIKey, publish.WithLogger(logger))
//	receipt, err := c.Publish(ctx, r)
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/httputil"
	"github.com/syslex/artitracker/pkg/observability"
	"github.com/syslex/artitracker/pkg/report"
)

// ReportsPath is the endpoint path reports are posted to.
const ReportsPath = "/api/v1/reports"

// APIKeyHeader carries the API key.
const APIKeyHeader = "X-API-Key"

// Receipt is the endpoint's acknowledgement of a published report.
type Receipt struct {
	ID         string    `json:"id,omitempty"`
	Coordinate string    `json:"coordinate,omitempty"`
	StoredAt   time.Time `json:"storedAt,omitempty"`
	StatusCode int       `json:"-"`
}

// Client publishes reports to one endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *log.Logger
	attempts int
	delay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for retry and delivery messages.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// NewClient creates a client for the tracking service at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if err := aterrors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, aterrors.New(aterrors.ErrCodeUnauthorized, "an API key is required to publish")
	}
	c := &Client{
		endpoint: strings.TrimRight(baseURL, "/") + ReportsPath,
		apiKey:   apiKey,
		http:     httputil.NewClient(),
		logger:   log.Default(),
		attempts: httputil.DefaultAttempts,
		delay:    httputil.DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the URL reports are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Publish sends r to the endpoint.
func (c *Client) Publish(ctx context.Context, r *report.Report) (Receipt, error) {
	body, err := report.Marshal(r)
	if err != nil {
		return Receipt{}, aterrors.Wrap(aterrors.ErrCodeInvalidReport, err, "encode report")
	}

	start := time.Now()
	var receipt Receipt
	attempt := 0
	err = httputil.Retry(ctx, c.attempts, c.delay, func() error {
		attempt++
		if attempt > 1 {
			c.logger.Warn("retrying publish", "attempt", attempt, "endpoint", c.endpoint)
		}
		var err error
		receipt, err = c.send(ctx, body)
		return err
	})
	observability.Pipeline().OnPublish(ctx, r.Coordinate(), time.Since(start), err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Receipt{}, ctxErr
		}
		return Receipt{}, unwrapRetryable(err)
	}

	c.logger.Debug("published report", "coordinate", r.Coordinate(), "id", receipt.ID, "status", receipt.StatusCode)
	return receipt, nil
}

func (c *Client) send(ctx context.Context, body []byte) (Receipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, aterrors.Wrap(aterrors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		code := aterrors.ErrCodeNetwork
		var uerr *url.Error
		if errors.As(err, &uerr) && uerr.Timeout() {
			code = aterrors.ErrCodeTimeout
		}
		return Receipt{}, &httputil.RetryableError{Err: aterrors.Wrap(code, err, "post report to %s", c.endpoint)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Receipt{}, err
	}

	receipt := Receipt{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Receipt{}, &httputil.RetryableError{Err: aterrors.Wrap(aterrors.ErrCodeNetwork, err, "read response")}
	}
	// Endpoints may acknowledge with an empty body.
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &receipt); err != nil {
			c.logger.Debug("ignoring undecodable receipt", "error", err)
		}
	}
	return receipt, nil
}

// unwrapRetryable strips the retry marker so callers see the coded error.
func unwrapRetryable(err error) error {
	var re *httputil.RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}
