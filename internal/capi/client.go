// Package capi sends conversion events to the Meta Conversions API and to an
// optional server-side tagging endpoint.
package capi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/PratikDhanave/booking-conversion-relay/internal/metrics"
	"github.com/PratikDhanave/booking-conversion-relay/internal/models"
)

// graphAPIVersion is the Graph API version events are posted to.
const graphAPIVersion = "v17.0"

// ErrUpstream wraps transport failures talking to an outbound endpoint.
var ErrUpstream = errors.New("upstream request failed")

// Result is the raw Conversions API response. Non-2xx statuses are reported
// here rather than as errors.
type Result struct {
	Status int
	Body   string
}

// Client posts event batches to the Conversions API of one pixel.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	pixelID       string
	accessToken   string
	testEventCode string
	metrics       *metrics.Metrics
}

// Option configures a Client or Forwarder.
type Option func(*options)

type options struct {
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// WithHTTPClient overrides the HTTP client (default: a zero http.Client).
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithMetrics records each outbound call on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{httpClient: &http.Client{}}
	for _, f := range opts {
		f(&o)
	}
	return o
}

// NewClient returns a Client for baseURL (e.g. https://graph.facebook.com).
// testEventCode may be empty.
func NewClient(baseURL, pixelID, accessToken, testEventCode string, opts ...Option) *Client {
	o := buildOptions(opts)
	return &Client{
		httpClient:    o.httpClient,
		baseURL:       baseURL,
		pixelID:       pixelID,
		accessToken:   accessToken,
		testEventCode: testEventCode,
		metrics:       o.metrics,
	}
}

// EventsURL returns the events endpoint including credentials.
func (c *Client) EventsURL() string {
	q := url.Values{}
	q.Set("access_token", c.accessToken)
	if c.testEventCode != "" {
		q.Set("test_event_code", c.testEventCode)
	}
	return fmt.Sprintf("%s/%s/%s/events?%s", c.baseURL, graphAPIVersion, url.PathEscape(c.pixelID), q.Encode())
}

// SendEvents posts events as one batch. It only fails when the request
// could not be made; the upstream status and body are returned as is.
func (c *Client) SendEvents(ctx context.Context, events ...models.ConversionEvent) (Result, error) {
	status, body, err := postJSON(ctx, c.httpClient, c.EventsURL(), models.ConversionBatch{Data: events})
	c.metrics.ObserveUpstream("meta", status, err)
	if err != nil {
		return Result{}, err
	}
	return Result{Status: status, Body: body}, nil
}

// postJSON marshals payload, posts it and returns the status and body.
// A failure to read the body yields an empty body, not an error.
func postJSON(ctx context.Context, hc *http.Client, target string, payload any) (int, string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(b))
	if err != nil {
		return 0, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %w", ErrUpstream, redactURL(err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), nil
}

// redactURL drops the query string, which carries the access token, from a
// transport error before it is logged or returned to a caller.
func redactURL(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	if u, perr := url.Parse(urlErr.URL); perr == nil {
		u.RawQuery = ""
		urlErr.URL = u.String()
	} else {
		urlErr.URL = ""
	}
	return err
}
