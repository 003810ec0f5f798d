package capi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PratikDhanave/booking-conversion-relay/internal/metrics"
	"github.com/PratikDhanave/booking-conversion-relay/internal/models"
)

// Forwarder copies conversions to a server-side tagging endpoint.
type Forwarder struct {
	httpClient *http.Client
	endpoint   string
	metrics    *metrics.Metrics
}

// NewForwarder returns a Forwarder posting to endpoint.
func NewForwarder(endpoint string, opts ...Option) *Forwarder {
	o := buildOptions(opts)
	return &Forwarder{httpClient: o.httpClient, endpoint: endpoint, metrics: o.metrics}
}

// Forward posts ev. Transport failures and non-2xx responses are errors;
// callers treat them as best effort.
func (f *Forwarder) Forward(ctx context.Context, ev models.ForwardEvent) error {
	status, _, err := postJSON(ctx, f.httpClient, f.endpoint, ev)
	f.metrics.ObserveUpstream("gtm", status, err)
	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s responded %d", ErrUpstream, f.endpoint, status)
	}
	return nil
}
