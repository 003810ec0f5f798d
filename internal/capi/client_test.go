package capi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/booking-conversion-relay/internal/capi"
	"github.com/PratikDhanave/booking-conversion-relay/internal/models"
)

func TestClient_EventsURL(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		testCode string
		want     string
	}{
		"Without test code": {want: "https://graph.example/v17.0/PIX/events?access_token=TOK"},
		"With test code":    {testCode: "TEST42", want: "https://graph.example/v17.0/PIX/events?access_token=TOK&test_event_code=TEST42"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c := capi.NewClient("https://graph.example", "PIX", "TOK", tc.testCode)
			assert.Equal(t, tc.want, c.EventsURL())
		})
	}
}

func TestClient_SendEvents(t *testing.T) {
	t.Parallel()

	var gotPath, gotToken, gotContentType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"events_received":1}`))
	}))
	defer srv.Close()

	c := capi.NewClient(srv.URL, "PIX", "TOK", "")
	res, err := c.SendEvents(context.Background(), models.ConversionEvent{
		EventName:    models.EventNameAppointment,
		EventTime:    1700000000,
		EventID:      "E1",
		ActionSource: models.ActionSourceWebsite,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, `{"events_received":1}`, res.Body)
	assert.Equal(t, "/v17.0/PIX/events", gotPath)
	assert.Equal(t, "TOK", gotToken)
	assert.Equal(t, "application/json", gotContentType)

	data, ok := gotBody["data"].([]any)
	require.True(t, ok, "body must be wrapped in a data array")
	require.Len(t, data, 1)
	ev := data[0].(map[string]any)
	assert.Equal(t, "calendar_appointment", ev["event_name"])
	assert.Equal(t, "E1", ev["event_id"])
	assert.Equal(t, "website", ev["action_source"])
}

func TestClient_SendEvents_UpstreamRejectionIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter"}}`))
	}))
	defer srv.Close()

	res, err := capi.NewClient(srv.URL, "PIX", "TOK", "").SendEvents(context.Background(), models.ConversionEvent{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Body, "Invalid parameter")
}

func TestClient_SendEvents_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := capi.NewClient(srv.URL, "PIX", "SECRET-TOKEN", "TESTCODE").SendEvents(context.Background(), models.ConversionEvent{})
	require.ErrorIs(t, err, capi.ErrUpstream)
	assert.NotContains(t, err.Error(), "SECRET-TOKEN", "access token must not leak into error text")
	assert.NotContains(t, err.Error(), "access_token")
	assert.Contains(t, err.Error(), "/v17.0/PIX/events", "endpoint path is kept for diagnosis")
}

func TestForwarder_Forward(t *testing.T) {
	t.Parallel()

	var got map[string]any
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
	}))
	defer ok.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	ev := models.ForwardEvent{EventName: models.EventNameAppointment, EventID: "E1"}

	require.NoError(t, capi.NewForwarder(ok.URL).Forward(context.Background(), ev))
	assert.Equal(t, "E1", got["event_id"])
	assert.Contains(t, got, "client_id", "client_id is always present, null when unknown")
	assert.Nil(t, got["client_id"])
	assert.NotContains(t, got, "action_source")

	require.ErrorIs(t, capi.NewForwarder(failing.URL).Forward(context.Background(), ev), capi.ErrUpstream)
	require.ErrorIs(t, capi.NewForwarder(closed.URL).Forward(context.Background(), ev), capi.ErrUpstream)
}
