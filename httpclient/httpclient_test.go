/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crptkit/docsubmit/log/logtest"
	"github.com/crptkit/docsubmit/testutil"
)

func TestNewWithOpts(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		rw.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	logger := logtest.NewRecorder()
	collector := NewPrometheusMetricsCollector("")
	cfg := NewDefaultConfig()
	cfg.Metrics.Enabled = true
	client, err := NewWithOpts(cfg, Opts{
		UserAgent:   "docsubmit-test",
		RequestType: "create-document",
		Logger:      logger,
		Collector:   collector,
	})
	require.NoError(t, err)
	require.Equal(t, DefaultClientWaitTimeout, client.Timeout)

	ctx := NewContextWithRequestID(context.Background(), "req-1")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusTeapot, resp.StatusCode)

	require.Equal(t, "docsubmit-test", gotHeaders.Get("User-Agent"))
	require.Equal(t, "req-1", gotHeaders.Get(RequestIDHeader))

	entry, found := logger.FindEntry("client http request finished with error status")
	require.True(t, found)
	requestIDField, found := entry.FindField("request_id")
	require.True(t, found)
	require.Equal(t, "req-1", string(requestIDField.Bytes))

	testutil.RequireSamplesCountInHistogramVec(t, collector.Durations, 1,
		"create-document", server.Listener.Addr().String(), "POST create-document", "418")
}

func TestNewWithOpts_InvalidLoggingMode(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Log.Mode = "verbose"
	_, err := NewWithOpts(cfg, Opts{})
	require.EqualError(t, err, `unknown logging mode "verbose"`)
	require.Panics(t, func() { MustWithOpts(cfg, Opts{}) })
}

func TestCloneHTTPRequest(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://localhost", nil)
	require.NoError(t, err)
	req.Header.Set("X-Signature", "token")

	cloned := CloneHTTPRequest(req)
	cloned.Header.Set("X-Request-ID", "1")
	require.Empty(t, req.Header.Get("X-Request-ID"))
	require.Equal(t, "token", cloned.Header.Get("X-Signature"))
}
