/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/crptkit/docsubmit/testutil"
)

func TestMetricsRoundTripper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	t.Run("response status is observed", func(t *testing.T) {
		collector := NewPrometheusMetricsCollector("")
		rt := NewMetricsRoundTripperWithOpts(http.DefaultTransport, MetricsRoundTripperOpts{
			RequestType: "test-request",
			Collector:   collector,
		})
		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL, nil)
		require.NoError(t, err)
		resp, err := (&http.Client{Transport: rt}).Do(req)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		require.Equal(t, 1, promtestutil.CollectAndCount(collector.Durations))
		testutil.RequireSamplesCountInHistogramVec(t, collector.Durations, 1,
			"test-request", server.Listener.Addr().String(), "POST test-request", "418")
	})

	t.Run("transport error is observed with 0 status", func(t *testing.T) {
		collector := NewPrometheusMetricsCollector("")
		rt := NewMetricsRoundTripperWithOpts(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}), MetricsRoundTripperOpts{Collector: collector})
		req, err := http.NewRequest(http.MethodPost, "http://localhost", nil)
		require.NoError(t, err)
		_, err = rt.RoundTrip(req)
		require.Error(t, err)

		require.Equal(t, 1, promtestutil.CollectAndCount(collector.Durations))
		testutil.RequireSamplesCountInHistogramVec(t, collector.Durations, 1, DefaultRequestType, "localhost", "POST external", "0")
	})

	t.Run("no collector", func(t *testing.T) {
		rt := NewMetricsRoundTripperWithOpts(http.DefaultTransport, MetricsRoundTripperOpts{})
		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)
		resp, err := rt.RoundTrip(req)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
	})
}
