/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/require"
)

func TestRequestIDRoundTripper(t *testing.T) {
	var gotRequestID string
	delegate := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		gotRequestID = r.Header.Get(RequestIDHeader)
		return &http.Response{StatusCode: http.StatusOK, Request: r}, nil
	})

	doRequest := func(t *testing.T, rt http.RoundTripper, ctx context.Context, header string) *http.Request {
		t.Helper()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://localhost", nil)
		require.NoError(t, err)
		if header != "" {
			req.Header.Set(RequestIDHeader, header)
		}
		_, err = rt.RoundTrip(req)
		require.NoError(t, err)
		return req
	}

	t.Run("request id from context", func(t *testing.T) {
		req := doRequest(t, NewRequestIDRoundTripper(delegate), NewContextWithRequestID(context.Background(), "12345"), "")
		require.Equal(t, "12345", gotRequestID)
		require.Empty(t, req.Header.Get(RequestIDHeader), "original request must not be modified")
	})

	t.Run("header is preserved", func(t *testing.T) {
		doRequest(t, NewRequestIDRoundTripper(delegate), NewContextWithRequestID(context.Background(), "12345"), "67890")
		require.Equal(t, "67890", gotRequestID)
	})

	t.Run("custom provider", func(t *testing.T) {
		rt := NewRequestIDRoundTripperWithOpts(delegate, RequestIDRoundTripperOpts{
			RequestIDProvider: func(ctx context.Context) string { return "custom-id" },
		})
		doRequest(t, rt, context.Background(), "")
		require.Equal(t, "custom-id", gotRequestID)
	})

	t.Run("generated", func(t *testing.T) {
		doRequest(t, NewRequestIDRoundTripper(delegate), context.Background(), "")
		_, err := xid.FromString(gotRequestID)
		require.NoError(t, err)
	})
}
