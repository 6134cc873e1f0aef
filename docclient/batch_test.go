/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package docclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/crptkit/docsubmit/ratelimit"
	"github.com/crptkit/docsubmit/testutil"
)

func TestClient_SubmitBatch(t *testing.T) {
	srv := testutil.NewDocumentServerWithOpts(testutil.DocumentServerOpts{Delay: time.Millisecond * 50})
	defer srv.Close()

	cfg := newTestConfig(srv.BaseURL(), ratelimit.Rate{Count: 20, Duration: time.Minute})
	cfg.Batch.Concurrency = 3

	var inFlight, maxInFlight atomic.Int32
	transport := http.DefaultTransport
	httpClient := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		n := inFlight.Inc()
		defer inFlight.Dec()
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		return transport.RoundTrip(r)
	})}
	c := newTestClient(t, cfg, Opts{HTTPClient: httpClient})

	docs := make([]*Document, 10)
	for i := range docs {
		docs[i] = newTestDocument(fmt.Sprintf("DOC%d", i))
	}
	results := c.SubmitBatch(context.Background(), docs, "test-signature")
	require.Len(t, results, len(docs))
	for i, res := range results {
		require.NoError(t, res.Err)
		require.Equal(t, fmt.Sprintf("DOC%d", i), res.Outcome.DocID)
		require.Equal(t, http.StatusOK, res.Outcome.StatusCode)
	}
	require.NoError(t, BatchError(results))
	require.EqualValues(t, 10, c.RequestCount())
	require.LessOrEqual(t, maxInFlight.Load(), int32(3))

	sentDocIDs := map[string]bool{}
	for _, req := range srv.Requests() {
		var doc Document
		require.NoError(t, json.Unmarshal(req.Body, &doc))
		sentDocIDs[doc.DocID] = true
	}
	require.Len(t, sentDocIDs, 10)
}

func TestClient_SubmitBatch_RateLimited(t *testing.T) {
	srv := testutil.NewDocumentServer()
	defer srv.Close()

	c := newTestClient(t, newTestConfig(srv.BaseURL(), ratelimit.Rate{Count: 2, Duration: time.Minute}), Opts{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*300)
	defer cancel()
	docs := []*Document{newTestDocument("DOC0"), newTestDocument("DOC1"), newTestDocument("DOC2"), newTestDocument("DOC3")}
	results := c.SubmitBatch(ctx, docs, "test-signature")

	var sent, interrupted int
	for _, res := range results {
		if res.Err == nil {
			sent++
			continue
		}
		var waitErr *ratelimit.WaitError
		require.ErrorAs(t, res.Err, &waitErr)
		interrupted++
	}
	require.Equal(t, 2, sent)
	require.Equal(t, 2, interrupted)
	require.ErrorIs(t, BatchError(results), context.DeadlineExceeded)
	require.Equal(t, 2, srv.RequestCount())
}
