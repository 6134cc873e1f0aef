/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package docclient

import (
	"context"
	"fmt"
	"time"

	"github.com/crptkit/docsubmit/ratelimit"
	"github.com/crptkit/docsubmit/testutil"
)

/*
ExampleClient_SubmitBatch demonstrates submitting documents by 10 goroutines
to an API which admits 5 documents per second.

The first 5 documents are sent immediately, the next 5 after the first reset (1s),
and the last 2 after the second reset (2s).
*/
func ExampleClient_SubmitBatch() {
	// Note: error handling is intentionally omitted so as not to overcomplicate the example.
	// It is strictly necessary to handle all errors in real code.

	srv := testutil.NewDocumentServer()
	defer srv.Close()

	cfg := NewDefaultConfig()
	cfg.BaseURL = srv.BaseURL()
	cfg.RateLimit.Limit = ratelimit.LimitConfig{Count: 5, Period: time.Second}
	client, _ := New(cfg, Opts{})
	defer func() { _ = client.Close() }()

	docs := make([]*Document, 12)
	for i := range docs {
		docs[i] = &Document{
			Description:    "Product description",
			ParticipantINN: "123456789",
			DocID:          fmt.Sprintf("DOC%d", i+1),
			DocStatus:      "ACTIVE",
			DocType:        "LP_INTRODUCE_GOODS",
			ProductionDate: DateOf(time.Now()),
		}
	}

	start := time.Now()
	results := client.SubmitBatch(context.Background(), docs, "testSignature")
	elapsed := time.Since(start)

	fmt.Println("Error:", BatchError(results))
	fmt.Println("Sent:", client.RequestCount())
	if elapsed >= 2*time.Second && elapsed < 2*time.Second+500*time.Millisecond {
		fmt.Println("Total time is about 2s")
	} else {
		fmt.Println("Total time is", elapsed.Round(time.Second))
	}

	// Output:
	// Error: <nil>
	// Sent: 12
	// Total time is about 2s
}
