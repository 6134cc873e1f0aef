/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package docclient

import (
	"context"
	"errors"

	"github.com/sourcegraph/conc/pool"
)

// BatchResult is the result of submitting a single document of the batch.
type BatchResult struct {
	Outcome Outcome
	Err     error
}

// SubmitBatch submits documents concurrently, by at most Config.Batch.Concurrency at once,
// and waits for all of them. Results are in the order of docs.
// The rate limit applies to the batch as to any other submissions of the client.
func (c *Client) SubmitBatch(ctx context.Context, docs []*Document, signature string) []BatchResult {
	results := make([]BatchResult, len(docs))
	p := pool.New().WithMaxGoroutines(c.batchConcurrency)
	for i := range docs {
		i := i
		p.Go(func() {
			outcome, err := c.Submit(ctx, docs[i], signature)
			results[i] = BatchResult{Outcome: outcome, Err: err}
		})
	}
	p.Wait()
	return results
}

// BatchError joins errors of the failed submissions. It returns nil if all documents were sent.
func BatchError(results []BatchResult) error {
	errs := make([]error, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}
