/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package docclient provides a client of the document creation API
// which never exceeds the API rate quota, however many goroutines submit documents concurrently.
//
// Every submission goes through the same steps: the document is serialized,
// a unit of the rate limit capacity is acquired (the call blocks while the quota of the current window is spent),
// and the document is posted to the API. Any HTTP response counts as a sent document; its body is not parsed.
package docclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/atomic"

	"github.com/crptkit/docsubmit/httpclient"
	"github.com/crptkit/docsubmit/internal/libinfo"
	"github.com/crptkit/docsubmit/log"
	"github.com/crptkit/docsubmit/ratelimit"
)

// SignatureHeader is the header the caller-supplied signature is sent in.
const SignatureHeader = "X-Signature"

const requestTypeCreateDocument = "documents_create"

const tracerName = "github.com/crptkit/docsubmit/docclient"

// Outcome describes a document for which the API returned a response.
type Outcome struct {
	DocID      string
	StatusCode int
	RequestID  string
}

// Opts represents options for creating Client. All fields are optional.
type Opts struct {
	Logger log.FieldLogger

	// Limiter overrides the limiter built from the configuration.
	// The client doesn't close the injected limiter, so it may be shared between several clients.
	Limiter ratelimit.Limiter

	// LimiterMetrics is used for the limiter built from the configuration.
	LimiterMetrics ratelimit.MetricsCollector

	// Serializer is JSONSerializer by default.
	Serializer Serializer

	// HTTPClient overrides the client built from the configuration.
	HTTPClient *http.Client

	// HTTPMetrics is used for the HTTP client built from the configuration when its metrics are enabled.
	HTTPMetrics httpclient.MetricsCollector

	MetricsCollector MetricsCollector

	// Tracer is a no-op tracer by default.
	Tracer trace.Tracer

	// UserAgent is "docsubmit/<version>" by default.
	UserAgent string
}

// Client submits documents to the document creation API respecting the rate limit.
type Client struct {
	endpoint         string
	limiter          ratelimit.Limiter
	ownsLimiter      bool
	httpClient       *http.Client
	ownsHTTPClient   bool
	serializer       Serializer
	logger           log.FieldLogger
	metrics          MetricsCollector
	tracer           trace.Tracer
	batchConcurrency int
	requestCount     atomic.Int64
}

// New creates a new Client. The default configuration is used if cfg is nil.
func New(cfg *Config, opts Opts) (*Client, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewDisabledLogger()
	}
	// Requests are dumped with headers in debug mode, the signature must not get into logs.
	logger = log.NewMaskingLogger(logger, log.NewMasker(log.DefaultMasks))

	c := &Client{
		endpoint:         strings.TrimRight(cfg.BaseURL, "/") + "/documents/create",
		serializer:       opts.Serializer,
		logger:           logger,
		metrics:          opts.MetricsCollector,
		tracer:           opts.Tracer,
		batchConcurrency: cfg.Batch.Concurrency,
	}
	if c.serializer == nil {
		c.serializer = JSONSerializer{}
	}
	if c.metrics == nil {
		c.metrics = disabledMetrics{}
	}
	if c.tracer == nil {
		c.tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	if c.batchConcurrency <= 0 {
		c.batchConcurrency = DefaultBatchConcurrency
	}

	c.httpClient = opts.HTTPClient
	if c.httpClient == nil {
		httpCfg := cfg.HTTP
		if httpCfg == nil {
			httpCfg = httpclient.NewDefaultConfig()
		}
		userAgent := opts.UserAgent
		if userAgent == "" {
			userAgent = libinfo.UserAgent()
		}
		var err error
		if c.httpClient, err = httpclient.NewWithOpts(httpCfg, httpclient.Opts{
			UserAgent:   userAgent,
			RequestType: requestTypeCreateDocument,
			Logger:      logger,
			Collector:   opts.HTTPMetrics,
		}); err != nil {
			return nil, fmt.Errorf("create http client: %w", err)
		}
		c.ownsHTTPClient = true
	}

	c.limiter = opts.Limiter
	if c.limiter == nil {
		rlCfg := cfg.RateLimit
		if rlCfg == nil {
			rlCfg = ratelimit.NewDefaultConfig()
		}
		var err error
		if c.limiter, err = ratelimit.New(rlCfg, ratelimit.Opts{
			Logger:           logger,
			MetricsCollector: opts.LimiterMetrics,
		}); err != nil {
			return nil, fmt.Errorf("create rate limiter: %w", err)
		}
		c.ownsLimiter = true
	}

	return c, nil
}

// Must creates a new Client and panics if any error occurs.
func Must(cfg *Config, opts Opts) *Client {
	c, err := New(cfg, opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Submit sends the document signed with signature to the API.
// It blocks while the rate limit capacity is exhausted.
//
// Any HTTP response, whatever its status code, is a successful submission: the status is returned in Outcome.
// Errors:
//   - *SerializationError if the document cannot be serialized (nothing is sent, no capacity is consumed);
//   - *ratelimit.WaitError (wrapped) if waiting for capacity was interrupted by ctx, wait timeout or Close;
//   - *TransportError if no response was received (the consumed capacity is not returned).
func (c *Client) Submit(ctx context.Context, doc *Document, signature string) (outcome Outcome, err error) {
	startTime := time.Now()

	docID := ""
	if doc != nil {
		docID = doc.DocID
	}
	requestID := httpclient.GetRequestIDFromContext(ctx)
	if requestID == "" {
		requestID = httpclient.NewRequestID()
		ctx = httpclient.NewContextWithRequestID(ctx, requestID)
	}
	logger := c.logger.With(log.String("doc_id", docID), log.String("request_id", requestID))

	ctx, span := c.tracer.Start(ctx, "docclient.Submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("doc_id", docID), attribute.String("request_id", requestID)))
	defer span.End()

	result := SubmissionResultSent
	defer func() {
		c.metrics.ObserveSubmission(result, startTime)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
	}()

	logger.Info("submitting document")

	payload, err := c.serializer.Serialize(doc)
	if err != nil {
		result = SubmissionResultSerializationError
		logger.Error("document serialization failed", log.Error(err))
		return Outcome{}, &SerializationError{DocID: docID, Err: err}
	}

	span.AddEvent("awaiting capacity")
	if err = c.limiter.Acquire(ctx); err != nil {
		result = SubmissionResultWaitInterrupted
		logger.Warn("waiting for rate limit capacity was interrupted", log.Error(err))
		return Outcome{}, fmt.Errorf("submit document %q: %w", docID, err)
	}

	span.AddEvent("sending")
	req, err := http.NewRequestWithContext(
		httpclient.NewContextWithLogger(ctx, logger), http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		result = SubmissionResultTransportError
		logger.Error("document request creation failed", log.Error(err))
		return Outcome{}, &TransportError{DocID: docID, Err: err}
	}
	req.Header.Set("Content-Type", ContentTypeJSON)
	req.Header.Set(SignatureHeader, signature)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result = SubmissionResultTransportError
		logger.Error("document sending failed", log.Error(err))
		return Outcome{}, &TransportError{DocID: docID, Err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		logger.Warn("closing response body failed", log.Error(closeErr))
	}

	c.requestCount.Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	logger.Info("document sent", log.Int("status", resp.StatusCode))

	return Outcome{DocID: docID, StatusCode: resp.StatusCode, RequestID: requestID}, nil
}

// RequestCount returns the number of documents for which a response was received.
func (c *Client) RequestCount() int64 {
	return c.requestCount.Load()
}

// Close releases the resources owned by the client.
// Submissions waiting for the rate limit capacity fail with ratelimit.ErrLimiterClosed.
// The injected limiter and HTTP client are left untouched.
func (c *Client) Close() error {
	if c.ownsHTTPClient {
		c.httpClient.CloseIdleConnections()
	}
	if c.ownsLimiter {
		return c.limiter.Close()
	}
	return nil
}
