/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package httpclient builds http.Client instances for calling external APIs.
// The transport is a chain of round trippers: request ID, User-Agent, metrics and logging.
package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/crptkit/docsubmit/log"
)

// DefaultRequestType is used in logs and metrics when no request type is specified.
const DefaultRequestType = "external"

// CloneHTTPRequest creates a shallow copy of the request along with a deep copy of the Headers.
func CloneHTTPRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = req.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	return r
}

// Opts provides options for NewWithOpts and MustWithOpts functions.
type Opts struct {
	// UserAgent is a user agent string.
	UserAgent string

	// RequestType is a type of request. e.g. service 'auth-service', an action 'login' or specific information to correlate.
	RequestType string

	// Delegate is the last RoundTripper in the chain. A clone of http.DefaultTransport is used by default.
	Delegate http.RoundTripper

	// Logger is used for logging requests if LoggerProvider doesn't give a logger.
	Logger log.FieldLogger

	// LoggerProvider is a function that provides a context-specific logger.
	LoggerProvider func(ctx context.Context) log.FieldLogger

	// RequestIDProvider is a function that provides a request ID.
	RequestIDProvider func(ctx context.Context) string

	// Collector is a metrics collector.
	Collector MetricsCollector
}

// New creates http.Client with the configured round trippers.
func New(cfg *Config) (*http.Client, error) {
	return NewWithOpts(cfg, Opts{})
}

// Must creates http.Client with the configured round trippers and panics if any error occurs.
func Must(cfg *Config) *http.Client {
	return MustWithOpts(cfg, Opts{})
}

// NewWithOpts creates http.Client with the configured round trippers and options
// (logging, metrics, user agent, request id).
func NewWithOpts(cfg *Config, opts Opts) (*http.Client, error) {
	if cfg.Log.Enabled && cfg.Log.Mode != "" && !cfg.Log.Mode.IsValid() {
		return nil, fmt.Errorf("unknown logging mode %q", cfg.Log.Mode)
	}

	delegate := opts.Delegate
	if delegate == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.Transport.MaxIdleConns > 0 {
			tr.MaxIdleConns = cfg.Transport.MaxIdleConns
		}
		if cfg.Transport.IdleConnTimeout > 0 {
			tr.IdleConnTimeout = cfg.Transport.IdleConnTimeout
		}
		delegate = tr
	}

	requestType := opts.RequestType
	if requestType == "" {
		requestType = DefaultRequestType
	}

	if cfg.Log.Enabled {
		logOpts := cfg.Log.TransportOpts()
		logOpts.Logger = opts.Logger
		logOpts.LoggerProvider = opts.LoggerProvider
		delegate = NewLoggingRoundTripperWithOpts(delegate, requestType, logOpts)
	}

	if cfg.Metrics.Enabled {
		delegate = NewMetricsRoundTripperWithOpts(delegate, MetricsRoundTripperOpts{
			RequestType: requestType,
			Collector:   opts.Collector,
		})
	}

	if opts.UserAgent != "" {
		delegate = NewUserAgentRoundTripper(delegate, opts.UserAgent)
	}

	delegate = NewRequestIDRoundTripperWithOpts(delegate, RequestIDRoundTripperOpts{
		RequestIDProvider: opts.RequestIDProvider,
	})

	return &http.Client{Transport: delegate, Timeout: cfg.Timeout}, nil
}

// MustWithOpts creates http.Client with the configured round trippers and options
// and panics if any error occurs.
func MustWithOpts(cfg *Config, opts Opts) *http.Client {
	client, err := NewWithOpts(cfg, opts)
	if err != nil {
		panic(err)
	}
	return client
}
