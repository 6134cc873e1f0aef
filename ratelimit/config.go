/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"fmt"
	"time"

	"github.com/crptkit/docsubmit/config"
)

// Default configuration values. They match the quota of the document submission API: 5 requests per minute.
const (
	DefaultLimitCount  = 5
	DefaultLimitPeriod = time.Minute
	DefaultAlgorithm   = AlgorithmFixedWindow
)

const (
	cfgKeyLimitCount  = "limit.count"
	cfgKeyLimitPeriod = "limit.period"
	cfgKeyAlgorithm   = "algorithm"
	cfgKeyWaitTimeout = "waitTimeout"
)

// Algorithm is a rate limiting algorithm.
type Algorithm string

// Rate limiting algorithms.
const (
	AlgorithmFixedWindow   Algorithm = "fixed_window"
	AlgorithmTokenBucket   Algorithm = "token_bucket"
	AlgorithmSlidingWindow Algorithm = "sliding_window"
	AlgorithmLeakyBucket   Algorithm = "leaky_bucket"
)

var availableAlgorithms = []string{
	string(AlgorithmFixedWindow),
	string(AlgorithmTokenBucket),
	string(AlgorithmSlidingWindow),
	string(AlgorithmLeakyBucket),
}

// LimitConfig represents the admitted rate.
type LimitConfig struct {
	// Count is the maximum number of operations per Period.
	Count int `mapstructure:"count" yaml:"count" json:"count"`

	// Period is the window duration.
	Period time.Duration `mapstructure:"period" yaml:"period" json:"period"`
}

// Config represents configuration of the rate limiter.
type Config struct {
	Limit LimitConfig `mapstructure:"limit" yaml:"limit" json:"limit"`

	// Algorithm is fixed_window by default. Other algorithms spread the operations more evenly.
	Algorithm Algorithm `mapstructure:"algorithm" yaml:"algorithm" json:"algorithm"`

	// WaitTimeout bounds waiting for capacity. Zero means unbounded.
	WaitTimeout time.Duration `mapstructure:"waitTimeout" yaml:"waitTimeout" json:"waitTimeout"`

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return NewConfigWithKeyPrefix("")
}

// NewConfigWithKeyPrefix creates a new instance of the Config.
// Allows specifying key prefix which will be used for parsing configuration parameters.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	return &Config{keyPrefix: keyPrefix}
}

// NewDefaultConfig creates a new instance of the Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Limit:     LimitConfig{Count: DefaultLimitCount, Period: DefaultLimitPeriod},
		Algorithm: DefaultAlgorithm,
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values in config.DataProvider.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyLimitCount, DefaultLimitCount)
	dp.SetDefault(cfgKeyLimitPeriod, DefaultLimitPeriod)
	dp.SetDefault(cfgKeyAlgorithm, string(DefaultAlgorithm))
	dp.SetDefault(cfgKeyWaitTimeout, 0)
}

// Set sets rate limiter configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	if c.Limit.Count, err = dp.GetInt(cfgKeyLimitCount); err != nil {
		return err
	}
	if c.Limit.Count <= 0 {
		return dp.WrapKeyErr(cfgKeyLimitCount, fmt.Errorf("must be positive"))
	}

	if c.Limit.Period, err = dp.GetDuration(cfgKeyLimitPeriod); err != nil {
		return err
	}
	if c.Limit.Period <= 0 {
		return dp.WrapKeyErr(cfgKeyLimitPeriod, fmt.Errorf("must be positive"))
	}

	var algorithm string
	if algorithm, err = dp.GetStringFromSet(cfgKeyAlgorithm, availableAlgorithms, false); err != nil {
		return err
	}
	c.Algorithm = Algorithm(algorithm)

	if c.WaitTimeout, err = dp.GetDuration(cfgKeyWaitTimeout); err != nil {
		return err
	}
	if c.WaitTimeout < 0 {
		return dp.WrapKeyErr(cfgKeyWaitTimeout, fmt.Errorf("must be non-negative"))
	}

	return nil
}

// Rate returns the configured rate.
func (c *Config) Rate() Rate {
	return Rate{Count: c.Limit.Count, Duration: c.Limit.Period}
}

// New creates a Limiter with the configured algorithm.
// WaitTimeout from the config is used if opts doesn't specify it.
func New(cfg *Config, opts Opts) (Limiter, error) {
	if opts.WaitTimeout == 0 {
		opts.WaitTimeout = cfg.WaitTimeout
	}
	switch cfg.Algorithm {
	case AlgorithmFixedWindow, "":
		return NewFixedWindowLimiterWithOpts(cfg.Rate(), opts)
	case AlgorithmTokenBucket:
		return NewTokenBucketLimiter(cfg.Rate(), opts)
	case AlgorithmSlidingWindow:
		return NewSlidingWindowLimiter(cfg.Rate(), opts)
	case AlgorithmLeakyBucket:
		return NewLeakyBucketLimiter(cfg.Rate(), opts)
	default:
		return nil, fmt.Errorf("unknown rate limiting algorithm %q", cfg.Algorithm)
	}
}
