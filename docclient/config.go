/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package docclient

import (
	"fmt"
	"net/url"

	"github.com/crptkit/docsubmit/config"
	"github.com/crptkit/docsubmit/httpclient"
	"github.com/crptkit/docsubmit/ratelimit"
)

// Default configuration values.
const (
	DefaultBaseURL          = "https://ismp.crpt.ru/api/v3/lk"
	DefaultBatchConcurrency = 10
)

const (
	cfgKeyBaseURL          = "baseURL"
	cfgKeyRateLimit        = "rateLimit"
	cfgKeyHTTP             = "http"
	cfgKeyBatchConcurrency = "batch.concurrency"
)

// BatchConfig represents configuration of batch submission.
type BatchConfig struct {
	// Concurrency is the maximum number of documents of a batch submitted concurrently.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency" json:"concurrency"`
}

// Config represents configuration of the document submission client.
type Config struct {
	// BaseURL is the URL of the document API. Documents are posted to BaseURL + "/documents/create".
	BaseURL string `mapstructure:"baseURL" yaml:"baseURL" json:"baseURL"`

	RateLimit *ratelimit.Config  `mapstructure:"rateLimit" yaml:"rateLimit" json:"rateLimit"`
	HTTP      *httpclient.Config `mapstructure:"http" yaml:"http" json:"http"`
	Batch     BatchConfig        `mapstructure:"batch" yaml:"batch" json:"batch"`

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
	return &Config{
		RateLimit: ratelimit.NewConfig(),
		HTTP:      httpclient.NewConfig(),
		keyPrefix: keyPrefix,
	}
}

// NewDefaultConfig creates a new instance of the Config with default values.
// The rate limit is 5 documents per minute.
func NewDefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		RateLimit: ratelimit.NewDefaultConfig(),
		HTTP:      httpclient.NewDefaultConfig(),
		Batch:     BatchConfig{Concurrency: DefaultBatchConcurrency},
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values in config.DataProvider.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyBaseURL, DefaultBaseURL)
	dp.SetDefault(cfgKeyBatchConcurrency, DefaultBatchConcurrency)
	c.rateLimitConfig().SetProviderDefaults(config.NewKeyPrefixedDataProvider(dp, cfgKeyRateLimit))
	c.httpConfig().SetProviderDefaults(config.NewKeyPrefixedDataProvider(dp, cfgKeyHTTP))
}

// Set sets configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	if c.BaseURL, err = dp.GetString(cfgKeyBaseURL); err != nil {
		return err
	}
	if err = validateBaseURL(c.BaseURL); err != nil {
		return dp.WrapKeyErr(cfgKeyBaseURL, err)
	}

	if err = c.rateLimitConfig().Set(config.NewKeyPrefixedDataProvider(dp, cfgKeyRateLimit)); err != nil {
		return err
	}
	if err = c.httpConfig().Set(config.NewKeyPrefixedDataProvider(dp, cfgKeyHTTP)); err != nil {
		return err
	}

	if c.Batch.Concurrency, err = dp.GetInt(cfgKeyBatchConcurrency); err != nil {
		return err
	}
	if c.Batch.Concurrency <= 0 {
		return dp.WrapKeyErr(cfgKeyBatchConcurrency, fmt.Errorf("must be positive"))
	}

	return nil
}

func (c *Config) rateLimitConfig() *ratelimit.Config {
	if c.RateLimit == nil {
		c.RateLimit = ratelimit.NewConfig()
	}
	return c.RateLimit
}

func (c *Config) httpConfig() *httpclient.Config {
	if c.HTTP == nil {
		c.HTTP = httpclient.NewConfig()
	}
	return c.HTTP
}

func validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme should be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is missing")
	}
	return nil
}
