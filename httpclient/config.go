/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/crptkit/docsubmit/config"
)

// DefaultClientWaitTimeout is a default timeout for a client to wait for a request.
const DefaultClientWaitTimeout = 10 * time.Second

const (
	defaultTransportMaxIdleConns    = 100
	defaultTransportIdleConnTimeout = 90 * time.Second
	defaultLogSlowRequestThreshold  = 0
)

const (
	cfgKeyTimeout                  = "timeout"
	cfgKeyLogEnabled               = "log.enabled"
	cfgKeyLogMode                  = "log.mode"
	cfgKeyLogSlowRequestThreshold  = "log.slowRequestThreshold"
	cfgKeyMetricsEnabled           = "metrics.enabled"
	cfgKeyTransportMaxIdleConns    = "transport.maxIdleConns"
	cfgKeyTransportIdleConnTimeout = "transport.idleConnTimeout"
)

var availableLoggingModes = []string{string(LoggingModeNone), string(LoggingModeAll), string(LoggingModeFailed)}

// LogConfig represents configuration options for HTTP client logs.
type LogConfig struct {
	// Enabled is a flag that enables logging.
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// SlowRequestThreshold is a threshold for slow requests. Faster requests are not logged.
	SlowRequestThreshold time.Duration `mapstructure:"slowRequestThreshold" yaml:"slowRequestThreshold" json:"slowRequestThreshold"`

	// Mode of logging: none, all, failed.
	Mode LoggingMode `mapstructure:"mode" yaml:"mode" json:"mode"`
}

// TransportOpts returns transport options.
func (c *LogConfig) TransportOpts() LoggingRoundTripperOpts {
	return LoggingRoundTripperOpts{
		Mode:                 c.Mode,
		SlowRequestThreshold: c.SlowRequestThreshold,
	}
}

// MetricsConfig represents configuration options for HTTP client metrics.
type MetricsConfig struct {
	// Enabled is a flag that enables metrics.
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
}

// TransportConfig represents configuration options for the connection pool.
type TransportConfig struct {
	MaxIdleConns    int           `mapstructure:"maxIdleConns" yaml:"maxIdleConns" json:"maxIdleConns"`
	IdleConnTimeout time.Duration `mapstructure:"idleConnTimeout" yaml:"idleConnTimeout" json:"idleConnTimeout"`
}

// Config represents options for HTTP client configuration.
type Config struct {
	// Timeout is the maximum time to wait for a request to be made.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`

	// Log is a configuration for HTTP client logs.
	Log LogConfig `mapstructure:"log" yaml:"log" json:"log"`

	// Metrics is a configuration for HTTP client metrics.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`

	// Transport is a configuration for the underlying http.Transport.
	Transport TransportConfig `mapstructure:"transport" yaml:"transport" json:"transport"`

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
		Timeout: DefaultClientWaitTimeout,
		Log:     LogConfig{Enabled: true, Mode: LoggingModeAll},
		Transport: TransportConfig{
			MaxIdleConns:    defaultTransportMaxIdleConns,
			IdleConnTimeout: defaultTransportIdleConnTimeout,
		},
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults is part of config interface implementation.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyTimeout, DefaultClientWaitTimeout)
	dp.SetDefault(cfgKeyLogEnabled, true)
	dp.SetDefault(cfgKeyLogMode, string(LoggingModeAll))
	dp.SetDefault(cfgKeyLogSlowRequestThreshold, defaultLogSlowRequestThreshold)
	dp.SetDefault(cfgKeyMetricsEnabled, false)
	dp.SetDefault(cfgKeyTransportMaxIdleConns, defaultTransportMaxIdleConns)
	dp.SetDefault(cfgKeyTransportIdleConnTimeout, defaultTransportIdleConnTimeout)
}

// Set is part of config interface implementation.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	if c.Timeout, err = dp.GetDuration(cfgKeyTimeout); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return dp.WrapKeyErr(cfgKeyTimeout, fmt.Errorf("can not be negative"))
	}

	if err = c.setLogConfig(dp); err != nil {
		return err
	}

	if c.Metrics.Enabled, err = dp.GetBool(cfgKeyMetricsEnabled); err != nil {
		return err
	}

	if c.Transport.MaxIdleConns, err = dp.GetInt(cfgKeyTransportMaxIdleConns); err != nil {
		return err
	}
	if c.Transport.MaxIdleConns < 0 {
		return dp.WrapKeyErr(cfgKeyTransportMaxIdleConns, fmt.Errorf("can not be negative"))
	}
	if c.Transport.IdleConnTimeout, err = dp.GetDuration(cfgKeyTransportIdleConnTimeout); err != nil {
		return err
	}
	return nil
}

func (c *Config) setLogConfig(dp config.DataProvider) error {
	var err error
	if c.Log.Enabled, err = dp.GetBool(cfgKeyLogEnabled); err != nil {
		return err
	}
	if !c.Log.Enabled {
		return nil
	}

	var mode string
	if mode, err = dp.GetStringFromSet(cfgKeyLogMode, availableLoggingModes, true); err != nil {
		return err
	}
	c.Log.Mode = LoggingMode(strings.ToLower(mode))

	if c.Log.SlowRequestThreshold, err = dp.GetDuration(cfgKeyLogSlowRequestThreshold); err != nil {
		return err
	}
	if c.Log.SlowRequestThreshold < 0 {
		return dp.WrapKeyErr(cfgKeyLogSlowRequestThreshold, fmt.Errorf("can not be negative"))
	}
	return nil
}
