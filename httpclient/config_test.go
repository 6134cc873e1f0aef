/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crptkit/docsubmit/config"
)

func TestConfig(t *testing.T) {
	load := func(cfgData string, cfg *Config) error {
		return config.NewLoader(config.NewViperAdapter()).LoadFromReader(
			bytes.NewBufferString(cfgData), config.DataTypeYAML, cfg)
	}

	t.Run("default values", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, load("{}", cfg))
		require.Equal(t, NewDefaultConfig(), cfg)
	})

	t.Run("custom values", func(t *testing.T) {
		cfgData := `
http:
  timeout: 30s
  log:
    mode: FAILED
    slowRequestThreshold: 1s
  metrics:
    enabled: true
  transport:
    maxIdleConns: 10
    idleConnTimeout: 1m
`
		cfg := NewConfigWithKeyPrefix("http")
		require.NoError(t, load(cfgData, cfg))
		require.Equal(t, 30*time.Second, cfg.Timeout)
		require.Equal(t, LogConfig{Enabled: true, Mode: LoggingModeFailed, SlowRequestThreshold: time.Second}, cfg.Log)
		require.True(t, cfg.Metrics.Enabled)
		require.Equal(t, TransportConfig{MaxIdleConns: 10, IdleConnTimeout: time.Minute}, cfg.Transport)
	})

	t.Run("logging disabled", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, load("log:\n  enabled: false\n  mode: unknown\n", cfg))
		require.False(t, cfg.Log.Enabled)
	})

	tests := []struct {
		Name       string
		CfgData    string
		WantErrMsg string
	}{
		{
			Name:       "negative timeout",
			CfgData:    "timeout: -1s\n",
			WantErrMsg: "timeout: can not be negative",
		},
		{
			Name:       "unknown logging mode",
			CfgData:    "log:\n  mode: verbose\n",
			WantErrMsg: `log.mode: unknown value "verbose", should be one of [none all failed]`,
		},
		{
			Name:       "negative slow request threshold",
			CfgData:    "log:\n  slowRequestThreshold: -1s\n",
			WantErrMsg: "log.slowRequestThreshold: can not be negative",
		},
		{
			Name:       "negative max idle connections",
			CfgData:    "transport:\n  maxIdleConns: -1\n",
			WantErrMsg: "transport.maxIdleConns: can not be negative",
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.Name, func(t *testing.T) {
			require.EqualError(t, load(tt.CfgData, NewConfig()), tt.WantErrMsg)
		})
	}
}
