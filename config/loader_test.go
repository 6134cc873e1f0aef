/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testEndpointConfig struct {
	URL     string
	Timeout time.Duration
}

func (c *testEndpointConfig) SetProviderDefaults(dp DataProvider) {
	dp.SetDefault("url", "https://example.com")
	dp.SetDefault("timeout", "10s")
}

func (c *testEndpointConfig) Set(dp DataProvider) error {
	var err error
	if c.URL, err = dp.GetString("url"); err != nil {
		return err
	}
	c.Timeout, err = dp.GetDuration("timeout")
	return err
}

type testQuotaConfig struct {
	Count int
}

func (c *testQuotaConfig) KeyPrefix() string {
	return "quota"
}

func (c *testQuotaConfig) SetProviderDefaults(_ DataProvider) {}

func (c *testQuotaConfig) Set(dp DataProvider) error {
	var err error
	c.Count, err = dp.GetInt("count")
	return err
}

func TestLoader_LoadFromReader(t *testing.T) {
	t.Run("load config, use defaults", func(t *testing.T) {
		cfg := &testEndpointConfig{}
		err := NewLoader(NewViperAdapter()).LoadFromReader(bytes.NewBufferString(`{}`), DataTypeJSON, cfg)
		require.NoError(t, err)
		require.Equal(t, "https://example.com", cfg.URL)
		require.Equal(t, 10*time.Second, cfg.Timeout)
	})

	t.Run("load config", func(t *testing.T) {
		cfg := &testEndpointConfig{}
		err := NewLoader(NewViperAdapter()).LoadFromReader(
			bytes.NewBufferString(`{"url":"http://localhost:8080","timeout":"1m"}`), DataTypeJSON, cfg)
		require.NoError(t, err)
		require.Equal(t, "http://localhost:8080", cfg.URL)
		require.Equal(t, time.Minute, cfg.Timeout)
	})

	t.Run("load several configs, use key prefix", func(t *testing.T) {
		endpointCfg := &testEndpointConfig{}
		quotaCfg := &testQuotaConfig{}
		err := NewLoader(NewViperAdapter()).LoadFromReader(
			bytes.NewBufferString("quota:\n  count: 5\n"), DataTypeYAML, endpointCfg, quotaCfg)
		require.NoError(t, err)
		require.Equal(t, 5, quotaCfg.Count)
		require.Equal(t, "https://example.com", endpointCfg.URL)
	})

	t.Run("invalid value", func(t *testing.T) {
		cfg := &testQuotaConfig{}
		err := NewLoader(NewViperAdapter()).LoadFromReader(
			bytes.NewBufferString(`{"quota":{"count":"five"}}`), DataTypeJSON, cfg)
		require.ErrorContains(t, err, "quota.count")
	})
}

func TestLoader_LoadFromFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("quota:\n  count: 7\n"), 0o600))

	cfg := &testQuotaConfig{}
	require.NoError(t, NewLoader(NewViperAdapter()).LoadFromFile(cfgPath, DataTypeYAML, cfg))
	require.Equal(t, 7, cfg.Count)
}

func TestNewDefaultLoader_EnvVars(t *testing.T) {
	t.Setenv("DOCSUBMIT_QUOTA_COUNT", "42")

	cfg := &testQuotaConfig{}
	err := NewDefaultLoader("docsubmit").LoadFromReader(bytes.NewBufferString(`{"quota":{"count":1}}`), DataTypeJSON, cfg)
	require.NoError(t, err)
	require.Equal(t, 42, cfg.Count)
}

func TestLoader_Load(t *testing.T) {
	t.Setenv("DOCSUBMIT_QUOTA_COUNT", "3")

	endpointCfg := &testEndpointConfig{}
	quotaCfg := &testQuotaConfig{}
	require.NoError(t, NewDefaultLoader("docsubmit").Load(endpointCfg, quotaCfg))
	require.Equal(t, "https://example.com", endpointCfg.URL)
	require.Equal(t, 3, quotaCfg.Count)

	t.Setenv("DOCSUBMIT_QUOTA_COUNT", "three")
	err := NewDefaultLoader("docsubmit").Load(&testQuotaConfig{})
	require.ErrorContains(t, err, "quota.count")
}
