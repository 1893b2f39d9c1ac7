package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
system:
  mode: TESTNET
  paper_trading: true
trading:
  symbol: BTCUSDT
  interval: 1h
  strategies: [toggle]
risk:
  fixed_amount: 20
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultPollSeconds, cfg.Trading.PollIntervalSeconds)
	assert.Equal(t, defaultSnapshotWindow, cfg.Trading.SnapshotWindow)
	assert.Equal(t, defaultWarmupLimit, cfg.Trading.WarmupLimit)
	assert.Equal(t, defaultRiskLeverage, cfg.Risk.Leverage)
	assert.Equal(t, defaultStorePath, cfg.Store.Path)
	assert.Equal(t, defaultGraceSeconds, cfg.Executor.GraceSeconds)
	assert.Equal(t, defaultWebListen, cfg.Web.Listen)
}

func TestLoadRejectsBadInterval(t *testing.T) {
	path := writeConfig(t, `
system:
  mode: TESTNET
  paper_trading: true
trading:
  symbol: BTCUSDT
  interval: 7x
  strategies: [toggle]
risk:
  fixed_amount: 20
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadMode(t *testing.T) {
	path := writeConfig(t, `
system:
  mode: STAGING
trading:
  symbol: BTCUSDT
  interval: 1h
  strategies: [toggle]
risk:
  fixed_amount: 20
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRequiresKeysWhenNotPaper(t *testing.T) {
	t.Setenv("TESTNET_API_KEY", "")
	t.Setenv("TESTNET_SECRET_KEY", "")
	path := writeConfig(t, `
system:
  mode: TESTNET
  paper_trading: false
trading:
  symbol: BTCUSDT
  interval: 1h
  strategies: [toggle]
risk:
  fixed_amount: 20
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvFillsSecrets(t *testing.T) {
	t.Setenv("TESTNET_API_KEY", "k")
	t.Setenv("TESTNET_SECRET_KEY", "s")
	path := writeConfig(t, `
system:
  mode: TESTNET
  paper_trading: false
trading:
  symbol: BTCUSDT
  interval: 1h
  strategies: [toggle]
risk:
  fixed_amount: 20
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.Binance.TestnetKey)
	assert.Equal(t, "s", cfg.Binance.TestnetSecret)
}
