package driftmkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	assert.Equal(t, EnvMainnet, ParseEnv("mainnet"))
	assert.Equal(t, EnvMainnet, ParseEnv("mainnet-beta"))
	assert.Equal(t, EnvDevnet, ParseEnv("devnet"))
	assert.Equal(t, EnvDevnet, ParseEnv(""))
	assert.Equal(t, EnvDevnet, ParseEnv("garbage"))
}

func TestFindSpotMarket(t *testing.T) {
	cfg, ok := FindSpotMarket(EnvMainnet, "USDC")
	assert.True(t, ok)
	assert.Equal(t, uint16(0), cfg.MarketIndex)
	assert.Equal(t, uint64(1_000_000), cfg.Precision())

	sol, ok := FindSpotMarket(EnvMainnet, "SOL")
	assert.True(t, ok)
	assert.True(t, sol.IsSOL())
	assert.Equal(t, uint64(1_000_000_000), sol.Precision())

	_, ok = FindSpotMarket(EnvMainnet, "ZZZ")
	assert.False(t, ok)

	// Matching is deliberately case-sensitive.
	_, ok = FindSpotMarket(EnvMainnet, "usdc")
	assert.False(t, ok)

	// Devnet table is independent of mainnet.
	_, ok = FindSpotMarket(EnvDevnet, "DRIFT")
	assert.False(t, ok)
}

func TestFindElectionToken(t *testing.T) {
	tok, ok := FindElectionToken("KAMA")
	assert.True(t, ok)
	assert.Equal(t, "KAMA", tok.Token)

	// Elections matching is case-insensitive.
	tok, ok = FindElectionToken("tremp")
	assert.True(t, ok)
	assert.Equal(t, "TREMP", tok.Token)

	_, ok = FindElectionToken("ZZZ")
	assert.False(t, ok)
	_, ok = FindElectionToken("")
	assert.False(t, ok)
}
