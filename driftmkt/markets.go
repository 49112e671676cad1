// Package driftmkt holds the static Drift spot-market registry and the
// election-token allow-list. Tables are fixed at build time and selected by
// network environment; nothing here touches the chain.
package driftmkt

import "github.com/gagliardetto/solana-go"

// Env selects which market table the service runs against.
type Env string

const (
	EnvDevnet  Env = "devnet"
	EnvMainnet Env = "mainnet-beta"
)

// ParseEnv maps the ENV variable to a known environment, defaulting to devnet.
func ParseEnv(s string) Env {
	switch s {
	case "mainnet", "mainnet-beta":
		return EnvMainnet
	default:
		return EnvDevnet
	}
}

// WrappedSOLMint is the native mint; deposits of SOL use the authority
// directly instead of an associated token account.
var WrappedSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// SpotMarketConfig describes one deposit market.
type SpotMarketConfig struct {
	Symbol      string
	MarketIndex uint16
	Mint        solana.PublicKey
	Oracle      solana.PublicKey
	// Decimals is the token's decimal scale; Precision() is 10^Decimals.
	Decimals uint8
}

// Precision returns the base-unit scale factor for the market's token.
func (c SpotMarketConfig) Precision() uint64 {
	p := uint64(1)
	for i := uint8(0); i < c.Decimals; i++ {
		p *= 10
	}
	return p
}

// IsSOL reports whether the market holds the native asset.
func (c SpotMarketConfig) IsSOL() bool {
	return c.Mint.Equals(WrappedSOLMint)
}

// MainnetSpotMarkets mirrors the Drift mainnet-beta spot market listing.
var MainnetSpotMarkets = []SpotMarketConfig{
	{
		Symbol:      "USDC",
		MarketIndex: 0,
		Mint:        solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		Oracle:      solana.MustPublicKeyFromBase58("Gnt27xtC473ZT2Mw5u8wZ68Z3gULkSTb5DuxJy7eJotD"),
		Decimals:    6,
	},
	{
		Symbol:      "SOL",
		MarketIndex: 1,
		Mint:        WrappedSOLMint,
		Oracle:      solana.MustPublicKeyFromBase58("H6ARHf6YXhGYeQfUzQNGk6rDNnLBQKrenN712K4AQJEg"),
		Decimals:    9,
	},
	{
		Symbol:      "mSOL",
		MarketIndex: 2,
		Mint:        solana.MustPublicKeyFromBase58("mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"),
		Oracle:      solana.MustPublicKeyFromBase58("E4v1BBgoso9s64TQvmyownAVJbhbEPGyzA3qn4n46qj9"),
		Decimals:    9,
	},
	{
		Symbol:      "wBTC",
		MarketIndex: 3,
		Mint:        solana.MustPublicKeyFromBase58("3NZ9JMVBmGAqocybic2c7LQCJScmgsAZ6vQqTDzcqmJh"),
		Oracle:      solana.MustPublicKeyFromBase58("GVXRSBjFk6e6J3NbVPXohDJetcTjaeeuykUpbQF8UoMU"),
		Decimals:    8,
	},
	{
		Symbol:      "wETH",
		MarketIndex: 4,
		Mint:        solana.MustPublicKeyFromBase58("7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs"),
		Oracle:      solana.MustPublicKeyFromBase58("JBu1AL4obBcCMqKBBxhpWCNUt136ijcuMZLFvTP7iWdB"),
		Decimals:    8,
	},
	{
		Symbol:      "USDT",
		MarketIndex: 5,
		Mint:        solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"),
		Oracle:      solana.MustPublicKeyFromBase58("3vxLXJqLqF3JG5TCbYycbKWRBbCJQLxQmBGCkyqEEefL"),
		Decimals:    6,
	},
	{
		Symbol:      "jitoSOL",
		MarketIndex: 6,
		Mint:        solana.MustPublicKeyFromBase58("J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn"),
		Oracle:      solana.MustPublicKeyFromBase58("7yyaeuJ1GGtVBLT2z2xub5ZWYKaNhF28mj1RdV4VDFVk"),
		Decimals:    9,
	},
	{
		Symbol:      "DRIFT",
		MarketIndex: 15,
		Mint:        solana.MustPublicKeyFromBase58("DriFtupJYLTosbwoN8koMbEYSx54aFAVLddWsbksjwg7"),
		Oracle:      solana.MustPublicKeyFromBase58("23KmX7SNikmUr2axSCy6Zer7XPBnvmVcASALnDGqBVRR"),
		Decimals:    6,
	},
}

// DevnetSpotMarkets mirrors the Drift devnet spot market listing.
var DevnetSpotMarkets = []SpotMarketConfig{
	{
		Symbol:      "USDC",
		MarketIndex: 0,
		Mint:        solana.MustPublicKeyFromBase58("4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU"),
		Oracle:      solana.MustPublicKeyFromBase58("5SSkXsEKQepHHAewytPVwdej4epN1nxgLVM84L4KXgy7"),
		Decimals:    6,
	},
	{
		Symbol:      "SOL",
		MarketIndex: 1,
		Mint:        WrappedSOLMint,
		Oracle:      solana.MustPublicKeyFromBase58("J83w4HKfqxwcq3BEMMkPFSppX3gqekLyLJBexebFVkix"),
		Decimals:    9,
	},
	{
		Symbol:      "wBTC",
		MarketIndex: 2,
		Mint:        solana.MustPublicKeyFromBase58("3BZPwbcqB5kKScF3TEXxwNfx5ipV13kbRVDvfVp5c6fv"),
		Oracle:      solana.MustPublicKeyFromBase58("HovQMDrbAgAYPCmHVSrezcSmkMtXSSUsLDFANExrZh2J"),
		Decimals:    8,
	},
}

// SpotMarkets returns the market table for the given environment.
func SpotMarkets(env Env) []SpotMarketConfig {
	if env == EnvMainnet {
		return MainnetSpotMarkets
	}
	return DevnetSpotMarkets
}

// FindSpotMarket resolves a token symbol against the environment's table.
// Matching is case-sensitive exact match; callers normalize if they want a
// looser policy. The bool result is false when the symbol is unknown.
func FindSpotMarket(env Env, symbol string) (SpotMarketConfig, bool) {
	for _, cfg := range SpotMarkets(env) {
		if cfg.Symbol == symbol {
			return cfg, true
		}
	}
	return SpotMarketConfig{}, false
}
