package driftmkt

import (
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ElectionToken is a swap destination offered by the election blinks.
type ElectionToken struct {
	Token string
	Mint  solana.PublicKey
}

// SupportedElectionTokens is the allow-list for the elections flow.
var SupportedElectionTokens = []ElectionToken{
	{Token: "KAMA", Mint: solana.MustPublicKeyFromBase58("HnKkzR1YtFbUUxM6g3iVRS2RY68KHhGV7bNdfF1GCsJB")},
	{Token: "TREMP", Mint: solana.MustPublicKeyFromBase58("FU1q8vJpZNUrmqsciSjp8bAKKidGsLmouB8CBdf8TKQv")},
}

// ElectionsCTASolAmounts are the preset SOL buy amounts shown on election blinks.
var ElectionsCTASolAmounts = []float64{0.1, 0.5}

// DefaultSlippageBps is the slippage applied to election swap quotes.
const DefaultSlippageBps = 50

// FindElectionToken resolves a token symbol against the allow-list.
// Unlike the spot-market registry this match is case-insensitive: election
// links arrive hand-typed far more often than wallet-generated deposit links.
func FindElectionToken(symbol string) (ElectionToken, bool) {
	for _, tok := range SupportedElectionTokens {
		if strings.EqualFold(tok.Token, symbol) {
			return tok, true
		}
	}
	return ElectionToken{}, false
}
