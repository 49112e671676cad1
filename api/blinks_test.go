package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftblinks/drift"
)

// iconBucket serves 200 for the given names and 404 for everything else,
// standing in for the static asset bucket.
func iconBucket(t *testing.T, available ...string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, name := range available {
			if r.URL.Path == "/"+name {
				w.WriteHeader(http.StatusOK)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	return server
}

// busySpotMarket has 85% utilization, which works out to a 46.75% deposit
// APR with these curve parameters.
func busySpotMarket() *drift.SpotMarketAccount {
	return &drift.SpotMarketAccount{
		DepositBalance:            bin.Uint128{Lo: 1_000_000},
		BorrowBalance:             bin.Uint128{Lo: 850_000},
		CumulativeDepositInterest: bin.Uint128{Lo: 10_000_000_000},
		CumulativeBorrowInterest:  bin.Uint128{Lo: 10_000_000_000},
		OptimalUtilization:        700_000,
		OptimalBorrowRate:         100_000,
		MaxBorrowRate:             1_000_000,
	}
}

func TestDepositBlinkUnknownToken(t *testing.T) {
	h := newTestHandler(nil, nil, nil, "")
	w := doRequest(h, http.MethodGet, "/blinks/deposit?token=NOPE", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Invalid token"}`, w.Body.String())
}

func TestDepositBlinkWithAPR(t *testing.T) {
	bucket := iconBucket(t, "deposit-usdc.webp")
	chain := &stubChain{spotMarket: busySpotMarket()}
	h := newTestHandler(chain, nil, nil, bucket.URL)

	w := doRequest(h, http.MethodGet, "/blinks/deposit", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeGet(t, w)
	assert.Equal(t, bucket.URL+"/deposit-usdc.webp", resp.Icon)
	assert.Equal(t, "Deposit USDC into Drift and earn 46.75% APR", resp.Title)

	require.NotNil(t, resp.Links)
	require.Len(t, resp.Links.Actions, 1)
	action := resp.Links.Actions[0]
	assert.Equal(t, "Deposit into Drift", action.Label)
	assert.Contains(t, action.Href, "https://actions.test/transactions/deposit?")
	assert.Contains(t, action.Href, "token=USDC")
	assert.True(t, strings.HasSuffix(action.Href, "&amount={depositAmount}"))
	require.Len(t, action.Parameters, 1)
	assert.Equal(t, "depositAmount", action.Parameters[0].Name)

	assert.True(t, chain.unsubscribed)
}

func TestDepositBlinkIconFallback(t *testing.T) {
	bucket := iconBucket(t) // nothing available
	chain := &stubChain{spotErr: fmt.Errorf("rpc down")}
	h := newTestHandler(chain, nil, nil, bucket.URL)

	w := doRequest(h, http.MethodGet, "/blinks/deposit?token=SOL", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeGet(t, w)
	assert.Equal(t, bucket.URL+"/deposit-generic.webp", resp.Icon)
	// APR lookup failed, so the plain title survives.
	assert.Equal(t, "Deposit SOL into Drift", resp.Title)
}

func TestDepositBlinkIdempotent(t *testing.T) {
	bucket := iconBucket(t, "deposit-usdc.webp")
	h := newTestHandler(&stubChain{spotMarket: busySpotMarket()}, nil, nil, bucket.URL)

	first := doRequest(h, http.MethodGet, "/blinks/deposit?token=USDC&ref=someone", "")
	second := doRequest(h, http.MethodGet, "/blinks/deposit?token=USDC&ref=someone", "")

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestElectionsBlinkGeneric(t *testing.T) {
	h := newTestHandler(nil, nil, nil, "https://bucket.test")

	for _, target := range []string{"/blinks/elections", "/blinks/elections?token=NOPE"} {
		w := doRequest(h, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeGet(t, w)
		assert.Equal(t, "Election Center", resp.Title)
		assert.Equal(t, "https://bucket.test/elections-generic.webp", resp.Icon)
		assert.Empty(t, resp.Label)

		// Two supported tokens times two preset amounts.
		require.NotNil(t, resp.Links)
		require.Len(t, resp.Links.Actions, 4)
		assert.Equal(t, "Buy 0.1 SOL / KAMA", resp.Links.Actions[0].Label)
		assert.Equal(t, "Buy 0.5 SOL / KAMA", resp.Links.Actions[1].Label)
		assert.Equal(t, "Buy 0.1 SOL / TREMP", resp.Links.Actions[2].Label)
		assert.Equal(t, "Buy 0.5 SOL / TREMP", resp.Links.Actions[3].Label)
		for _, action := range resp.Links.Actions {
			assert.Contains(t, action.Href, "https://actions.test/transactions/elections?token=")
			assert.Empty(t, action.Parameters)
		}
	}
}

func TestElectionsBlinkKnownToken(t *testing.T) {
	h := newTestHandler(nil, nil, nil, "https://bucket.test")

	// Lookup is case-insensitive; the canonical symbol comes back out.
	w := doRequest(h, http.MethodGet, "/blinks/elections?token=kama", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeGet(t, w)
	assert.Equal(t, "Swap for KAMA now", resp.Label)
	assert.Equal(t, "https://bucket.test/elections-kama.webp", resp.Icon)

	require.NotNil(t, resp.Links)
	require.Len(t, resp.Links.Actions, 3)
	assert.Equal(t, "Buy with 0.1 SOL", resp.Links.Actions[0].Label)
	assert.Equal(t, "Buy with 0.5 SOL", resp.Links.Actions[1].Label)

	free := resp.Links.Actions[2]
	assert.Equal(t, "Buy KAMA", free.Label)
	assert.Contains(t, free.Href, "amount={depositAmount}")
	require.Len(t, free.Parameters, 1)
	assert.Equal(t, "depositAmount", free.Parameters[0].Name)
}
