package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakeInvalidWallet(t *testing.T) {
	h := newTestHandler(nil, nil, nil, "")

	for _, target := range []string{"/stake/drift", "/stake/drift?wallet=notakey"} {
		w := doRequest(h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"message":"Invalid wallet"}`, w.Body.String())
	}
}

func TestStakeLookupFailure(t *testing.T) {
	chain := &stubChain{ifErr: fmt.Errorf("rpc timeout")}
	h := newTestHandler(chain, nil, nil, "")

	w := doRequest(h, http.MethodGet, "/stake/drift?wallet="+testWallet.String(), "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"message":"Failed to fetch stake account"}`, w.Body.String())
}

func TestStakeEligibility(t *testing.T) {
	cases := []struct {
		name      string
		shares    float64
		estimated float64
		eligible  bool
	}{
		{"well above threshold", 1_500_000_000, 1500.3, true},
		{"just above threshold", 999_900_000, 1000.09998, true},
		{"small stake", 100_000, 0.10002, false},
		{"no stake", 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chain := &stubChain{ifShares: tc.shares}
			h := newTestHandler(chain, nil, nil, "")

			w := doRequest(h, http.MethodGet, "/stake/drift?wallet="+testWallet.String(), "")
			require.Equal(t, http.StatusOK, w.Code)

			var resp StakeResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.shares, resp.IfShares)
			assert.InDelta(t, tc.estimated, resp.EstimatedDriftValue, 0.001)
			assert.Equal(t, tc.eligible, resp.IsEligible)
		})
	}
}
