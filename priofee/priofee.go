// Package priofee estimates a compute-unit price from the Helius priority
// fee API. The estimator fails soft: any missing configuration, transport
// failure, or malformed payload yields the neutral zero estimate and the
// request carries on.
package priofee

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Clamp bounds applied to estimates before they become compute-unit prices.
const (
	MinComputeUnitPrice = 50_000
	MaxComputeUnitPrice = 1_000_000
)

// Accounts whose write contention drives the fee estimate: the drift program
// itself plus its busiest markets.
var subscriptionAddresses = []string{
	"dRiftyHA39MWEi3m9aunc5MzRF1JYuBsbn6VPcn33UH",
	"8BnEgHoWFysVcuFFX7QztDmzuH8r5ZFvyP3sYwn1XTh6", // sol openbook market
	"8UJgxaiQx5nTrdDgph5FiahMmzduuLTLf5WmsPegYA6W", // sol perp
	"6gMq3mRCKf8aP3ttTyYhuijVZ2LGi14oDsBbkgubfLB3", // usdc
}

// Estimator queries Helius for a current network priority fee.
type Estimator struct {
	rpcURL string
	http   *http.Client
	log    *zap.Logger
}

// NewEstimator builds an estimator against the given Helius RPC URL. An
// empty URL is valid and produces a permanent zero estimate.
func NewEstimator(rpcURL string, log *zap.Logger) *Estimator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Estimator{
		rpcURL: rpcURL,
		http:   &http.Client{Timeout: 8 * time.Second},
		log:    log,
	}
}

type feeEstimateRequest struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      string           `json:"id"`
	Method  string           `json:"method"`
	Params  []feeEstimateArg `json:"params"`
}

type feeEstimateArg struct {
	AccountKeys []string           `json:"accountKeys"`
	Options     feeEstimateOptions `json:"options"`
}

type feeEstimateOptions struct {
	IncludeAllPriorityFeeLevels bool `json:"includeAllPriorityFeeLevels"`
}

type feeEstimateResponse struct {
	Result struct {
		PriorityFeeLevels struct {
			High float64 `json:"high"`
		} `json:"priorityFeeLevels"`
	} `json:"result"`
}

// Estimate returns the "high" priority-fee level, or 0 when the endpoint is
// unset, does not look like a Helius URL, or fails in any way.
func (e *Estimator) Estimate(ctx context.Context) float64 {
	if e.rpcURL == "" || !strings.Contains(e.rpcURL, "helius") {
		return 0
	}

	payload, err := json.Marshal(feeEstimateRequest{
		JSONRPC: "2.0",
		ID:      "1",
		Method:  "getPriorityFeeEstimate",
		Params: []feeEstimateArg{{
			AccountKeys: subscriptionAddresses,
			Options:     feeEstimateOptions{IncludeAllPriorityFeeLevels: true},
		}},
	})
	if err != nil {
		e.log.Warn("priority fee request marshal failed", zap.Error(err))
		return 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.rpcURL, bytes.NewReader(payload))
	if err != nil {
		e.log.Warn("priority fee request build failed", zap.Error(err))
		return 0
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		e.log.Warn("priority fee fetch failed", zap.Error(err))
		return 0
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		e.log.Warn("priority fee fetch failed", zap.Int("status", resp.StatusCode))
		return 0
	}

	var out feeEstimateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		e.log.Warn("priority fee response decode failed", zap.Error(err))
		return 0
	}
	return out.Result.PriorityFeeLevels.High
}

// Clamp bounds a value to [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ComputeUnitPrice rounds a raw estimate and clamps it into the accepted
// compute-unit price band. A zero estimate lands on the minimum.
func ComputeUnitPrice(estimate float64) uint64 {
	return uint64(Clamp(math.Round(estimate), MinComputeUnitPrice, MaxComputeUnitPrice))
}
