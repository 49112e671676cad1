package api

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"driftblinks/drift"
	"driftblinks/driftmkt"
)

// Eligibility gate for the Breakpoint car-ride booking: a stake worth at
// least 1000 DRIFT.
const (
	requiredDriftAmount          = 1000
	driftSpotMarketIndex  uint16 = 15
	driftValueMultiplier         = 1.0002
)

// StakeResponse reports an insurance-fund stake balance against the
// eligibility threshold.
type StakeResponse struct {
	IfShares            float64 `json:"ifShares"`
	EstimatedDriftValue float64 `json:"estimatedDriftValue"`
	IsEligible          bool    `json:"isEligible"`
}

func (h *Handler) driftStake(c *gin.Context) {
	authority, err := solana.PublicKeyFromBase58(c.Query("wallet"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid wallet")
		return
	}

	chain := h.newChain()
	shares, err := chain.InsuranceFundShares(c.Request.Context(), authority, driftSpotMarketIndex)
	if err != nil {
		h.log.Error("stake: insurance fund lookup failed", zap.String("cause", drift.HumanizeRPCError(err)))
		errorResponse(c, http.StatusBadGateway, "Failed to fetch stake account")
		return
	}

	market, _ := driftmkt.FindSpotMarket(driftmkt.EnvMainnet, "DRIFT")
	estimated := shares * driftValueMultiplier / float64(market.Precision())

	c.JSON(http.StatusOK, StakeResponse{
		IfShares:            shares,
		EstimatedDriftValue: estimated,
		IsEligible:          estimated >= requiredDriftAmount,
	})
}
