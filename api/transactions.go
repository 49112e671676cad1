package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"driftblinks/analytics"
	"driftblinks/drift"
	"driftblinks/driftmkt"
	"driftblinks/metrics"
	"driftblinks/priofee"
)

var utmKeys = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

// splitUTM pulls the UTM tags out of the query for analytics and returns the
// remaining parameters as the loggable transaction query params.
func splitUTM(c *gin.Context) (utm map[string]any, rest map[string]any) {
	rest = queryMap(c)
	utm = map[string]any{}
	if _, present := rest["utm_source"]; present {
		for _, key := range utmKeys {
			utm[key] = rest[key]
		}
	}
	for _, key := range utmKeys {
		delete(rest, key)
	}
	return utm, rest
}

func (h *Handler) depositTransaction(c *gin.Context) {
	ctx := c.Request.Context()

	var body ActionPostRequest
	_ = c.ShouldBindJSON(&body) // empty account fails validation below

	token := c.Query("token")
	amountString := c.Query("amount")
	referralCode := c.Query("ref")

	utm, txnQueryParams := splitUTM(c)
	props := map[string]any{
		"txnQueryParams": txnQueryParams,
		"authority":      body.Account,
		"amount":         amountString,
		"token":          token,
		"referralCode":   referralCode,
	}
	for key, value := range utm {
		props[key] = value
	}
	h.capture.Capture(c.ClientIP(), analytics.EventCreateDepositTransaction, props)

	authority, err := solana.PublicKeyFromBase58(body.Account)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid account")
		return
	}

	market, ok := driftmkt.FindSpotMarket(driftmkt.ParseEnv(h.env), token)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "Invalid token")
		return
	}

	amount, err := strconv.ParseFloat(amountString, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		errorResponse(c, http.StatusBadRequest, "Invalid amount")
		return
	}
	baseUnits := uint64(amount * float64(market.Precision()))

	// The fee estimate races the account lookups; both sides fail soft.
	feeCh := make(chan float64, 1)
	go func() { feeCh <- h.fees.Estimate(ctx) }()

	chain := h.newChain()
	if err := chain.Subscribe(ctx); err != nil {
		h.log.Warn("deposit: subscribe failed", zap.String("cause", drift.HumanizeRPCError(err)))
		errorResponse(c, http.StatusBadRequest, "Failed to subscribe to Drift Client")
		return
	}
	defer chain.Unsubscribe()

	// Fan out the three independent lookups, then wait for all of them.
	var (
		wg           sync.WaitGroup
		userAccounts []drift.UserAccount
		accountsErr  error
		tokenAccount solana.PublicKey
		tokenErr     error
		referrerInfo *drift.ReferrerInfo
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		userAccounts, accountsErr = chain.UserAccountsForAuthority(ctx, authority)
	}()
	go func() {
		defer wg.Done()
		tokenAccount, tokenErr = drift.TokenAddressForDeposit(market, authority)
	}()
	go func() {
		defer wg.Done()
		referrerInfo = chain.ReferrerInfo(ctx, referralCode)
	}()
	wg.Wait()

	if accountsErr != nil {
		h.log.Error("deposit: user account lookup failed", zap.String("cause", drift.HumanizeRPCError(accountsErr)))
		errorResponse(c, http.StatusBadGateway, "Failed to load user accounts")
		return
	}
	if tokenErr != nil {
		h.log.Error("deposit: token account derivation failed", zap.Error(tokenErr))
		errorResponse(c, http.StatusBadRequest, "Invalid account")
		return
	}

	params := drift.DepositParams{
		Authority:        authority,
		Market:           market,
		Amount:           baseUnits,
		TokenAccount:     tokenAccount,
		Referrer:         referrerInfo,
		ComputeUnitPrice: priofee.ComputeUnitPrice(<-feeCh),
	}

	var (
		transaction string
		buildErr    error
		kind        string
	)
	if len(userAccounts) == 0 {
		kind = "initialize_and_deposit"
		transaction, buildErr = chain.BuildInitializeAndDepositTx(ctx, params)
	} else {
		kind = "deposit"
		transaction, buildErr = chain.BuildDepositTx(ctx, params, userAccounts[0].SubAccountID)
	}
	if buildErr != nil {
		h.log.Error("deposit: transaction build failed",
			zap.String("kind", kind),
			zap.String("cause", drift.HumanizeRPCError(buildErr)),
		)
		errorResponse(c, http.StatusBadGateway, "Failed to build transaction")
		return
	}
	metrics.TransactionsBuilt.WithLabelValues(kind).Inc()

	c.JSON(http.StatusOK, ActionPostResponse{
		Transaction: transaction,
		Message:     fmt.Sprintf("Successfully deposited %s. Visit %s to view your deposit.", token, DriftMainAppURL),
	})
}

func (h *Handler) electionsTransaction(c *gin.Context) {
	ctx := c.Request.Context()

	var body ActionPostRequest
	_ = c.ShouldBindJSON(&body)

	token := c.Query("token")
	amountString := c.Query("amount")

	h.capture.Capture(c.ClientIP(), analytics.EventCreateElectionsTransaction, map[string]any{
		"authority": body.Account,
		"amount":    amountString,
		"token":     token,
	})

	authority, err := solana.PublicKeyFromBase58(body.Account)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid account")
		return
	}

	electionToken, ok := driftmkt.FindElectionToken(token)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "Invalid token")
		return
	}

	amount, err := strconv.ParseFloat(amountString, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		errorResponse(c, http.StatusBadRequest, "Invalid amount")
		return
	}
	lamports := uint64(amount * float64(solana.LAMPORTS_PER_SOL))

	quote, err := h.swaps.GetQuote(ctx, driftmkt.WrappedSOLMint, electionToken.Mint, lamports, driftmkt.DefaultSlippageBps)
	if err != nil {
		h.log.Error("elections: quote failed", zap.String("token", electionToken.Token), zap.Error(err))
		errorResponse(c, http.StatusBadGateway, "Failed to fetch swap quote")
		return
	}

	transaction, err := h.swaps.SwapTransaction(ctx, quote, authority)
	if err != nil {
		h.log.Error("elections: swap build failed", zap.String("token", electionToken.Token), zap.Error(err))
		errorResponse(c, http.StatusBadGateway, "Failed to build swap transaction")
		return
	}
	metrics.TransactionsBuilt.WithLabelValues("elections_swap").Inc()

	c.JSON(http.StatusOK, ActionPostResponse{
		Transaction: transaction,
		Message:     fmt.Sprintf("Successfully created a swap of %s SOL for %s.", amountString, electionToken.Token),
	})
}
