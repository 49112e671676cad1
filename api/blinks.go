package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"driftblinks/analytics"
	"driftblinks/driftmkt"
)

// amountQueryKey is the free-input parameter substituted by wallets.
const amountQueryKey = "depositAmount"

func (h *Handler) redirectToMainApp(c *gin.Context) {
	h.capture.Capture(c.ClientIP(), analytics.EventRedirectToMainApp, nil)
	c.Redirect(http.StatusFound, DriftMainAppURL)
}

func (h *Handler) depositBlink(c *gin.Context) {
	depositToken := c.DefaultQuery("token", "USDC")
	referralCode := c.Query("ref")

	h.capture.Capture(c.ClientIP(), analytics.EventDepositBlinkView, map[string]any{
		"blinkQueryParams": queryMap(c),
		"depositToken":     depositToken,
		"referralCode":     referralCode,
	})

	market, ok := driftmkt.FindSpotMarket(driftmkt.ParseEnv(h.env), depositToken)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "Invalid token")
		return
	}

	icon := h.resolveIcon(c.Request.Context(), fmt.Sprintf("deposit-%s.webp", strings.ToLower(depositToken)), "deposit-generic.webp")
	title := h.depositTitle(c.Request.Context(), market, depositToken)

	params := url.Values{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params.Set(key, values[0])
		}
	}
	params.Set("token", depositToken)
	if referralCode != "" {
		params.Set("ref", referralCode)
	}
	href := fmt.Sprintf("%s/transactions/deposit?%s&amount={%s}", h.hostURL, params.Encode(), amountQueryKey)

	c.JSON(http.StatusOK, ActionGetResponse{
		Icon:  icon,
		Title: title,
		Links: &ActionLinks{
			Actions: []LinkedAction{{
				Href:  href,
				Label: "Deposit into Drift",
				Parameters: []ActionParameter{{
					Name:  amountQueryKey,
					Label: fmt.Sprintf("%s amount to deposit", depositToken),
				}},
			}},
		},
	})
}

// depositTitle decorates the base title with the live deposit APR when it is
// worth advertising. The chain round-trip is decorative, so every failure
// falls back to the plain title.
func (h *Handler) depositTitle(ctx context.Context, market driftmkt.SpotMarketConfig, depositToken string) string {
	title := fmt.Sprintf("Deposit %s into Drift", depositToken)

	chain := h.newChain()
	if err := chain.Subscribe(ctx); err != nil {
		h.log.Warn("deposit blink: chain subscribe failed", zap.Error(err))
		return title
	}
	defer chain.Unsubscribe()

	spotMarket, err := chain.SpotMarketAccount(ctx, market.MarketIndex)
	if err != nil {
		h.log.Warn("deposit blink: spot market fetch failed", zap.Error(err))
		return title
	}
	if apr := spotMarket.DepositRatePercent(); apr >= 0.1 {
		title = fmt.Sprintf("Deposit %s into Drift and earn %.2f%% APR", depositToken, apr)
	}
	return title
}

// resolveIcon probes the per-token image and silently falls back to the
// generic one on any non-success.
func (h *Handler) resolveIcon(ctx context.Context, name, fallback string) string {
	icon := h.bucketURL + "/" + name

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, icon, nil)
	if err != nil {
		return h.bucketURL + "/" + fallback
	}
	resp, err := h.iconHTTP.Do(req)
	if err != nil {
		return h.bucketURL + "/" + fallback
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return h.bucketURL + "/" + fallback
	}
	return icon
}

func (h *Handler) electionsBlink(c *gin.Context) {
	h.capture.Capture(c.ClientIP(), analytics.EventElectionsBlinkView, map[string]any{
		"blinkQueryParams": queryMap(c),
	})

	electionToken := c.Query("token")
	token, valid := driftmkt.FindElectionToken(electionToken)

	transactionsRoute := h.hostURL + "/transactions/elections"
	response := ActionGetResponse{Title: "Election Center"}

	if !valid {
		// No or unknown token: one generic buy button per supported token
		// and preset amount.
		response.Icon = h.bucketURL + "/elections-generic.webp"
		actions := make([]LinkedAction, 0, len(driftmkt.SupportedElectionTokens)*len(driftmkt.ElectionsCTASolAmounts))
		for _, tok := range driftmkt.SupportedElectionTokens {
			for _, solAmount := range driftmkt.ElectionsCTASolAmounts {
				amount := strconv.FormatFloat(solAmount, 'f', -1, 64)
				actions = append(actions, LinkedAction{
					Href:  fmt.Sprintf("%s?token=%s&amount=%s", transactionsRoute, tok.Token, amount),
					Label: fmt.Sprintf("Buy %s SOL / %s", amount, tok.Token),
				})
			}
		}
		response.Links = &ActionLinks{Actions: actions}
		c.JSON(http.StatusOK, response)
		return
	}

	response.Label = fmt.Sprintf("Swap for %s now", token.Token)
	response.Icon = h.bucketURL + "/elections-" + strings.ToLower(token.Token) + ".webp"

	actions := make([]LinkedAction, 0, len(driftmkt.ElectionsCTASolAmounts)+1)
	for _, solAmount := range driftmkt.ElectionsCTASolAmounts {
		amount := strconv.FormatFloat(solAmount, 'f', -1, 64)
		actions = append(actions, LinkedAction{
			Href:  fmt.Sprintf("%s?token=%s&amount=%s", transactionsRoute, token.Token, amount),
			Label: fmt.Sprintf("Buy with %s SOL", amount),
		})
	}
	actions = append(actions, LinkedAction{
		Href:  fmt.Sprintf("%s?token=%s&amount={%s}", transactionsRoute, token.Token, amountQueryKey),
		Label: fmt.Sprintf("Buy %s", token.Token),
		Parameters: []ActionParameter{{
			Name:  amountQueryKey,
			Label: "SOL amount",
		}},
	})
	response.Links = &ActionLinks{Actions: actions}

	c.JSON(http.StatusOK, response)
}
