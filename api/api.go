// Package api exposes the Actions HTTP surface: blink discovery, unsigned
// transaction construction, and the insurance-fund stake check. Handlers are
// pass-throughs over the drift, jupiter, and priofee clients; every chain
// client is request-scoped and torn down before the response leaves.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"driftblinks/analytics"
	"driftblinks/drift"
	"driftblinks/jupiter"
	"driftblinks/metrics"
)

// DriftMainAppURL is where blinks point users after a transaction.
const DriftMainAppURL = "https://app.drift.trade"

const iconProbeTimeout = 5 * time.Second

// ChainClient is the request-scoped surface of drift.Client the handlers
// consume; narrowed to an interface so tests can stub the chain away.
type ChainClient interface {
	Subscribe(ctx context.Context) error
	IsSubscribed() bool
	Unsubscribe()
	UserAccountsForAuthority(ctx context.Context, authority solana.PublicKey) ([]drift.UserAccount, error)
	ReferrerInfo(ctx context.Context, referralCode string) *drift.ReferrerInfo
	SpotMarketAccount(ctx context.Context, marketIndex uint16) (*drift.SpotMarketAccount, error)
	InsuranceFundShares(ctx context.Context, authority solana.PublicKey, marketIndex uint16) (float64, error)
	BuildInitializeAndDepositTx(ctx context.Context, p drift.DepositParams) (string, error)
	BuildDepositTx(ctx context.Context, p drift.DepositParams, subAccountID uint16) (string, error)
}

// ChainClientFactory mints a fresh client per request; clients are never
// shared across requests.
type ChainClientFactory func() ChainClient

// FeeEstimator supplies a raw priority-fee estimate.
type FeeEstimator interface {
	Estimate(ctx context.Context) float64
}

// SwapClient is the aggregator surface used by the elections flow.
type SwapClient interface {
	GetQuote(ctx context.Context, inputMint, outputMint solana.PublicKey, amount uint64, slippageBps int) (*jupiter.Quote, error)
	SwapTransaction(ctx context.Context, quote *jupiter.Quote, userPublicKey solana.PublicKey) (string, error)
}

// Options bundles the handler's dependencies.
type Options struct {
	Env       string // devnet / mainnet-beta, as parsed by driftmkt
	BucketURL string
	HostURL   string
	NewChain  ChainClientFactory
	Fees      FeeEstimator
	Swaps     SwapClient
	Analytics analytics.Client
	Logger    *zap.Logger
}

// Handler owns the route handlers and their dependencies.
type Handler struct {
	env       string
	bucketURL string
	hostURL   string
	newChain  ChainClientFactory
	fees      FeeEstimator
	swaps     SwapClient
	capture   analytics.Client
	log       *zap.Logger
	iconHTTP  *http.Client
}

// NewHandler wires a Handler; nil analytics and logger default to no-ops.
func NewHandler(opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	capture := opts.Analytics
	if capture == nil {
		capture = analytics.Noop{}
	}
	return &Handler{
		env:       opts.Env,
		bucketURL: opts.BucketURL,
		hostURL:   opts.HostURL,
		newChain:  opts.NewChain,
		fees:      opts.Fees,
		swaps:     opts.Swaps,
		capture:   capture,
		log:       log,
		iconHTTP:  &http.Client{Timeout: iconProbeTimeout},
	}
}

// Router assembles the gin engine with middleware and every route.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(h.log))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(metricsMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/startup", h.healthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/blinks", h.redirectToMainApp)
	router.GET("/blinks/deposit", h.depositBlink)
	router.GET("/blinks/elections", h.electionsBlink)

	router.POST("/transactions/deposit", h.depositTransaction)
	router.POST("/transactions/elections", h.electionsTransaction)

	router.GET("/stake/drift", h.driftStake)

	return router
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// errorResponse is the single 4xx/5xx shape of the Actions schema.
func errorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ActionError{Message: message})
}

// queryMap flattens the request query for analytics properties.
func queryMap(c *gin.Context) map[string]any {
	out := make(map[string]any)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}
