// Package jupiter is a thin client for the Jupiter v6 aggregator: quote a
// swap, then ask for a ready-to-sign transaction. Transactions are returned
// unsigned for the wallet; no key material ever reaches this service.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
)

// DefaultBaseURL is the public Jupiter v6 endpoint.
const DefaultBaseURL = "https://quote-api.jup.ag"

// Client talks to the aggregator over plain HTTP.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a client; an empty base falls back to the public API.
func NewClient(base string) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: 8 * time.Second},
	}
}

// Quote is the aggregator's route quote, passed back verbatim on the swap
// request.
type Quote struct {
	InputMint            string          `json:"inputMint"`
	OutputMint           string          `json:"outputMint"`
	InAmount             string          `json:"inAmount"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          int             `json:"slippageBps"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            json.RawMessage `json:"routePlan"`
}

// GetQuote fetches a route for swapping amount base units of inputMint into
// outputMint.
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint solana.PublicKey, amount uint64, slippageBps int) (*Quote, error) {
	q := url.Values{}
	q.Set("inputMint", inputMint.String())
	q.Set("outputMint", outputMint.String())
	q.Set("amount", strconv.FormatUint(amount, 10))
	q.Set("slippageBps", strconv.Itoa(slippageBps))
	q.Set("onlyDirectRoutes", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v6/quote?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jupiter quote status %d", resp.StatusCode)
	}

	var out Quote
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	return &out, nil
}

// SwapTransaction asks the aggregator to build the transaction for a quote
// with the given wallet as payer, returning it base64-encoded and unsigned.
func (c *Client) SwapTransaction(ctx context.Context, quote *Quote, userPublicKey solana.PublicKey) (string, error) {
	payload := map[string]any{
		"userPublicKey":             userPublicKey.String(),
		"wrapAndUnwrapSol":          true,
		"asLegacyTransaction":       false,
		"useTokenLedger":            false,
		"prioritizationFeeLamports": 0,
		"quoteResponse":             quote,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v6/swap", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("jupiter swap: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("jupiter swap status %d", resp.StatusCode)
	}

	var out struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode swap response: %w", err)
	}
	if out.SwapTransaction == "" {
		return "", fmt.Errorf("jupiter swap returned no transaction")
	}
	return out.SwapTransaction, nil
}
