// Package drift wraps the Drift on-chain program: account derivation,
// deposit transaction assembly, referral and insurance-fund lookups. A Client
// is built per request and never shared; lifecycle is open → Subscribe → use
// → Unsubscribe.
package drift

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"driftblinks/driftmkt"
)

// Compute-unit limits for the two deposit transaction shapes.
const (
	InitializeDepositComputeUnits uint32 = 200_000
	DepositComputeUnits           uint32 = 100_000
)

// Config carries what a Client needs to talk to the chain.
type Config struct {
	RPCURL string
	Env    driftmkt.Env
}

// Client is a request-scoped handle on the Drift program.
type Client struct {
	rpc        *rpc.Client
	env        driftmkt.Env
	log        *zap.Logger
	subscribed bool
}

// NewClient builds an unsubscribed client. Callers must Subscribe before any
// account lookup and Unsubscribe when the request is done.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		rpc: rpc.New(cfg.RPCURL),
		env: cfg.Env,
		log: log,
	}
}

// Subscribe verifies the program state account is reachable and marks the
// client live. This stands in for the SDK's polling subscription: one
// round-trip proves the RPC endpoint serves the program before any
// transaction is assembled against it.
func (c *Client) Subscribe(ctx context.Context) error {
	state, err := DeriveStatePDA()
	if err != nil {
		return fmt.Errorf("derive state: %w", err)
	}
	if _, err := c.rpc.GetAccountInfo(ctx, state); err != nil {
		return fmt.Errorf("fetch drift state: %w", err)
	}
	c.subscribed = true
	return nil
}

// IsSubscribed reports whether Subscribe succeeded.
func (c *Client) IsSubscribed() bool {
	return c.subscribed
}

// Unsubscribe releases the client. Safe to call on every exit path.
func (c *Client) Unsubscribe() {
	c.subscribed = false
}

// UserAccountsForAuthority returns the authority's drift user accounts,
// ordered by sub-account id. An empty slice means the wallet has never
// initialized an account.
func (c *Client) UserAccountsForAuthority(ctx context.Context, authority solana.PublicKey) ([]UserAccount, error) {
	out, err := c.rpc.GetProgramAccountsWithOpts(ctx, ProgramID, &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Filters: []rpc.RPCFilter{
			{DataSize: userAccountSize},
			{Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: userAccountDisc[:]}},
			{Memcmp: &rpc.RPCFilterMemcmp{Offset: userAuthorityOffset, Bytes: authority.Bytes()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get user accounts: %w", err)
	}

	accounts := make([]UserAccount, 0, len(out))
	for _, keyed := range out {
		acc, err := decodeUserAccount(keyed.Pubkey, keyed.Account.Data.GetBinary())
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].SubAccountID < accounts[j].SubAccountID
	})
	return accounts, nil
}

// ReferrerInfo resolves a referral code to the referrer's accounts. Fails
// soft: an empty code, an unsubscribed client, or any lookup failure yields
// nil rather than an error. A miss only costs the referrer their rebate.
func (c *Client) ReferrerInfo(ctx context.Context, referralCode string) *ReferrerInfo {
	if !c.subscribed || referralCode == "" {
		return nil
	}

	pda, err := DeriveReferrerNamePDA(referralCode)
	if err != nil {
		c.log.Warn("derive referrer name account failed", zap.String("ref", referralCode), zap.Error(err))
		return nil
	}
	res, err := c.rpc.GetAccountInfo(ctx, pda)
	if err != nil || res == nil || res.Value == nil {
		if err != nil {
			c.log.Warn("referrer lookup failed", zap.String("ref", referralCode), zap.Error(err))
		}
		return nil
	}
	info, err := decodeReferrerNameAccount(res.Value.Data.GetBinary())
	if err != nil {
		c.log.Warn("referrer account decode failed", zap.String("ref", referralCode), zap.Error(err))
		return nil
	}
	return &info
}

// TokenAddressForDeposit resolves where the deposited tokens come from: the
// authority itself for native SOL, the associated token account otherwise.
func TokenAddressForDeposit(market driftmkt.SpotMarketConfig, authority solana.PublicKey) (solana.PublicKey, error) {
	if market.IsSOL() {
		return authority, nil
	}
	ata, _, err := solana.FindAssociatedTokenAddress(authority, market.Mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated token account: %w", err)
	}
	return ata, nil
}

// DepositParams is everything a deposit transaction needs besides which
// branch to take.
type DepositParams struct {
	Authority        solana.PublicKey
	Market           driftmkt.SpotMarketConfig
	Amount           uint64
	TokenAccount     solana.PublicKey
	Referrer         *ReferrerInfo
	ComputeUnitPrice uint64
}

// BuildInitializeAndDepositTx assembles the new-wallet branch: create the
// stats and user accounts, then deposit, under a 200k compute-unit budget.
func (c *Client) BuildInitializeAndDepositTx(ctx context.Context, p DepositParams) (string, error) {
	initStats, err := BuildInitializeUserStatsInstruction(p.Authority, p.Referrer)
	if err != nil {
		return "", err
	}
	initUser, err := BuildInitializeUserInstruction(p.Authority, 0, "Main Account")
	if err != nil {
		return "", err
	}
	deposit, err := BuildDepositInstruction(p.Authority, 0, p.Market, p.TokenAccount, p.Amount)
	if err != nil {
		return "", err
	}

	return c.buildUnsignedTx(ctx, p.Authority, []solana.Instruction{
		SetComputeUnitLimitInstruction(InitializeDepositComputeUnits),
		SetComputeUnitPriceInstruction(p.ComputeUnitPrice),
		initStats,
		initUser,
		deposit,
	})
}

// BuildDepositTx assembles the existing-wallet branch against the given
// sub-account, under a 100k compute-unit budget.
func (c *Client) BuildDepositTx(ctx context.Context, p DepositParams, subAccountID uint16) (string, error) {
	deposit, err := BuildDepositInstruction(p.Authority, subAccountID, p.Market, p.TokenAccount, p.Amount)
	if err != nil {
		return "", err
	}

	return c.buildUnsignedTx(ctx, p.Authority, []solana.Instruction{
		SetComputeUnitLimitInstruction(DepositComputeUnits),
		SetComputeUnitPriceInstruction(p.ComputeUnitPrice),
		deposit,
	})
}

// buildUnsignedTx stamps instructions with a fresh blockhash and serializes
// the unsigned transaction to base64 for the wallet to sign.
func (c *Client) buildUnsignedTx(ctx context.Context, payer solana.PublicKey, instructions []solana.Instruction) (string, error) {
	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(txBytes), nil
}

// InsuranceFundShares returns the authority's insurance-fund stake share
// count for a spot market, zero when no stake account exists.
func (c *Client) InsuranceFundShares(ctx context.Context, authority solana.PublicKey, marketIndex uint16) (float64, error) {
	pda, err := DeriveInsuranceFundStakePDA(authority, marketIndex)
	if err != nil {
		return 0, fmt.Errorf("derive insurance fund stake: %w", err)
	}
	res, err := c.rpc.GetAccountInfo(ctx, pda)
	if err != nil || res == nil || res.Value == nil {
		// Absent account means the wallet simply has no stake.
		return 0, nil
	}
	return decodeInsuranceFundShares(res.Value.Data.GetBinary())
}
