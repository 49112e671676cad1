package drift

import (
	"context"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// On-chain fixed-point scales.
const (
	percentagePrecision         = 1_000_000
	spotCumulativeInterestScale = 10_000_000_000
)

// SpotMarketAccount is the prefix of the on-chain SpotMarket struct up to the
// interest-rate parameters; composite sub-structs this service never reads
// are kept opaque as fixed-size padding.
type SpotMarketAccount struct {
	Pubkey               solana.PublicKey
	Oracle               solana.PublicKey
	Mint                 solana.PublicKey
	Vault                solana.PublicKey
	Name                 [32]byte
	HistoricalOracleData [48]byte
	HistoricalIndexData  [48]byte
	RevenuePool          [24]byte
	SpotFeePool          [24]byte
	InsuranceFund        [112]byte

	TotalSpotFee              bin.Uint128
	DepositBalance            bin.Uint128
	BorrowBalance             bin.Uint128
	CumulativeDepositInterest bin.Uint128
	CumulativeBorrowInterest  bin.Uint128
	TotalSocialLoss           bin.Uint128
	TotalQuoteSocialLoss      bin.Uint128

	WithdrawGuardThreshold uint64
	MaxTokenDeposits       uint64
	DepositTokenTwap       uint64
	BorrowTokenTwap        uint64
	UtilizationTwap        uint64
	LastInterestTs         uint64
	LastTwapTs             uint64
	ExpiryTs               int64
	OrderStepSize          uint64
	OrderTickSize          uint64
	MinOrderSize           uint64
	MaxPositionSize        uint64
	NextFillRecordID       uint64
	NextDepositRecordID    uint64

	InitialAssetWeight         uint32
	MaintenanceAssetWeight     uint32
	InitialLiabilityWeight     uint32
	MaintenanceLiabilityWeight uint32
	ImfFactor                  uint32
	LiquidatorFee              uint32
	IfLiquidationFee           uint32
	OptimalUtilization         uint32
	OptimalBorrowRate          uint32
	MaxBorrowRate              uint32
	Decimals                   uint32
	MarketIndex                uint16
}

// SpotMarketAccount fetches and decodes the market account for an index.
func (c *Client) SpotMarketAccount(ctx context.Context, marketIndex uint16) (*SpotMarketAccount, error) {
	pda, err := DeriveSpotMarketPDA(marketIndex)
	if err != nil {
		return nil, fmt.Errorf("derive spot market: %w", err)
	}
	res, err := c.rpc.GetAccountInfo(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("fetch spot market %d: %w", marketIndex, err)
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("spot market %d not found", marketIndex)
	}

	data := res.Value.Data.GetBinary()
	if len(data) < 8 {
		return nil, fmt.Errorf("spot market %d: short account data", marketIndex)
	}
	var market SpotMarketAccount
	if err := bin.NewBinDecoder(data[8:]).Decode(&market); err != nil {
		return nil, fmt.Errorf("decode spot market %d: %w", marketIndex, err)
	}
	return &market, nil
}

// tokenAmount converts a scaled balance to token base units by applying the
// cumulative interest factor.
func tokenAmount(balance, cumulativeInterest bin.Uint128) *big.Int {
	out := new(big.Int).Mul(balance.BigInt(), cumulativeInterest.BigInt())
	return out.Quo(out, big.NewInt(spotCumulativeInterestScale))
}

// Utilization returns borrows over deposits at percentage precision (1e6).
func (m *SpotMarketAccount) Utilization() uint64 {
	deposits := tokenAmount(m.DepositBalance, m.CumulativeDepositInterest)
	if deposits.Sign() == 0 {
		return 0
	}
	borrows := tokenAmount(m.BorrowBalance, m.CumulativeBorrowInterest)
	util := new(big.Int).Mul(borrows, big.NewInt(percentagePrecision))
	util.Quo(util, deposits)
	if !util.IsUint64() {
		return percentagePrecision
	}
	return util.Uint64()
}

// BorrowRate returns the current borrow APR at percentage precision. Below
// optimal utilization the rate climbs linearly to the optimal borrow rate; a
// second, steeper segment runs from there to the max rate at full
// utilization.
func (m *SpotMarketAccount) BorrowRate() uint64 {
	util := m.Utilization()
	optimalUtil := uint64(m.OptimalUtilization)
	optimalRate := uint64(m.OptimalBorrowRate)
	maxRate := uint64(m.MaxBorrowRate)

	if optimalUtil == 0 || util <= optimalUtil {
		if optimalUtil == 0 {
			return 0
		}
		return optimalRate * util / optimalUtil
	}

	surplus := util - optimalUtil
	room := uint64(percentagePrecision) - optimalUtil
	if room == 0 {
		return maxRate
	}
	return optimalRate + (maxRate-optimalRate)*surplus/room
}

// DepositRate returns the rate passed through to depositors: the borrow rate
// scaled by utilization.
func (m *SpotMarketAccount) DepositRate() uint64 {
	return m.BorrowRate() * m.Utilization() / percentagePrecision
}

// DepositRatePercent converts the deposit rate to a human percentage, the
// figure shown in blink titles.
func (m *SpotMarketAccount) DepositRatePercent() float64 {
	return float64(m.DepositRate()) / 10_000
}
