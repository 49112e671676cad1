package drift

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"driftblinks/driftmkt"
)

// Compute-budget program opcodes.
const (
	computeBudgetSetUnitLimit = 2
	computeBudgetSetUnitPrice = 3
)

// SetComputeUnitLimitInstruction caps the transaction's compute units.
func SetComputeUnitLimitInstruction(units uint32) solana.Instruction {
	data := make([]byte, 5)
	data[0] = computeBudgetSetUnitLimit
	binary.LittleEndian.PutUint32(data[1:], units)
	return solana.NewInstruction(ComputeBudgetProgramID, solana.AccountMetaSlice{}, data)
}

// SetComputeUnitPriceInstruction sets the fee offered per compute unit, in
// micro-lamports.
func SetComputeUnitPriceInstruction(microLamports uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = computeBudgetSetUnitPrice
	binary.LittleEndian.PutUint64(data[1:], microLamports)
	return solana.NewInstruction(ComputeBudgetProgramID, solana.AccountMetaSlice{}, data)
}

// BuildInitializeUserStatsInstruction builds initialize_user_stats. When
// referrer info is present the referrer's accounts ride along as remaining
// accounts so the program can register the referral.
func BuildInitializeUserStatsInstruction(authority solana.PublicKey, referrer *ReferrerInfo) (solana.Instruction, error) {
	state, err := DeriveStatePDA()
	if err != nil {
		return nil, fmt.Errorf("derive state: %w", err)
	}
	userStats, err := DeriveUserStatsPDA(authority)
	if err != nil {
		return nil, fmt.Errorf("derive user stats: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(userStats).WRITE(),
		solana.Meta(state).WRITE(),
		solana.Meta(authority).SIGNER(),
		solana.Meta(authority).WRITE().SIGNER(), // payer
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(solana.SystemProgramID),
	}
	if referrer != nil {
		accounts = append(accounts,
			solana.Meta(referrer.ReferrerStats).WRITE(),
			solana.Meta(referrer.Referrer).WRITE(),
		)
	}

	return solana.NewInstruction(ProgramID, accounts, initializeUserStatsDisc[:]), nil
}

// BuildInitializeUserInstruction builds initialize_user for a sub-account.
func BuildInitializeUserInstruction(authority solana.PublicKey, subAccountID uint16, name string) (solana.Instruction, error) {
	state, err := DeriveStatePDA()
	if err != nil {
		return nil, fmt.Errorf("derive state: %w", err)
	}
	user, err := DeriveUserPDA(authority, subAccountID)
	if err != nil {
		return nil, fmt.Errorf("derive user: %w", err)
	}
	userStats, err := DeriveUserStatsPDA(authority)
	if err != nil {
		return nil, fmt.Errorf("derive user stats: %w", err)
	}

	// Args: sub_account_id u16 + name [32]u8.
	encodedName := EncodeName(name)
	data := make([]byte, 0, 8+2+32)
	data = append(data, initializeUserDisc[:]...)
	idBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(idBytes, subAccountID)
	data = append(data, idBytes...)
	data = append(data, encodedName[:]...)

	return solana.NewInstruction(
		ProgramID,
		solana.AccountMetaSlice{
			solana.Meta(user).WRITE(),
			solana.Meta(userStats).WRITE(),
			solana.Meta(state).WRITE(),
			solana.Meta(authority).SIGNER(),
			solana.Meta(authority).WRITE().SIGNER(), // payer
			solana.Meta(solana.SysVarRentPubkey),
			solana.Meta(solana.SystemProgramID),
		},
		data,
	), nil
}

// BuildDepositInstruction builds a deposit into the given spot market. The
// market's account and oracle ride as remaining accounts so the program can
// refresh interest before crediting the balance.
func BuildDepositInstruction(
	authority solana.PublicKey,
	subAccountID uint16,
	market driftmkt.SpotMarketConfig,
	userTokenAccount solana.PublicKey,
	amount uint64,
) (solana.Instruction, error) {
	state, err := DeriveStatePDA()
	if err != nil {
		return nil, fmt.Errorf("derive state: %w", err)
	}
	user, err := DeriveUserPDA(authority, subAccountID)
	if err != nil {
		return nil, fmt.Errorf("derive user: %w", err)
	}
	userStats, err := DeriveUserStatsPDA(authority)
	if err != nil {
		return nil, fmt.Errorf("derive user stats: %w", err)
	}
	spotMarket, err := DeriveSpotMarketPDA(market.MarketIndex)
	if err != nil {
		return nil, fmt.Errorf("derive spot market: %w", err)
	}
	vault, err := DeriveSpotMarketVaultPDA(market.MarketIndex)
	if err != nil {
		return nil, fmt.Errorf("derive spot market vault: %w", err)
	}

	// Args: market_index u16 + amount u64 + reduce_only bool.
	data := make([]byte, 0, 8+2+8+1)
	data = append(data, depositDisc[:]...)
	idxBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(idxBytes, market.MarketIndex)
	data = append(data, idxBytes...)
	amountBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(amountBytes, amount)
	data = append(data, amountBytes...)
	data = append(data, 0) // reduce_only = false

	return solana.NewInstruction(
		ProgramID,
		solana.AccountMetaSlice{
			solana.Meta(state),
			solana.Meta(user).WRITE(),
			solana.Meta(userStats).WRITE(),
			solana.Meta(authority).SIGNER(),
			solana.Meta(vault).WRITE(),
			solana.Meta(userTokenAccount).WRITE(),
			solana.Meta(solana.TokenProgramID),
			solana.Meta(market.Oracle),
			solana.Meta(spotMarket).WRITE(),
		},
		data,
	), nil
}
