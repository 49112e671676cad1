package drift

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftblinks/driftmkt"
)

var testAuthority = solana.MustPublicKeyFromBase58("8BnEgHoWFysVcuFFX7QztDmzuH8r5ZFvyP3sYwn1XTh6")

func TestAnchorDiscriminator(t *testing.T) {
	a := anchorDiscriminator("global:deposit")
	b := anchorDiscriminator("global:deposit")
	c := anchorDiscriminator("global:initialize_user")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a[:], 8)
}

func TestEncodeName(t *testing.T) {
	name := EncodeName("poseidon")
	assert.Equal(t, byte('p'), name[0])
	assert.Equal(t, byte('n'), name[7])
	for i := 8; i < 32; i++ {
		assert.Equal(t, byte(' '), name[i])
	}

	long := EncodeName("a-name-well-beyond-thirty-two-characters-long")
	assert.Len(t, long[:], 32)
}

func TestDerivePDAsAreDeterministic(t *testing.T) {
	u1, err := DeriveUserPDA(testAuthority, 0)
	require.NoError(t, err)
	u2, err := DeriveUserPDA(testAuthority, 0)
	require.NoError(t, err)
	u3, err := DeriveUserPDA(testAuthority, 1)
	require.NoError(t, err)

	assert.Equal(t, u1, u2)
	assert.NotEqual(t, u1, u3)

	s0, err := DeriveSpotMarketPDA(0)
	require.NoError(t, err)
	s1, err := DeriveSpotMarketPDA(1)
	require.NoError(t, err)
	assert.NotEqual(t, s0, s1)

	r1, err := DeriveReferrerNamePDA("drift")
	require.NoError(t, err)
	r2, err := DeriveReferrerNamePDA("adrift")
	require.NoError(t, err)
	assert.NotEqual(t, r1, r2)
}

func TestComputeBudgetInstructions(t *testing.T) {
	limit := SetComputeUnitLimitInstruction(200_000)
	assert.Equal(t, ComputeBudgetProgramID, limit.ProgramID())
	data, err := limit.Data()
	require.NoError(t, err)
	require.Len(t, data, 5)
	assert.Equal(t, byte(computeBudgetSetUnitLimit), data[0])
	assert.Equal(t, uint32(200_000), binary.LittleEndian.Uint32(data[1:]))

	price := SetComputeUnitPriceInstruction(50_000)
	data, err = price.Data()
	require.NoError(t, err)
	require.Len(t, data, 9)
	assert.Equal(t, byte(computeBudgetSetUnitPrice), data[0])
	assert.Equal(t, uint64(50_000), binary.LittleEndian.Uint64(data[1:]))
}

func TestBuildDepositInstruction(t *testing.T) {
	market, ok := driftmkt.FindSpotMarket(driftmkt.EnvMainnet, "USDC")
	require.True(t, ok)

	tokenAccount, err := TokenAddressForDeposit(market, testAuthority)
	require.NoError(t, err)
	assert.NotEqual(t, testAuthority, tokenAccount)

	ix, err := BuildDepositInstruction(testAuthority, 0, market, tokenAccount, 10_000_000)
	require.NoError(t, err)
	assert.Equal(t, ProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 8+2+8+1)
	assert.Equal(t, depositDisc[:], data[:8])
	assert.Equal(t, market.MarketIndex, binary.LittleEndian.Uint16(data[8:10]))
	assert.Equal(t, uint64(10_000_000), binary.LittleEndian.Uint64(data[10:18]))
	assert.Equal(t, byte(0), data[18])

	accounts := ix.Accounts()
	require.Len(t, accounts, 9)
	assert.Equal(t, testAuthority, accounts[3].PublicKey)
	assert.True(t, accounts[3].IsSigner)
	assert.Equal(t, tokenAccount, accounts[5].PublicKey)
	assert.Equal(t, market.Oracle, accounts[7].PublicKey)
}

func TestTokenAddressForDepositSOL(t *testing.T) {
	market, ok := driftmkt.FindSpotMarket(driftmkt.EnvMainnet, "SOL")
	require.True(t, ok)

	addr, err := TokenAddressForDeposit(market, testAuthority)
	require.NoError(t, err)
	assert.Equal(t, testAuthority, addr)
}

func TestBuildInitializeUserStatsReferrerAccounts(t *testing.T) {
	plain, err := BuildInitializeUserStatsInstruction(testAuthority, nil)
	require.NoError(t, err)
	assert.Len(t, plain.Accounts(), 6)

	referrer := &ReferrerInfo{
		Referrer:      solana.NewWallet().PublicKey(),
		ReferrerStats: solana.NewWallet().PublicKey(),
	}
	withRef, err := BuildInitializeUserStatsInstruction(testAuthority, referrer)
	require.NoError(t, err)
	accounts := withRef.Accounts()
	require.Len(t, accounts, 8)
	assert.Equal(t, referrer.ReferrerStats, accounts[6].PublicKey)
	assert.Equal(t, referrer.Referrer, accounts[7].PublicKey)
	assert.True(t, accounts[6].IsWritable)
	assert.True(t, accounts[7].IsWritable)
}

func TestBuildInitializeUserInstructionData(t *testing.T) {
	ix, err := BuildInitializeUserInstruction(testAuthority, 3, "Main Account")
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 8+2+32)
	assert.Equal(t, initializeUserDisc[:], data[:8])
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(data[8:10]))
	assert.Equal(t, byte('M'), data[10])
}

func TestDecodeUserAccount(t *testing.T) {
	data := make([]byte, userAccountSize)
	copy(data[:8], userAccountDisc[:])
	copy(data[userAuthorityOffset:], testAuthority.Bytes())
	binary.LittleEndian.PutUint16(data[userSubAccountIDOffset:], 7)

	pubkey := solana.NewWallet().PublicKey()
	acc, err := decodeUserAccount(pubkey, data)
	require.NoError(t, err)
	assert.Equal(t, pubkey, acc.Pubkey)
	assert.Equal(t, testAuthority, acc.Authority)
	assert.Equal(t, uint16(7), acc.SubAccountID)

	_, err = decodeUserAccount(pubkey, data[:100])
	assert.Error(t, err)
}

func TestDecodeReferrerNameAccount(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	stats := solana.NewWallet().PublicKey()

	data := make([]byte, 136)
	copy(data[40:72], user.Bytes())
	copy(data[72:104], stats.Bytes())

	info, err := decodeReferrerNameAccount(data)
	require.NoError(t, err)
	assert.Equal(t, user, info.Referrer)
	assert.Equal(t, stats, info.ReferrerStats)

	_, err = decodeReferrerNameAccount(data[:50])
	assert.Error(t, err)
}

func TestDecodeInsuranceFundShares(t *testing.T) {
	data := make([]byte, 128)
	binary.LittleEndian.PutUint64(data[40:], 1_500_000_000)

	shares, err := decodeInsuranceFundShares(data)
	require.NoError(t, err)
	assert.Equal(t, 1_500_000_000.0, shares)

	zero := make([]byte, 128)
	shares, err = decodeInsuranceFundShares(zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, shares)

	_, err = decodeInsuranceFundShares(data[:20])
	assert.Error(t, err)
}

func TestExtractErrorCode(t *testing.T) {
	code, ok := ExtractErrorCode(errors.New(`{"err": {"InstructionError": [0, {"Custom": 6111}]}}`))
	assert.True(t, ok)
	assert.Equal(t, 6111, code)

	code, ok = ExtractErrorCode(errors.New("custom program error: 0x17df"))
	assert.True(t, ok)
	assert.Equal(t, 0x17df, code)

	_, ok = ExtractErrorCode(errors.New("connection refused"))
	assert.False(t, ok)

	_, ok = ExtractErrorCode(nil)
	assert.False(t, ok)
}

func TestHumanizeRPCError(t *testing.T) {
	assert.Equal(t, "", HumanizeRPCError(nil))
	assert.Equal(t,
		"transaction blockhash expired before submission",
		HumanizeRPCError(errors.New("BlockhashNotFound")),
	)
	assert.Contains(t,
		HumanizeRPCError(errors.New(`{"Custom": 6111}`)),
		"ReferrerNotFound",
	)
	assert.Contains(t,
		HumanizeRPCError(errors.New(`{"Custom": 9999}`)),
		"9999",
	)
	assert.Equal(t,
		"transaction simulation failed, see program logs",
		HumanizeRPCError(errors.New("Transaction simulation failed: something")),
	)
}
