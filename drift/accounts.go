package drift

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ProgramID is the Drift v2 program on both devnet and mainnet-beta.
var ProgramID = solana.MustPublicKeyFromBase58("dRiftyHA39MWEi3m9aunc5MzRF1JYuBsbn6VPcn33UH")

// ComputeBudgetProgramID is the native compute-budget program.
var ComputeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

// anchorDiscriminator derives the 8-byte Anchor discriminator for an
// instruction ("global:<name>") or account ("account:<Name>").
func anchorDiscriminator(name string) [8]byte {
	hash := sha256.Sum256([]byte(name))
	var disc [8]byte
	copy(disc[:], hash[:8])
	return disc
}

var (
	depositDisc             = anchorDiscriminator("global:deposit")
	initializeUserDisc      = anchorDiscriminator("global:initialize_user")
	initializeUserStatsDisc = anchorDiscriminator("global:initialize_user_stats")
	userAccountDisc         = anchorDiscriminator("account:User")
)

// User account layout constants. The sub-account id sits in the fixed tail of
// the on-chain User struct, after the position and order arrays.
const (
	userAccountSize        = 4376
	userAuthorityOffset    = 8
	userSubAccountIDOffset = 4348
)

// EncodeName pads a referrer or sub-account name to the fixed 32-byte
// space-padded representation the program stores.
func EncodeName(name string) [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = ' '
	}
	copy(out[:], name)
	return out
}

// DeriveStatePDA derives the global drift state account.
func DeriveStatePDA() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("drift_state")}, ProgramID)
	return addr, err
}

// DeriveUserPDA derives the user account for an authority and sub-account id.
func DeriveUserPDA(authority solana.PublicKey, subAccountID uint16) (solana.PublicKey, error) {
	idBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(idBytes, subAccountID)
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("user"), authority.Bytes(), idBytes},
		ProgramID,
	)
	return addr, err
}

// DeriveUserStatsPDA derives the per-authority stats account.
func DeriveUserStatsPDA(authority solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("user_stats"), authority.Bytes()},
		ProgramID,
	)
	return addr, err
}

// DeriveSpotMarketPDA derives a spot market account by index.
func DeriveSpotMarketPDA(marketIndex uint16) (solana.PublicKey, error) {
	idxBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(idxBytes, marketIndex)
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("spot_market"), idxBytes},
		ProgramID,
	)
	return addr, err
}

// DeriveSpotMarketVaultPDA derives the token vault for a spot market.
func DeriveSpotMarketVaultPDA(marketIndex uint16) (solana.PublicKey, error) {
	idxBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(idxBytes, marketIndex)
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("spot_market_vault"), idxBytes},
		ProgramID,
	)
	return addr, err
}

// DeriveReferrerNamePDA derives the account mapping a referral code to its
// owner's user accounts.
func DeriveReferrerNamePDA(name string) (solana.PublicKey, error) {
	encoded := EncodeName(name)
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("referrer_name"), encoded[:]},
		ProgramID,
	)
	return addr, err
}

// DeriveInsuranceFundStakePDA derives an authority's insurance-fund stake
// account for a spot market.
func DeriveInsuranceFundStakePDA(authority solana.PublicKey, marketIndex uint16) (solana.PublicKey, error) {
	idxBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(idxBytes, marketIndex)
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("insurance_fund_stake"), authority.Bytes(), idxBytes},
		ProgramID,
	)
	return addr, err
}

// UserAccount is the slice of the on-chain User struct this service needs.
type UserAccount struct {
	Pubkey       solana.PublicKey
	Authority    solana.PublicKey
	SubAccountID uint16
}

func decodeUserAccount(pubkey solana.PublicKey, data []byte) (UserAccount, error) {
	if len(data) < userAccountSize {
		return UserAccount{}, fmt.Errorf("user account %s: short data (%d bytes)", pubkey, len(data))
	}
	var authority solana.PublicKey
	copy(authority[:], data[userAuthorityOffset:userAuthorityOffset+32])
	return UserAccount{
		Pubkey:       pubkey,
		Authority:    authority,
		SubAccountID: binary.LittleEndian.Uint16(data[userSubAccountIDOffset : userSubAccountIDOffset+2]),
	}, nil
}

// ReferrerInfo names the accounts credited when a referred wallet initializes.
type ReferrerInfo struct {
	Referrer      solana.PublicKey
	ReferrerStats solana.PublicKey
}

// referrerNameAccount layout: discriminator(8) + authority(32) + user(32) +
// user_stats(32) + name(32).
func decodeReferrerNameAccount(data []byte) (ReferrerInfo, error) {
	if len(data) < 104 {
		return ReferrerInfo{}, fmt.Errorf("referrer name account: short data (%d bytes)", len(data))
	}
	var info ReferrerInfo
	copy(info.Referrer[:], data[40:72])
	copy(info.ReferrerStats[:], data[72:104])
	return info, nil
}

// insuranceFundStake layout: discriminator(8) + authority(32) + if_shares(u128) + ...
// Only the share count matters here; it is read as a u128 and reported as a
// float64 the same way the web UI consumes it.
func decodeInsuranceFundShares(data []byte) (float64, error) {
	if len(data) < 56 {
		return 0, fmt.Errorf("insurance fund stake account: short data (%d bytes)", len(data))
	}
	dec := bin.NewBinDecoder(data[40:56])
	var shares bin.Uint128
	if err := dec.Decode(&shares); err != nil {
		return 0, fmt.Errorf("decode if_shares: %w", err)
	}
	out, _ := new(big.Float).SetInt(shares.BigInt()).Float64()
	return out, nil
}
