package drift

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// programErrors maps the Drift custom error codes this service can plausibly
// trip over while assembling deposits.
var programErrors = map[int]string{
	6004: "SufficientCollateral - nothing to liquidate",
	6012: "InsufficientDeposit - deposit does not cover the requested amount",
	6023: "UserIsBeingLiquidated - account is mid-liquidation, deposits are paused",
	6040: "InvalidSpotMarketAccount - wrong spot market passed for this index",
	6052: "CouldNotLoadUserData - user account bytes did not deserialize",
	6111: "ReferrerNotFound - referral accounts missing from the transaction",
	6112: "ReferrerStatsNotFound - referrer stats account missing",
	6113: "ReferrerMustBeWritable - referral accounts must be writable",
}

var (
	customCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"Custom":\s*"?(\d+)"?`),
		regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`),
		regexp.MustCompile(`Error Number:\s*(\d+)`),
	}
	simulationFailedRe = regexp.MustCompile(`simulation failed`)
)

// ExtractErrorCode pulls a custom program error code out of an RPC error
// string, in whichever of the node's formats it arrived.
func ExtractErrorCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	errStr := err.Error()
	for i, pattern := range customCodePatterns {
		matches := pattern.FindStringSubmatch(errStr)
		if len(matches) < 2 {
			continue
		}
		base := 10
		if i == 1 {
			base = 16
		}
		code, parseErr := strconv.ParseInt(matches[1], base, 32)
		if parseErr == nil {
			return int(code), true
		}
	}
	return 0, false
}

// HumanizeRPCError turns a raw Solana RPC failure into something worth
// putting in a log line.
func HumanizeRPCError(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()

	if strings.Contains(errStr, "BlockhashNotFound") || strings.Contains(errStr, "Blockhash not found") {
		return "transaction blockhash expired before submission"
	}
	if code, ok := ExtractErrorCode(err); ok {
		if msg, found := programErrors[code]; found {
			return msg
		}
		return fmt.Sprintf("drift program error code %d", code)
	}
	if simulationFailedRe.MatchString(errStr) {
		return "transaction simulation failed, see program logs"
	}
	if len(errStr) > 300 {
		return errStr[:300] + "..."
	}
	return errStr
}
