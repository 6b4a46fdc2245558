package registry

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI fragments of the curated-list contracts, limited to the read functions
// the dashboard needs plus fundAppeal for call decoding.

const tokenListABIJSON = `[
	{"constant":true,"inputs":[],"name":"tokenCount","outputs":[{"name":"count","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_index","type":"uint256"}],"name":"tokensList","outputs":[{"name":"","type":"bytes32"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_tokenID","type":"bytes32"}],"name":"getTokenInfo","outputs":[{"name":"name","type":"string"},{"name":"ticker","type":"string"},{"name":"addr","type":"address"},{"name":"symbolMultihash","type":"string"},{"name":"status","type":"uint8"},{"name":"numberOfRequests","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_tokenID","type":"bytes32"},{"name":"_request","type":"uint256"}],"name":"getRequestInfo","outputs":[{"name":"disputed","type":"bool"},{"name":"disputeID","type":"uint256"},{"name":"submissionTime","type":"uint256"},{"name":"resolved","type":"bool"},{"name":"parties","type":"address[3]"},{"name":"numberOfRounds","type":"uint256"},{"name":"ruling","type":"uint8"},{"name":"arbitrator","type":"address"},{"name":"arbitratorExtraData","type":"bytes"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_tokenID","type":"bytes32"},{"name":"_request","type":"uint256"},{"name":"_round","type":"uint256"}],"name":"getRoundInfo","outputs":[{"name":"appealed","type":"bool"},{"name":"paidFees","type":"uint256[3]"},{"name":"hasPaidAppealFee","type":"bool[3]"},{"name":"feeRewards","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"_tokenID","type":"bytes32"},{"name":"_side","type":"uint8"}],"name":"fundAppeal","outputs":[],"payable":true,"type":"function"}
]`

const addressListABIJSON = `[
	{"constant":true,"inputs":[],"name":"addressCount","outputs":[{"name":"count","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_index","type":"uint256"}],"name":"addressList","outputs":[{"name":"","type":"address"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_address","type":"address"}],"name":"getAddressInfo","outputs":[{"name":"status","type":"uint8"},{"name":"numberOfRequests","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_address","type":"address"},{"name":"_request","type":"uint256"}],"name":"getRequestInfo","outputs":[{"name":"disputed","type":"bool"},{"name":"disputeID","type":"uint256"},{"name":"submissionTime","type":"uint256"},{"name":"resolved","type":"bool"},{"name":"parties","type":"address[3]"},{"name":"numberOfRounds","type":"uint256"},{"name":"ruling","type":"uint8"},{"name":"arbitrator","type":"address"},{"name":"arbitratorExtraData","type":"bytes"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_address","type":"address"},{"name":"_request","type":"uint256"},{"name":"_round","type":"uint256"}],"name":"getRoundInfo","outputs":[{"name":"appealed","type":"bool"},{"name":"paidFees","type":"uint256[3]"},{"name":"hasPaidAppealFee","type":"bool[3]"},{"name":"feeRewards","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"_address","type":"address"},{"name":"_side","type":"uint8"}],"name":"fundAppeal","outputs":[],"payable":true,"type":"function"}
]`

var (
	tokenListABI   = mustParseABI(tokenListABIJSON)
	addressListABI = mustParseABI(addressListABIJSON)
)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}
