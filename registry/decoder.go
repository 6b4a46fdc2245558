package registry

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Decoder recognizes fundAppeal calls in raw transaction input data. The token
// and badge variants have different selectors (bytes32 vs address argument),
// so both ABIs are checked.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// FundAppealItem returns the funded item id (token id or address, lower-cased)
// and true if the input decodes as a fundAppeal call. Undecodable input is not
// an error, it just is not a fund appeal.
func (d *Decoder) FundAppealItem(input string) (string, bool) {
	data, err := hexutil.Decode(input)
	if err != nil || len(data) < 4 {
		return "", false
	}
	for _, parsed := range []abi.ABI{tokenListABI, addressListABI} {
		method, err := parsed.MethodById(data[:4])
		if err != nil || method.Name != "fundAppeal" {
			continue
		}
		args, err := method.Inputs.Unpack(data[4:])
		if err != nil || len(args) == 0 {
			return "", false
		}
		switch v := args[0].(type) {
		case [32]byte:
			return common.Hash(v).Hex(), true
		case common.Address:
			return strings.ToLower(v.Hex()), true
		}
	}
	return "", false
}
