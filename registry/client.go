package registry

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// ContractCaller executes read-only contract calls. Satisfied by
// ethclient.Client.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ItemInfo is the summary tuple of one listed item. Display metadata fields
// are empty for address lists.
type ItemInfo struct {
	Name             string
	Ticker           string
	Addr             string
	SymbolMultihash  string
	Status           int
	NumberOfRequests int
}

// RequestInfo is the raw on-chain tuple of one status-change request.
type RequestInfo struct {
	Disputed            bool
	DisputeID           uint64
	SubmissionTime      int64
	Resolved            bool
	Parties             [3]string
	NumberOfRounds      int
	Ruling              int
	Arbitrator          string
	ArbitratorExtraData string
}

// RoundInfo is the raw on-chain tuple of one appeal round. Fee amounts are in
// wei.
type RoundInfo struct {
	Appealed   bool
	PaidFees   [3]*big.Int
	HasPaid    [3]bool
	FeeRewards *big.Int
}

// Client executes reads against curated-list contracts through an eth node.
type Client struct {
	caller ContractCaller
}

func NewClient(caller ContractCaller) *Client {
	return &Client{caller: caller}
}

func (c *Client) call(ctx context.Context, contract common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "packing call to [%s]", method)
	}
	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "calling [%s] on [%s]", method, contract.Hex())
	}
	values, err := parsed.Unpack(method, output)
	if err != nil {
		return nil, errors.Wrapf(err, "unpacking result of [%s]", method)
	}
	return values, nil
}

// TokenList reads one ArbitrableTokenList contract instance. Item ids are
// 32-byte token ids in lower-cased hex.
type TokenList struct {
	client   *Client
	contract common.Address
}

func NewTokenList(client *Client, contract string) *TokenList {
	return &TokenList{client: client, contract: common.HexToAddress(contract)}
}

// ContractAddress returns the configured contract address, lower-cased.
func (l *TokenList) ContractAddress() string {
	return lowerHex(l.contract)
}

func (l *TokenList) ItemCount(ctx context.Context) (int, error) {
	values, err := l.client.call(ctx, l.contract, tokenListABI, "tokenCount")
	if err != nil {
		return 0, err
	}
	return int(values[0].(*big.Int).Int64()), nil
}

func (l *TokenList) ItemID(ctx context.Context, index int) (string, error) {
	values, err := l.client.call(ctx, l.contract, tokenListABI, "tokensList", big.NewInt(int64(index)))
	if err != nil {
		return "", err
	}
	id := values[0].([32]byte)
	return common.Hash(id).Hex(), nil
}

func (l *TokenList) ItemInfo(ctx context.Context, id string) (*ItemInfo, error) {
	values, err := l.client.call(ctx, l.contract, tokenListABI, "getTokenInfo", tokenID(id))
	if err != nil {
		return nil, err
	}
	return &ItemInfo{
		Name:             values[0].(string),
		Ticker:           values[1].(string),
		Addr:             lowerHex(values[2].(common.Address)),
		SymbolMultihash:  values[3].(string),
		Status:           int(values[4].(uint8)),
		NumberOfRequests: int(values[5].(*big.Int).Int64()),
	}, nil
}

func (l *TokenList) RequestInfo(ctx context.Context, id string, request int) (*RequestInfo, error) {
	values, err := l.client.call(ctx, l.contract, tokenListABI, "getRequestInfo", tokenID(id), big.NewInt(int64(request)))
	if err != nil {
		return nil, err
	}
	return convertRequestInfo(values), nil
}

func (l *TokenList) RoundInfo(ctx context.Context, id string, request, round int) (*RoundInfo, error) {
	values, err := l.client.call(ctx, l.contract, tokenListABI, "getRoundInfo",
		tokenID(id), big.NewInt(int64(request)), big.NewInt(int64(round)))
	if err != nil {
		return nil, err
	}
	return convertRoundInfo(values), nil
}

// AddressList reads one ArbitrableAddressList (badge) contract instance. Item
// ids are listed addresses in lower-cased hex.
type AddressList struct {
	client   *Client
	contract common.Address
}

func NewAddressList(client *Client, contract string) *AddressList {
	return &AddressList{client: client, contract: common.HexToAddress(contract)}
}

func (l *AddressList) ContractAddress() string {
	return lowerHex(l.contract)
}

func (l *AddressList) ItemCount(ctx context.Context) (int, error) {
	values, err := l.client.call(ctx, l.contract, addressListABI, "addressCount")
	if err != nil {
		return 0, err
	}
	return int(values[0].(*big.Int).Int64()), nil
}

func (l *AddressList) ItemID(ctx context.Context, index int) (string, error) {
	values, err := l.client.call(ctx, l.contract, addressListABI, "addressList", big.NewInt(int64(index)))
	if err != nil {
		return "", err
	}
	return lowerHex(values[0].(common.Address)), nil
}

func (l *AddressList) ItemInfo(ctx context.Context, id string) (*ItemInfo, error) {
	values, err := l.client.call(ctx, l.contract, addressListABI, "getAddressInfo", common.HexToAddress(id))
	if err != nil {
		return nil, err
	}
	return &ItemInfo{
		Status:           int(values[0].(uint8)),
		NumberOfRequests: int(values[1].(*big.Int).Int64()),
	}, nil
}

func (l *AddressList) RequestInfo(ctx context.Context, id string, request int) (*RequestInfo, error) {
	values, err := l.client.call(ctx, l.contract, addressListABI, "getRequestInfo",
		common.HexToAddress(id), big.NewInt(int64(request)))
	if err != nil {
		return nil, err
	}
	return convertRequestInfo(values), nil
}

func (l *AddressList) RoundInfo(ctx context.Context, id string, request, round int) (*RoundInfo, error) {
	values, err := l.client.call(ctx, l.contract, addressListABI, "getRoundInfo",
		common.HexToAddress(id), big.NewInt(int64(request)), big.NewInt(int64(round)))
	if err != nil {
		return nil, err
	}
	return convertRoundInfo(values), nil
}

func convertRequestInfo(values []interface{}) *RequestInfo {
	rawParties := values[4].([3]common.Address)
	var parties [3]string
	for i, party := range rawParties {
		parties[i] = lowerHex(party)
	}
	return &RequestInfo{
		Disputed:            values[0].(bool),
		DisputeID:           values[1].(*big.Int).Uint64(),
		SubmissionTime:      values[2].(*big.Int).Int64(),
		Resolved:            values[3].(bool),
		Parties:             parties,
		NumberOfRounds:      int(values[5].(*big.Int).Int64()),
		Ruling:              int(values[6].(uint8)),
		Arbitrator:          lowerHex(values[7].(common.Address)),
		ArbitratorExtraData: hexutil.Encode(values[8].([]byte)),
	}
}

func convertRoundInfo(values []interface{}) *RoundInfo {
	return &RoundInfo{
		Appealed:   values[0].(bool),
		PaidFees:   values[1].([3]*big.Int),
		HasPaid:    values[2].([3]bool),
		FeeRewards: values[3].(*big.Int),
	}
}

func tokenID(id string) [32]byte {
	return common.HexToHash(id)
}

func lowerHex(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}
