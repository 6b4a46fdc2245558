// Package arbitrator reads live dispute state from the arbitrator contract.
package arbitrator

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"

	"github.com/kleros/t2cr-dashboard-backend/domain"
)

const arbitratorABIJSON = `[
	{"constant":true,"inputs":[{"name":"_disputeID","type":"uint256"}],"name":"disputeStatus","outputs":[{"name":"status","type":"uint8"}],"type":"function"}
]`

var arbitratorABI = mustParseABI(arbitratorABIJSON)

// ContractCaller executes read-only contract calls. Satisfied by
// ethclient.Client.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client resolves dispute statuses. Several listed items can point at the same
// dispute within one refresh, so results are memoized with a short TTL.
type Client struct {
	caller   ContractCaller
	contract common.Address
	cache    *ttlcache.Cache[uint64, domain.DisputeStatus]
	lock     sync.Mutex
}

func NewClient(caller ContractCaller, contract string, cache *ttlcache.Cache[uint64, domain.DisputeStatus]) *Client {
	return &Client{
		caller:   caller,
		contract: common.HexToAddress(contract),
		cache:    cache,
	}
}

func (c *Client) DisputeStatus(ctx context.Context, disputeID uint64) (domain.DisputeStatus, error) {
	c.lock.Lock() // lock so that we do not get multiple threads inside the `if`
	defer c.lock.Unlock()

	item := c.cache.Get(disputeID)
	if item != nil {
		return item.Value(), nil
	}

	status, err := c.fetchDisputeStatus(ctx, disputeID)
	if err != nil {
		return 0, errors.Wrapf(err, "fetching status of dispute [%d]", disputeID)
	}
	c.cache.Set(disputeID, status, ttlcache.DefaultTTL)
	return status, nil
}

func (c *Client) fetchDisputeStatus(ctx context.Context, disputeID uint64) (domain.DisputeStatus, error) {
	data, err := arbitratorABI.Pack("disputeStatus", new(big.Int).SetUint64(disputeID))
	if err != nil {
		return 0, errors.Wrap(err, "packing call")
	}
	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return 0, errors.Wrap(err, "calling arbitrator")
	}
	values, err := arbitratorABI.Unpack("disputeStatus", output)
	if err != nil {
		return 0, errors.Wrap(err, "unpacking result")
	}
	return domain.DisputeStatus(values[0].(uint8)), nil
}

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}
