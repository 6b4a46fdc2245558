package sync

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/kleros/t2cr-dashboard-backend/domain"
	"github.com/kleros/t2cr-dashboard-backend/registry"
)

// RegistryList reads one curated-list contract instance.
type RegistryList interface {
	ContractAddress() string
	ItemCount(ctx context.Context) (int, error)
	ItemID(ctx context.Context, index int) (string, error)
	ItemInfo(ctx context.Context, id string) (*registry.ItemInfo, error)
	RequestInfo(ctx context.Context, id string, request int) (*registry.RequestInfo, error)
	RoundInfo(ctx context.Context, id string, request, round int) (*registry.RoundInfo, error)
}

// DisputeReader resolves the live status of a dispute.
type DisputeReader interface {
	DisputeStatus(ctx context.Context, disputeID uint64) (domain.DisputeStatus, error)
}

type family int

const (
	tokenFamily family = iota
	addressFamily
)

// Loader loads the full state of every item listed in one contract: identity,
// requests, rounds, and the resolved dashboard status.
type Loader struct {
	list     RegistryList
	disputes DisputeReader
	itemKind family
	maxLoads int
}

// NewTokenLoader creates a loader for an ArbitrableTokenList contract.
// maxConcurrentLoads bounds the item fan-out; zero means unbounded.
func NewTokenLoader(list RegistryList, disputes DisputeReader, maxConcurrentLoads int) *Loader {
	return &Loader{list: list, disputes: disputes, itemKind: tokenFamily, maxLoads: maxConcurrentLoads}
}

// NewAddressLoader creates a loader for an ArbitrableAddressList (badge)
// contract.
func NewAddressLoader(list RegistryList, disputes DisputeReader, maxConcurrentLoads int) *Loader {
	return &Loader{list: list, disputes: disputes, itemKind: addressFamily, maxLoads: maxConcurrentLoads}
}

func (l *Loader) ContractAddress() string {
	return l.list.ContractAddress()
}

// LoadItems loads all listed items concurrently. Any failed read aborts the
// whole load.
func (l *Loader) LoadItems(ctx context.Context) ([]*domain.Item, error) {
	count, err := l.list.ItemCount(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting item count")
	}

	items := make([]*domain.Item, count)
	group, groupCtx := errgroup.WithContext(ctx)
	if l.maxLoads > 0 {
		group.SetLimit(l.maxLoads)
	}
	for index := 0; index < count; index++ {
		group.Go(func() error {
			item, err := l.loadItem(groupCtx, index)
			if err != nil {
				return errors.Wrapf(err, "loading item [%d]", index)
			}
			items[index] = item
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (l *Loader) loadItem(ctx context.Context, index int) (*domain.Item, error) {
	id, err := l.list.ItemID(ctx, index)
	if err != nil {
		return nil, errors.Wrap(err, "getting item id")
	}
	info, err := l.list.ItemInfo(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting info of [%s]", id)
	}
	requests, err := l.loadRequests(ctx, id, info.NumberOfRequests)
	if err != nil {
		return nil, errors.Wrapf(err, "loading requests of [%s]", id)
	}
	currentStatus, err := l.resolveStatus(ctx, domain.RegistrationStatus(info.Status), requests)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving status of [%s]", id)
	}

	derived := deriveRequestInfo(requests)
	item := &domain.Item{
		Status:          domain.RegistrationStatus(info.Status),
		CurrentStatus:   currentStatus,
		Requests:        requests,
		LastRequestTime: derived.lastRequestTime,
		Challenged:      derived.challenged,
		Appealed:        derived.appealed,
		Parties:         derived.parties,
	}
	if l.itemKind == tokenFamily {
		item.TokenID = id
		item.Name = info.Name
		item.Ticker = info.Ticker
		item.Addr = info.Addr
		item.SymbolMultihash = info.SymbolMultihash
	} else {
		item.Address = id
	}
	return item, nil
}

func (l *Loader) loadRequests(ctx context.Context, id string, count int) ([]*domain.Request, error) {
	requests := make([]*domain.Request, count)
	group, groupCtx := errgroup.WithContext(ctx)
	for index := 0; index < count; index++ {
		group.Go(func() error {
			request, err := l.loadRequest(groupCtx, id, index)
			if err != nil {
				return errors.Wrapf(err, "loading request [%d]", index)
			}
			requests[index] = request
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return requests, nil
}

func (l *Loader) loadRequest(ctx context.Context, id string, index int) (*domain.Request, error) {
	info, err := l.list.RequestInfo(ctx, id, index)
	if err != nil {
		return nil, errors.Wrap(err, "getting request info")
	}
	rounds, err := l.loadRounds(ctx, id, index, info.NumberOfRounds)
	if err != nil {
		return nil, errors.Wrap(err, "loading rounds")
	}
	return &domain.Request{
		Disputed:            info.Disputed,
		DisputeID:           info.DisputeID,
		SubmissionTime:      info.SubmissionTime,
		Resolved:            info.Resolved,
		Parties:             info.Parties,
		Rounds:              rounds,
		Ruling:              info.Ruling,
		Arbitrator:          info.Arbitrator,
		ArbitratorExtraData: info.ArbitratorExtraData,
	}, nil
}

func (l *Loader) loadRounds(ctx context.Context, id string, request, count int) ([]*domain.Round, error) {
	rounds := make([]*domain.Round, count)
	group, groupCtx := errgroup.WithContext(ctx)
	for index := 0; index < count; index++ {
		group.Go(func() error {
			info, err := l.list.RoundInfo(groupCtx, id, request, index)
			if err != nil {
				return errors.Wrapf(err, "getting round [%d]", index)
			}
			rounds[index] = convertRound(info)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return rounds, nil
}

func convertRound(info *registry.RoundInfo) *domain.Round {
	paidFees := make([]float64, len(info.PaidFees))
	for i, fee := range info.PaidFees {
		paidFees[i] = weiToEth(fee)
	}
	return &domain.Round{
		Appealed:   info.Appealed,
		PaidFees:   paidFees,
		HasPaid:    info.HasPaid[:],
		FeeRewards: info.FeeRewards.String(),
	}
}

var weiPerEth = big.NewFloat(1e18)

func weiToEth(wei *big.Int) float64 {
	eth, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEth).Float64()
	return eth
}
