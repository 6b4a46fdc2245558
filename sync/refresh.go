package sync

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kleros/t2cr-dashboard-backend/domain"
)

// ItemLoader loads the full item state of one curated-list contract.
type ItemLoader interface {
	ContractAddress() string
	LoadItems(ctx context.Context) ([]*domain.Item, error)
}

// TransactionLoader loads the classified transaction history of one contract.
type TransactionLoader interface {
	FetchTransactions(ctx context.Context, contractAddress string) ([]domain.Transaction, error)
}

// Publisher stores a published artifact under a cache key.
type Publisher interface {
	Set(ctx context.Context, key, value string) error
}

// RefreshRecorder persists the unix time of the last completed refresh.
type RefreshRecorder interface {
	SetLastRefresh(network string, unixTime int64) error
}

// MetricsRecorder records refresh cycle outcomes.
type MetricsRecorder interface {
	SetRefreshed(network string, duration time.Duration)
	IncRefreshErrors(network string)
	SetItemCounts(network string, tokens, addresses int)
}

// Refresher runs the full aggregation pipeline of one network and replaces the
// network's published snapshot on success. A failed cycle leaves the previous
// snapshot in the cache untouched.
type Refresher struct {
	network      string
	tokens       ItemLoader
	badges       []ItemLoader
	transactions TransactionLoader
	cache        Publisher
	store        RefreshRecorder
	metrics      MetricsRecorder
	logger       *zap.SugaredLogger
	timeout      time.Duration
	inFlight     singleflight.Group
}

// NewRefresher creates the refresher of one network. timeout bounds a whole
// refresh cycle; zero means unbounded.
func NewRefresher(network string, tokens ItemLoader, badges []ItemLoader, transactions TransactionLoader,
	cache Publisher, store RefreshRecorder, metrics MetricsRecorder, logger *zap.SugaredLogger, timeout time.Duration) *Refresher {
	return &Refresher{
		network:      network,
		tokens:       tokens,
		badges:       badges,
		transactions: transactions,
		cache:        cache,
		store:        store,
		metrics:      metrics,
		logger:       logger,
		timeout:      timeout,
	}
}

// Run refreshes once immediately, then on every interval tick until the
// context is cancelled.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	r.refreshAndLog(ctx)

	ticker := time.Tick(interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Infow("stopping refresh loop", "network", r.network)
			return
		case <-ticker:
			r.refreshAndLog(ctx)
		}
	}
}

func (r *Refresher) refreshAndLog(ctx context.Context) {
	// singleflight collapses a tick that fires while the previous cycle is
	// still running into that cycle instead of starting a second one.
	_, err, _ := r.inFlight.Do(r.network, func() (interface{}, error) {
		return nil, r.Refresh(ctx)
	})
	if err != nil {
		r.metrics.IncRefreshErrors(r.network)
		r.logger.Errorw("refresh failed; keeping previous snapshot", "network", r.network, "error", err)
	}
}

// Refresh performs one full cycle: concurrent loads, aggregation, publication.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()
	r.logger.Infow("starting refresh", "network", r.network)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var tokens []*domain.Item
	var tokenTransactions []domain.Transaction
	badgeItems := make([][]*domain.Item, len(r.badges))
	badgeTransactions := make([][]domain.Transaction, len(r.badges))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		if tokens, err = r.tokens.LoadItems(groupCtx); err != nil {
			return errors.Wrap(err, "loading tokens")
		}
		return nil
	})
	group.Go(func() error {
		var err error
		if tokenTransactions, err = r.transactions.FetchTransactions(groupCtx, r.tokens.ContractAddress()); err != nil {
			return errors.Wrap(err, "fetching token transactions")
		}
		return nil
	})
	for index, badge := range r.badges {
		group.Go(func() error {
			var err error
			if badgeItems[index], err = badge.LoadItems(groupCtx); err != nil {
				return errors.Wrapf(err, "loading addresses of [%s]", badge.ContractAddress())
			}
			return nil
		})
		group.Go(func() error {
			var err error
			if badgeTransactions[index], err = r.transactions.FetchTransactions(groupCtx, badge.ContractAddress()); err != nil {
				return errors.Wrapf(err, "fetching transactions of [%s]", badge.ContractAddress())
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	tokenAggregate := AggregateByStatus(tokens, tokenTransactions)

	badgeAggregates := make([]*FamilyAggregate, len(r.badges))
	var allBadgeTransactions []domain.Transaction
	addressCount := 0
	for index := range r.badges {
		badgeAggregates[index] = AggregateByStatus(badgeItems[index], badgeTransactions[index])
		allBadgeTransactions = append(allBadgeTransactions, badgeTransactions[index]...)
		addressCount += len(badgeItems[index])
	}
	addressAggregate := MergeAggregates(badgeAggregates...)

	crowdfundingList := BuildCrowdfundingList(tokenAggregate, addressAggregate, tokens)
	depositData := BuildDepositData(tokenTransactions, allBadgeTransactions)

	if err := r.publish(ctx, "tokens-by-status", tokenAggregate.Counts); err != nil {
		return err
	}
	if err := r.publish(ctx, "addresses-by-status", addressAggregate.Counts); err != nil {
		return err
	}
	if err := r.publish(ctx, "crowdfunding-tokens", crowdfundingList); err != nil {
		return err
	}
	if err := r.publish(ctx, "deposit-data", depositData); err != nil {
		return err
	}

	if err := r.store.SetLastRefresh(r.network, time.Now().Unix()); err != nil {
		r.logger.Warnw("recording last refresh time failed", "network", r.network, "error", err)
	}
	r.metrics.SetRefreshed(r.network, time.Since(start))
	r.metrics.SetItemCounts(r.network, len(tokens), addressCount)
	r.logger.Infow("finished refresh", "network", r.network,
		"tokens", len(tokens), "addresses", addressCount, "took", time.Since(start))
	return nil
}

func (r *Refresher) publish(ctx context.Context, artifact string, value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encoding [%s]", artifact)
	}
	key := r.network + "_" + artifact
	if err := r.cache.Set(ctx, key, string(encoded)); err != nil {
		return errors.Wrapf(err, "publishing [%s]", key)
	}
	return nil
}

// PriceSource fetches the current ETH/USD price.
type PriceSource interface {
	EthPrice(ctx context.Context) (float64, error)
}

// PriceMetricsRecorder records the last fetched price.
type PriceMetricsRecorder interface {
	SetEthPrice(price float64)
}

// PriceRefresher publishes the ETH/USD price to the global cache key on its
// own schedule, independent of the per-network pipelines.
type PriceRefresher struct {
	source  PriceSource
	cache   Publisher
	metrics PriceMetricsRecorder
	logger  *zap.SugaredLogger
}

func NewPriceRefresher(source PriceSource, cache Publisher, metrics PriceMetricsRecorder, logger *zap.SugaredLogger) *PriceRefresher {
	return &PriceRefresher{source: source, cache: cache, metrics: metrics, logger: logger}
}

func (p *PriceRefresher) Run(ctx context.Context, interval time.Duration) {
	if err := p.Refresh(ctx); err != nil {
		p.logger.Errorw("price refresh failed", "error", err)
	}

	ticker := time.Tick(interval)
	for {
		select {
		case <-ctx.Done():
			p.logger.Infow("stopping price refresh loop")
			return
		case <-ticker:
			if err := p.Refresh(ctx); err != nil {
				p.logger.Errorw("price refresh failed", "error", err)
			}
		}
	}
}

func (p *PriceRefresher) Refresh(ctx context.Context) error {
	price, err := p.source.EthPrice(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching eth price")
	}
	if err := p.cache.Set(ctx, "eth-price", strconv.FormatFloat(price, 'f', -1, 64)); err != nil {
		return errors.Wrap(err, "publishing eth price")
	}
	p.metrics.SetEthPrice(price)
	return nil
}
