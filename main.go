package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jellydator/ttlcache/v3"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kleros/t2cr-dashboard-backend/api"
	"github.com/kleros/t2cr-dashboard-backend/arbitrator"
	"github.com/kleros/t2cr-dashboard-backend/cache"
	"github.com/kleros/t2cr-dashboard-backend/coingecko"
	"github.com/kleros/t2cr-dashboard-backend/db"
	"github.com/kleros/t2cr-dashboard-backend/domain"
	"github.com/kleros/t2cr-dashboard-backend/etherscan"
	"github.com/kleros/t2cr-dashboard-backend/metrics"
	"github.com/kleros/t2cr-dashboard-backend/registry"
	"github.com/kleros/t2cr-dashboard-backend/sync"
)

const envPrefix = "T2CR_DASHBOARD"

type networkConfig struct {
	Enabled            bool
	ProviderUrl        string
	EtherscanUrl       string
	TokenListContract  string
	BadgeContracts     []string
	ArbitratorContract string
	RefreshInterval    time.Duration
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("main: exited with error: %s", err.Error())
	}
}

func run() error {
	log.SetOutput(os.Stdout) // default is stderr

	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	var cfg struct {
		Server struct {
			HttpHost        string `conf:"default:0.0.0.0:4000"`
			MetricsHttpHost string `conf:"default:0.0.0.0:9999"`
			ReadTimeout     time.Duration `conf:"default:10s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
		}
		Redis struct {
			Addr     string `conf:"default:localhost:6379"`
			Password string `conf:"optional,mask"`
		}
		Store struct {
			Folder string `conf:"default:store"`
		}
		Etherscan struct {
			ApiKey  string        `conf:"optional,mask"`
			Timeout time.Duration `conf:"default:30s"`
		}
		Coingecko struct {
			Url                  string        `conf:"default:https://api.coingecko.com"`
			Timeout              time.Duration `conf:"default:10s"`
			PriceRefreshInterval time.Duration `conf:"default:10m"`
		}
		Sync struct {
			MetricsNamespace   string        `conf:"default:t2cr-dashboard"`
			MaxConcurrentLoads int           `conf:"default:16"`
			RefreshTimeout     time.Duration `conf:"default:30m"`
			DisputeCacheTtl    time.Duration `conf:"default:5m"`
		}
		Main struct {
			Enabled            bool          `conf:"default:true"`
			ProviderUrl        string        `conf:"default:https://mainnet.infura.io/v3/changeme"`
			EtherscanUrl       string        `conf:"default:https://api.etherscan.io/api"`
			TokenListContract  string        `conf:"required"`
			BadgeContracts     []string      `conf:"required"`
			ArbitratorContract string        `conf:"required"`
			RefreshInterval    time.Duration `conf:"default:90m"`
		}
		Kovan struct {
			Enabled            bool          `conf:"default:false"`
			ProviderUrl        string        `conf:"default:https://kovan.infura.io/v3/changeme"`
			EtherscanUrl       string        `conf:"default:https://api-kovan.etherscan.io/api"`
			TokenListContract  string        `conf:"optional"`
			BadgeContracts     []string      `conf:"optional"`
			ArbitratorContract string        `conf:"optional"`
			RefreshInterval    time.Duration `conf:"default:6h"`
		}
	}

	// load config
	if err := conf.Parse(os.Args[1:], envPrefix, &cfg); err != nil {
		switch {
		case errors.Is(err, conf.ErrHelpWanted):
			usage, err := conf.Usage(envPrefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil
		case errors.Is(err, conf.ErrVersionWanted):
			version, err := conf.VersionString(envPrefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config version")
			}
			fmt.Println(version)
			return nil
		}
		return errors.Wrap(err, "parsing config")
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return errors.Wrap(err, "generating config for output")
	}
	log.Printf("main: Config :\n%v\n", out)

	logger, err := newLogger()
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	defer logger.Sync()

	store, err := db.NewPebbleStore(cfg.Store.Folder)
	if err != nil {
		return errors.Wrap(err, "creating db")
	}
	defer store.Close()

	cacheStore := cache.NewStore(cfg.Redis.Addr, cfg.Redis.Password)
	defer cacheStore.Close()

	m := metrics.NewMetrics(cfg.Sync.MetricsNamespace)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	networks := []networkConfig{
		{
			Enabled:            cfg.Main.Enabled,
			ProviderUrl:        cfg.Main.ProviderUrl,
			EtherscanUrl:       cfg.Main.EtherscanUrl,
			TokenListContract:  cfg.Main.TokenListContract,
			BadgeContracts:     cfg.Main.BadgeContracts,
			ArbitratorContract: cfg.Main.ArbitratorContract,
			RefreshInterval:    cfg.Main.RefreshInterval,
		},
		{
			Enabled:            cfg.Kovan.Enabled,
			ProviderUrl:        cfg.Kovan.ProviderUrl,
			EtherscanUrl:       cfg.Kovan.EtherscanUrl,
			TokenListContract:  cfg.Kovan.TokenListContract,
			BadgeContracts:     cfg.Kovan.BadgeContracts,
			ArbitratorContract: cfg.Kovan.ArbitratorContract,
			RefreshInterval:    cfg.Kovan.RefreshInterval,
		},
	}
	networkNames := []string{"main", "kovan"}

	var enabledNetworks []string
	for index, network := range networks {
		name := networkNames[index]
		if !network.Enabled {
			log.Printf("[WARN] main: network [%s] disabled", name)
			continue
		}
		enabledNetworks = append(enabledNetworks, name)

		refresher, err := newNetworkRefresher(name, network, cfg.Etherscan.ApiKey, cfg.Etherscan.Timeout,
			cfg.Sync.MaxConcurrentLoads, cfg.Sync.DisputeCacheTtl, cfg.Sync.RefreshTimeout,
			cacheStore, store, m, logger)
		if err != nil {
			return errors.Wrapf(err, "creating refresher for [%s]", name)
		}
		go refresher.Run(ctx, network.RefreshInterval)
	}
	if len(enabledNetworks) == 0 {
		return errors.New("no network enabled")
	}

	priceSource := coingecko.NewClient(cfg.Coingecko.Url, cfg.Coingecko.Timeout)
	priceRefresher := sync.NewPriceRefresher(priceSource, cacheStore, m, logger)
	go priceRefresher.Run(ctx, cfg.Coingecko.PriceRefreshInterval)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	mux := http.NewServeMux()
	api.NewHandler(cacheStore, store, enabledNetworks).RegisterRoutes(mux)

	serverError := make(chan error, 1)
	server := &http.Server{
		Addr:         cfg.Server.HttpHost,
		Handler:      api.CORS(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("main: Starting api server on addr [%s].", cfg.Server.HttpHost)
		serverError <- server.ListenAndServe()
	}()

	metricsServerError := make(chan error, 1)
	go func() {
		log.Printf("main: Starting metrics server on addr [%s].", cfg.Server.MetricsHttpHost)
		http.Handle("/metrics", promhttp.Handler())
		metricsServerError <- http.ListenAndServe(cfg.Server.MetricsHttpHost, nil)
	}()

	log.Println("main: Service started.")

	for {
		select {
		case <-shutdown:
			log.Println("main: Received shutdown signal, shutting down...")
			return nil
		case err := <-serverError:
			return errors.Wrap(err, "[ERROR] starting api endpoint.")
		case err := <-metricsServerError:
			return errors.Wrap(err, "[ERROR] starting metrics endpoint.")
		}
	}
}

func newNetworkRefresher(name string, network networkConfig, etherscanApiKey string, etherscanTimeout time.Duration,
	maxConcurrentLoads int, disputeCacheTtl, refreshTimeout time.Duration,
	cacheStore *cache.Store, store *db.PebbleStore, m *metrics.Metrics, logger *zap.SugaredLogger) (*sync.Refresher, error) {

	ethClient, err := ethclient.Dial(network.ProviderUrl)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to provider [%s]", network.ProviderUrl)
	}
	registryClient := registry.NewClient(ethClient)

	disputeCache := ttlcache.New[uint64, domain.DisputeStatus](
		ttlcache.WithTTL[uint64, domain.DisputeStatus](disputeCacheTtl),
	)
	go disputeCache.Start() // starts automatic expired item deletion
	disputes := arbitrator.NewClient(ethClient, network.ArbitratorContract, disputeCache)

	tokenLoader := sync.NewTokenLoader(registry.NewTokenList(registryClient, network.TokenListContract), disputes, maxConcurrentLoads)
	badgeLoaders := make([]sync.ItemLoader, 0, len(network.BadgeContracts))
	for _, contract := range network.BadgeContracts {
		badgeLoaders = append(badgeLoaders,
			sync.NewAddressLoader(registry.NewAddressList(registryClient, contract), disputes, maxConcurrentLoads))
	}

	transactionSource := etherscan.NewClient(network.EtherscanUrl, etherscanApiKey, etherscanTimeout)
	fetcher := sync.NewTransactionFetcher(transactionSource, registry.NewDecoder(), 0)

	return sync.NewRefresher(name, tokenLoader, badgeLoaders, fetcher, cacheStore, store, m, logger, refreshTimeout), nil
}

func newLogger() (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	logger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "creating logger")
	}
	return logger.Sugar(), nil
}
