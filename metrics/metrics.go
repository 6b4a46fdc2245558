package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	lastRefreshGauge     *prometheus.GaugeVec
	refreshDurationGauge *prometheus.GaugeVec
	refreshErrorsCounter *prometheus.CounterVec
	itemsGauge           *prometheus.GaugeVec
	ethPriceGauge        prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	m := Metrics{
		lastRefreshGauge: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_last_refresh_time", namespace),
			Help: "Unix time of the last completed refresh cycle",
		}, []string{"network"}),
		refreshDurationGauge: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_refresh_duration_seconds", namespace),
			Help: "Duration of the last completed refresh cycle",
		}, []string{"network"}),
		refreshErrorsCounter: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_refresh_errors_total", namespace),
			Help: "Number of failed refresh cycles",
		}, []string{"network"}),
		itemsGauge: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_items_total", namespace),
			Help: "Number of listed items per entity family",
		}, []string{"network", "family"}),
		ethPriceGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_eth_price_usd", namespace),
			Help: "The last fetched ETH/USD price",
		}),
	}
	return &m
}

func (metrics *Metrics) SetRefreshed(network string, duration time.Duration) {
	metrics.lastRefreshGauge.WithLabelValues(network).SetToCurrentTime()
	metrics.refreshDurationGauge.WithLabelValues(network).Set(duration.Seconds())
}

func (metrics *Metrics) IncRefreshErrors(network string) {
	metrics.refreshErrorsCounter.WithLabelValues(network).Inc()
}

func (metrics *Metrics) SetItemCounts(network string, tokens, addresses int) {
	metrics.itemsGauge.WithLabelValues(network, "tokens").Set(float64(tokens))
	metrics.itemsGauge.WithLabelValues(network, "addresses").Set(float64(addresses))
}

func (metrics *Metrics) SetEthPrice(price float64) {
	metrics.ethPriceGauge.Set(price)
}
