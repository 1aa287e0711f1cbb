// Package metrics exposes presale counters and pool gauges.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"presaleLedger/internal/model"
)

// Metrics owns a private registry so one-shot runs can export it as a textfile.
type Metrics struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	tokenUnits   *prometheus.CounterVec
	tokenAmount  prometheus.Gauge
	quoteAmount  prometheus.Gauge
	tokenPrice   prometheus.Gauge
	stakedAmount prometheus.Gauge
	payoutsOwed  prometheus.Gauge
	saleStatus   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presale_operations_total",
				Help: "Number of presale operations by result.",
			},
			[]string{"op", "result"},
		),
		tokenUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presale_token_units_total",
				Help: "Token units moved by committed operations.",
			},
			[]string{"op"},
		),
		tokenAmount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "presale_pool_token_amount",
			Help: "Unsold token units in the pool.",
		}),
		quoteAmount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "presale_pool_quote_amount",
			Help: "Quote units collected by the pool.",
		}),
		tokenPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "presale_pool_token_price",
			Help: "Current token price in quote base units.",
		}),
		stakedAmount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "presale_pool_staked_amount",
			Help: "Token units locked in active stakes.",
		}),
		payoutsOwed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "presale_pool_payouts_owed",
			Help: "Token units owed to active stakes at maturity.",
		}),
		saleStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "presale_pool_live",
			Help: "1 if trading is enabled, otherwise 0.",
		}),
	}
	m.registry.MustRegister(
		m.operations,
		m.tokenUnits,
		m.tokenAmount,
		m.quoteAmount,
		m.tokenPrice,
		m.stakedAmount,
		m.payoutsOwed,
		m.saleStatus,
	)
	return m
}

// Registry returns the registry holding every presale collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOperation counts one operation outcome.
func (m *Metrics) ObserveOperation(op, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, result).Inc()
}

// ObserveTokens adds units moved by a committed operation.
func (m *Metrics) ObserveTokens(op string, units uint64) {
	if m == nil || units == 0 {
		return
	}
	m.tokenUnits.WithLabelValues(op).Add(float64(units))
}

// ObservePool publishes a pool snapshot.
func (m *Metrics) ObservePool(pool model.Pool) {
	if m == nil {
		return
	}
	m.tokenAmount.Set(float64(pool.TokenAmount))
	m.quoteAmount.Set(float64(pool.QuoteAmount))
	m.tokenPrice.Set(float64(pool.TokenPrice))
	m.stakedAmount.Set(float64(pool.StakedAmount))
	m.payoutsOwed.Set(float64(pool.PayoutsOwed))
	if pool.Status {
		m.saleStatus.Set(1)
	} else {
		m.saleStatus.Set(0)
	}
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
