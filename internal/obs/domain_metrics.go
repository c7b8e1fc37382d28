package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// TaxCalculationsTotal counts single-item calculation outcomes by
	// transaction classification.
	TaxCalculationsTotal *prometheus.CounterVec
	// TaxCalculationDuration records single-item calculation latency in milliseconds.
	TaxCalculationDuration prometheus.Histogram
	// TaxBulkItemsTotal counts bulk line-item outcomes.
	TaxBulkItemsTotal *prometheus.CounterVec
	// TaxConfigCacheTotal counts resolved-configuration cache hits and misses.
	TaxConfigCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		TaxCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_calculations_total",
			Help:      "Count of tax calculation outcomes by classification.",
		}, []string{"classification", "result"})
		TaxCalculationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tax_calculation_duration_ms",
			Help:      "Latency of single tax calculations in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		})
		TaxBulkItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_bulk_items_total",
			Help:      "Count of bulk calculation line items by outcome.",
		}, []string{"result"})
		TaxConfigCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_config_cache_total",
			Help:      "Resolved tax configuration cache lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, TaxCalculationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				TaxCalculationsTotal = v
			}
		})
		mustRegisterCollector(reg, TaxCalculationDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				TaxCalculationDuration = v
			}
		})
		mustRegisterCollector(reg, TaxBulkItemsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				TaxBulkItemsTotal = v
			}
		})
		mustRegisterCollector(reg, TaxConfigCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				TaxConfigCacheTotal = v
			}
		})
	})
}

// ObserveCalculation records one calculation outcome. Safe to call before
// metrics registration.
func ObserveCalculation(classification, result string) {
	if TaxCalculationsTotal != nil {
		TaxCalculationsTotal.WithLabelValues(classification, result).Inc()
	}
}

// ObserveBulkItem records one bulk line-item outcome.
func ObserveBulkItem(result string) {
	if TaxBulkItemsTotal != nil {
		TaxBulkItemsTotal.WithLabelValues(result).Inc()
	}
}

// ObserveConfigCache records a configuration cache hit or miss.
func ObserveConfigCache(result string) {
	if TaxConfigCacheTotal != nil {
		TaxConfigCacheTotal.WithLabelValues(result).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
