// Package monitoring wires Prometheus, OpenTelemetry and the ops server
package monitoring

import (
	"context"

	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/recipe"
	"github.com/pantrysense/v2/internal/domain/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewRegistry creates the registry every collector of the process registers on
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// EventMetrics turns domain events into Prometheus series
type EventMetrics struct {
	snapshotsTotal  prometheus.Counter
	lastSnapshot    prometheus.Gauge
	itemsTracked    prometheus.Gauge
	lowStockItems   prometheus.Gauge
	lowStockChanges prometheus.Counter
	feedFailures    prometheus.Counter
	recipeBatches   *prometheus.CounterVec
	recipesPerBatch prometheus.Histogram
}

// NewEventMetrics creates the domain metrics on reg
func NewEventMetrics(reg prometheus.Registerer) *EventMetrics {
	factory := promauto.With(reg)
	return &EventMetrics{
		snapshotsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pantrysense_inventory_snapshots_total",
			Help: "Inventory snapshots built from the push channel",
		}),
		lastSnapshot: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pantrysense_inventory_last_snapshot_timestamp_seconds",
			Help: "Unix time of the latest inventory snapshot",
		}),
		itemsTracked: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pantrysense_inventory_items",
			Help: "Items in the current inventory snapshot",
		}),
		lowStockItems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pantrysense_inventory_low_stock_items",
			Help: "Items below their threshold in the current snapshot",
		}),
		lowStockChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "pantrysense_inventory_low_stock_changes_total",
			Help: "Times the set of low-stock items changed",
		}),
		feedFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "pantrysense_inventory_feed_failures_total",
			Help: "Push channel updates that carried no data or a transport error",
		}),
		recipeBatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pantrysense_recipe_batches_total",
			Help: "Recipe batches resolved, by source",
		}, []string{"source"}),
		recipesPerBatch: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pantrysense_recipes_per_batch",
			Help:    "Recipes in a resolved batch",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		}),
	}
}

// Register subscribes the metrics to the dispatcher
func (m *EventMetrics) Register(d shared.EventDispatcher) {
	d.Register(inventory.EventSnapshotReplaced, m.onSnapshotReplaced)
	d.Register(inventory.EventLowStockChanged, m.onLowStockChanged)
	d.Register(inventory.EventFeedFailed, m.onFeedFailed)
	d.Register(recipe.EventBatchGenerated, m.onBatchGenerated)
}

func (m *EventMetrics) onSnapshotReplaced(_ context.Context, event shared.DomainEvent) error {
	e, ok := event.(inventory.SnapshotReplacedEvent)
	if !ok {
		return nil
	}
	m.snapshotsTotal.Inc()
	m.lastSnapshot.Set(float64(e.OccurredAt().Unix()))
	m.itemsTracked.Set(float64(e.ItemCount))
	m.lowStockItems.Set(float64(e.LowStock))
	return nil
}

func (m *EventMetrics) onLowStockChanged(context.Context, shared.DomainEvent) error {
	m.lowStockChanges.Inc()
	return nil
}

func (m *EventMetrics) onFeedFailed(context.Context, shared.DomainEvent) error {
	m.feedFailures.Inc()
	return nil
}

func (m *EventMetrics) onBatchGenerated(_ context.Context, event shared.DomainEvent) error {
	e, ok := event.(recipe.BatchGeneratedEvent)
	if !ok {
		return nil
	}
	m.recipeBatches.WithLabelValues(string(e.Source)).Inc()
	m.recipesPerBatch.Observe(float64(e.Count))
	return nil
}
