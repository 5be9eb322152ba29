// Package metrics turns simulation events into prometheus series. Each run
// gets its own registry so concurrent runs never share collectors.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/vsinha/supplysim/pkg/infrastructure/events"
)

const namespace = "supplysim"

// Recorder is an events.EventHandler that maintains run metrics
type Recorder struct {
	registry *prometheus.Registry

	orders           *prometheus.CounterVec
	unitsRequested   prometheus.Counter
	unitsShipped     prometheus.Counter
	unitsLost        prometheus.Counter
	unitsRecovered   prometheus.Counter
	backlogEntered   prometheus.Counter
	backlogWaitDays  prometheus.Histogram
	purchaseOrders   *prometheus.CounterVec
	purchaseReceived *prometheus.CounterVec
	dispatches       *prometheus.CounterVec
	occupancy        prometheus.Histogram
	unassigned       prometheus.Counter
	alerts           *prometheus.CounterVec

	day                prometheus.Gauge
	fillRate           prometheus.Gauge
	otif               prometheus.Gauge
	fleetUtilization   prometheus.Gauge
	pickingUtilization prometheus.Gauge
	backlogUnits       prometheus.Gauge
	stock              *prometheus.GaugeVec
}

var _ events.EventHandler = (*Recorder)(nil)

// NewRecorder creates a recorder with a fresh registry. Constant labels such
// as the scenario are attached to every series.
func NewRecorder(constLabels prometheus.Labels) *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: namespace, Name: name, Help: help, ConstLabels: constLabels}
	}

	r.orders = prometheus.NewCounterVec(prometheus.CounterOpts(opts("orders_total", "Customer orders processed by fulfilment status.")), []string{"status"})
	r.unitsRequested = prometheus.NewCounter(prometheus.CounterOpts(opts("units_requested_total", "Units requested by new orders.")))
	r.unitsShipped = prometheus.NewCounter(prometheus.CounterOpts(opts("units_shipped_total", "Units shipped to new orders on the day placed.")))
	r.unitsLost = prometheus.NewCounter(prometheus.CounterOpts(opts("units_lost_total", "Units lost to customers who would not wait.")))
	r.unitsRecovered = prometheus.NewCounter(prometheus.CounterOpts(opts("units_recovered_total", "Backlog units shipped on a later day.")))
	r.backlogEntered = prometheus.NewCounter(prometheus.CounterOpts(opts("backlog_entered_units_total", "Units that entered the backlog.")))
	r.backlogWaitDays = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   namespace,
		Name:        "backlog_wait_days",
		Help:        "Days between a backlog entry and its recovery.",
		ConstLabels: constLabels,
		Buckets:     []float64{1, 2, 3, 5, 7, 10, 14, 21},
	})
	r.purchaseOrders = prometheus.NewCounterVec(prometheus.CounterOpts(opts("purchase_orders_created_total", "Replenishment orders raised.")), []string{"product"})
	r.purchaseReceived = prometheus.NewCounterVec(prometheus.CounterOpts(opts("purchase_units_received_total", "Units received from suppliers.")), []string{"product"})
	r.dispatches = prometheus.NewCounterVec(prometheus.CounterOpts(opts("dispatches_total", "Vehicle trips by zone.")), []string{"zone"})
	r.occupancy = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   namespace,
		Name:        "vehicle_occupancy_pct",
		Help:        "Occupancy of each vehicle trip.",
		ConstLabels: constLabels,
		Buckets:     prometheus.LinearBuckets(10, 10, 10),
	})
	r.unassigned = prometheus.NewCounter(prometheus.CounterOpts(opts("unassigned_orders_total", "Dispatch-ready orders no vehicle could carry.")))
	r.alerts = prometheus.NewCounterVec(prometheus.CounterOpts(opts("alerts_total", "Alerts raised by kind and severity.")), []string{"kind", "severity"})

	r.day = prometheus.NewGauge(prometheus.GaugeOpts(opts("simulated_day", "Last simulated day closed.")))
	r.fillRate = prometheus.NewGauge(prometheus.GaugeOpts(opts("fill_rate_pct", "Fill rate of the last closed day.")))
	r.otif = prometheus.NewGauge(prometheus.GaugeOpts(opts("otif_pct", "On time in full rate of the last closed day.")))
	r.fleetUtilization = prometheus.NewGauge(prometheus.GaugeOpts(opts("fleet_utilization_pct", "Mean vehicle occupancy of the last closed day.")))
	r.pickingUtilization = prometheus.NewGauge(prometheus.GaugeOpts(opts("picking_utilization_pct", "Delivered units over picking capacity for the last closed day.")))
	r.backlogUnits = prometheus.NewGauge(prometheus.GaugeOpts(opts("backlog_units", "Units pending in the backlog.")))
	r.stock = prometheus.NewGaugeVec(prometheus.GaugeOpts(opts("stock_units", "Inventory counters by product.")), []string{"product", "counter"})

	r.registry.MustRegister(
		r.orders, r.unitsRequested, r.unitsShipped, r.unitsLost, r.unitsRecovered,
		r.backlogEntered, r.backlogWaitDays, r.purchaseOrders, r.purchaseReceived,
		r.dispatches, r.occupancy, r.unassigned, r.alerts,
		r.day, r.fillRate, r.otif, r.fleetUtilization, r.pickingUtilization,
		r.backlogUnits, r.stock,
	)
	return r
}

// Registry returns the recorder's registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Subscribe registers the recorder for every simulation event on the store
func (r *Recorder) Subscribe(store events.EventStore) error {
	return store.Subscribe(events.AllEventTypes, r)
}

func (r *Recorder) CanHandle(eventType string) bool {
	for _, t := range events.AllEventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

func (r *Recorder) Handle(event events.Event) error {
	switch data := event.Data().(type) {
	case events.OrderDispatched:
		r.orders.WithLabelValues(data.Status.String()).Inc()
		r.unitsRequested.Add(float64(data.Requested))
		r.unitsShipped.Add(float64(data.Shipped))
	case events.SaleLost:
		r.unitsLost.Add(float64(data.LostSale.Lost))
	case events.BacklogEntered:
		r.backlogEntered.Add(float64(data.Event.Quantity))
	case events.BacklogRecovered:
		r.unitsRecovered.Add(float64(data.Quantity))
		r.backlogWaitDays.Observe(float64(data.WaitDays))
	case events.PurchaseOrderCreated:
		r.purchaseOrders.WithLabelValues(string(data.PurchaseOrder.Product)).Inc()
	case events.PurchaseOrderReceived:
		r.purchaseReceived.WithLabelValues(string(data.PurchaseOrder.Product)).Add(float64(data.PurchaseOrder.Quantity))
	case events.VehicleDispatched:
		r.dispatches.WithLabelValues(string(data.Dispatch.Zone)).Inc()
		r.occupancy.Observe(data.Dispatch.OccupancyPct)
	case events.OrderUnassigned:
		r.unassigned.Inc()
	case events.AlertRaised:
		r.alerts.WithLabelValues(data.Kind, data.Severity).Inc()
	case events.DayClosed:
		r.day.Set(float64(data.Day))
		r.fillRate.Set(data.FillRatePct)
		r.otif.Set(data.OTIFPct)
		r.fleetUtilization.Set(data.FleetUtilizationPct)
		r.pickingUtilization.Set(data.PickingUtilizationPct)
		r.backlogUnits.Set(float64(data.BacklogUnits))
		for _, pos := range data.Positions {
			product := string(pos.Product)
			r.stock.WithLabelValues(product, "physical").Set(float64(pos.Physical))
			r.stock.WithLabelValues(product, "committed").Set(float64(pos.Committed))
			r.stock.WithLabelValues(product, "in_transit").Set(float64(pos.InTransit))
		}
	default:
		return fmt.Errorf("unexpected payload %T for %s", data, event.Type())
	}
	return nil
}

// WriteText writes every gathered metric family in the prometheus text format
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
