package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wricardo/mcp-training/yardsim/game/engine"
)

const namespace = "yardsim"

// Collector exports yard outcomes to Prometheus. It implements
// service.Metrics.
type Collector struct {
	registry *prometheus.Registry

	spawns      *prometheus.CounterVec
	checkouts   *prometheus.CounterVec
	reassigns   *prometheus.CounterVec
	stalls      *prometheus.CounterVec
	maneuver    *prometheus.HistogramVec
	occupied    *prometheus.GaugeVec
	reserved    *prometheus.GaugeVec
	inFlight    *prometheus.GaugeVec
	sessionTick *prometheus.GaugeVec

	mu    sync.Mutex
	zones map[string]string // session id -> zone
}

// NewCollector creates a collector on its own registry, with the Go runtime
// and process collectors attached
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		zones:    make(map[string]string),
		spawns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spawn_attempts_total",
			Help:      "Truck spawn attempts by zone and result.",
		}, []string{"zone", "result"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Containers checked out of the yard.",
		}, []string{"zone"}),
		reassigns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reassignments_total",
			Help:      "Slot reassignment requests by outcome.",
		}, []string{"zone", "accepted"}),
		stalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stalled_trucks_total",
			Help:      "Trucks flagged for making no progress in a phase.",
		}, []string{"zone"}),
		maneuver: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "maneuver_ticks",
			Help:      "Ticks from gate check-in to parked.",
			Buckets:   prometheus.ExponentialBuckets(60, 2, 8),
		}, []string{"zone"}),
		occupied: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slots_occupied",
			Help:      "Slots holding a parked truck.",
		}, []string{"session", "zone"}),
		reserved: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slots_reserved",
			Help:      "Slots reserved by an in-flight truck.",
		}, []string{"session", "zone"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trucks_in_flight",
			Help:      "Trucks between the gate and their slot.",
		}, []string{"session", "zone"}),
		sessionTick: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_tick",
			Help:      "Current simulation tick of a session.",
		}, []string{"session", "zone"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.spawns, c.checkouts, c.reassigns, c.stalls, c.maneuver,
		c.occupied, c.reserved, c.inFlight, c.sessionTick,
	)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) SpawnAttempt(zone, result string) {
	c.spawns.WithLabelValues(zone, result).Inc()
}

func (c *Collector) CheckedOut(zone string) {
	c.checkouts.WithLabelValues(zone).Inc()
}

func (c *Collector) Parked(zone string, maneuverTicks uint64) {
	c.maneuver.WithLabelValues(zone).Observe(float64(maneuverTicks))
}

func (c *Collector) Reassigned(zone string, accepted bool) {
	label := "false"
	if accepted {
		label = "true"
	}
	c.reassigns.WithLabelValues(zone, label).Inc()
}

func (c *Collector) Stalled(zone string) {
	c.stalls.WithLabelValues(zone).Inc()
}

// Observe records the occupancy gauges of one session
func (c *Collector) Observe(sessionID, zone string, stats *engine.Statistics) {
	if stats == nil {
		return
	}
	c.mu.Lock()
	c.zones[sessionID] = zone
	c.mu.Unlock()

	c.occupied.WithLabelValues(sessionID, zone).Set(float64(stats.OccupiedSlots))
	c.reserved.WithLabelValues(sessionID, zone).Set(float64(stats.ReservedSlots))
	c.inFlight.WithLabelValues(sessionID, zone).Set(float64(stats.InFlight))
	c.sessionTick.WithLabelValues(sessionID, zone).Set(float64(stats.Tick))
}

// Forget drops the gauges of a deleted session
func (c *Collector) Forget(sessionID string) {
	c.mu.Lock()
	zone, ok := c.zones[sessionID]
	delete(c.zones, sessionID)
	c.mu.Unlock()
	if !ok {
		return
	}

	for _, g := range []*prometheus.GaugeVec{c.occupied, c.reserved, c.inFlight, c.sessionTick} {
		g.DeleteLabelValues(sessionID, zone)
	}
}
