// Package metrics exports yard simulation outcomes to Prometheus.
//
// Collector implements service.Metrics: counters for spawn attempts (by
// result), check-outs, reassignments and stalls, a histogram of gate-to-park
// maneuver ticks, and per-session occupancy gauges. It owns a private
// registry so tests and multiple servers never collide on the global one.
//
//	collector := metrics.NewCollector()
//	yard := service.NewYardService(sessions, configs, service.WithMetrics(collector))
//	router.Handle("/metrics", collector.Handler())
package metrics
