package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry       *prometheus.Registry
	recordOps      *prometheus.CounterVec
	notifyFailures *prometheus.CounterVec
	uploads        *prometheus.CounterVec
	liveClients    prometheus.Gauge
	droppedEvents  *prometheus.CounterVec
	relayRestarts  prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		recordOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adminpanel_record_operations_total",
			Help: "Record store operations by kind and outcome.",
		}, []string{"op", "outcome"}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adminpanel_notify_failures_total",
			Help: "Change notifications that could not be published.",
		}, []string{"event"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adminpanel_vault_uploads_total",
			Help: "File vault uploads by outcome.",
		}, []string{"outcome"}),
		liveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adminpanel_live_clients",
			Help: "Connected websocket clients.",
		}),
		droppedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adminpanel_dropped_events_total",
			Help: "Events dropped for slow subscribers.",
		}, []string{"channel"}),
		relayRestarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adminpanel_redis_relay_restarts_total",
			Help: "Times the Redis relay subscription was re-established.",
		}),
	}
	m.registry.MustRegister(m.recordOps, m.notifyFailures, m.uploads, m.liveClients, m.droppedEvents, m.relayRestarts)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *metrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
