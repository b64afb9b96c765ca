package pgfairing

//
// metrics.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector export pool statistics and fairing state to prometheus.
type Collector struct {
	fairing *Fairing

	state                *prometheus.Desc
	acquiredConns        *prometheus.Desc
	idleConns            *prometheus.Desc
	totalConns           *prometheus.Desc
	maxConns             *prometheus.Desc
	acquireCount         *prometheus.Desc
	acquireDuration      *prometheus.Desc
	emptyAcquireCount    *prometheus.Desc
	canceledAcquireCount *prometheus.Desc
}

// NewCollector create collector; name is used as `db_name` label.
func NewCollector(fairing *Fairing, name string) *Collector {
	labels := prometheus.Labels{"db_name": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("pgfairing", "", metric), help, nil, labels)
	}

	return &Collector{
		fairing: fairing,

		state:                desc("state", "Fairing state (0 unconfigured, 1 attaching, 2 ready, 3 degraded, 4 closed)."),
		acquiredConns:        desc("acquired_connections", "Number of currently acquired connections."),
		idleConns:            desc("idle_connections", "Number of currently idle connections."),
		totalConns:           desc("total_connections", "Total number of connections in the pool."),
		maxConns:             desc("max_connections", "Maximum size of the pool."),
		acquireCount:         desc("acquire_total", "Cumulative count of successful acquires from the pool."),
		acquireDuration:      desc("acquire_duration_seconds_total", "Total duration of all successful acquires."),
		emptyAcquireCount:    desc("empty_acquire_total", "Cumulative count of acquires that waited for a connection."),
		canceledAcquireCount: desc("canceled_acquire_total", "Cumulative count of acquires canceled by context."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.state
	ch <- c.acquiredConns
	ch <- c.idleConns
	ch <- c.totalConns
	ch <- c.maxConns
	ch <- c.acquireCount
	ch <- c.acquireDuration
	ch <- c.emptyAcquireCount
	ch <- c.canceledAcquireCount
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, float64(c.fairing.State()))

	stat := c.fairing.Stat()
	if stat == nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(stat.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(stat.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.acquireDuration, prometheus.CounterValue, stat.AcquireDuration().Seconds())
	ch <- prometheus.MustNewConstMetric(c.emptyAcquireCount, prometheus.CounterValue,
		float64(stat.EmptyAcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.canceledAcquireCount, prometheus.CounterValue,
		float64(stat.CanceledAcquireCount()))
}
