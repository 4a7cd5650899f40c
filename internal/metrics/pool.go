// Package metrics exposes database pool statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/urlshortener/backend/internal/database"
)

// Statter reports a point-in-time snapshot of pool usage. *database.Pool
// implements it.
type Statter interface {
	Stat() database.Stat
}

// PoolCollector reads Stat on every scrape rather than keeping its own
// counters, so the numbers always agree with the pool.
type PoolCollector struct {
	pool Statter

	maxConns      *prometheus.Desc
	acquiredConns *prometheus.Desc
	idleConns     *prometheus.Desc
	totalConns    *prometheus.Desc
	acquires      *prometheus.Desc
	canceled      *prometheus.Desc
	empty         *prometheus.Desc
	waitSeconds   *prometheus.Desc
}

// NewPoolCollector returns a collector for pool. Register it once.
func NewPoolCollector(pool Statter) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("db_pool_"+name, help, nil, nil)
	}
	return &PoolCollector{
		pool:          pool,
		maxConns:      desc("max_connections", "Maximum number of connections in the pool."),
		acquiredConns: desc("acquired_connections", "Connections currently leased to requests."),
		idleConns:     desc("idle_connections", "Idle connections in the pool."),
		totalConns:    desc("total_connections", "Open connections in the pool."),
		acquires:      desc("acquires_total", "Successful connection acquisitions."),
		canceled:      desc("canceled_acquires_total", "Acquisitions abandoned because the context ended."),
		empty:         desc("empty_acquires_total", "Acquisitions that had to wait for a connection."),
		waitSeconds:   desc("acquire_duration_seconds_total", "Total time spent waiting for connections."),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.maxConns
	ch <- c.acquiredConns
	ch <- c.idleConns
	ch <- c.totalConns
	ch <- c.acquires
	ch <- c.canceled
	ch <- c.empty
	ch <- c.waitSeconds
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stat()

	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(s.MaxConns))
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(s.AcquiredConns))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(s.IdleConns))
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.AcquireCount))
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(s.CanceledAcquireCount))
	ch <- prometheus.MustNewConstMetric(c.empty, prometheus.CounterValue, float64(s.EmptyAcquireCount))
	ch <- prometheus.MustNewConstMetric(c.waitSeconds, prometheus.CounterValue, s.AcquireDuration.Seconds())
}
