package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database pool metrics
var (
	DBConnectionsOpen = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Total number of open database connections",
		},
	)

	DBConnectionsInUse = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Number of database connections currently in use (acquired)",
		},
	)

	DBConnectionsIdle = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		},
	)

	DBConnectionsMax = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_max",
			Help:      "Maximum number of database connections allowed by the pool",
		},
	)

	DBPingErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_ping_errors_total",
			Help:      "Total number of failed database pings by cause",
		},
		[]string{"error_type"},
	)
)

// PoolStats is the subset of pgxpool.Stat the collector reads.
type PoolStats interface {
	TotalConns() int32
	AcquiredConns() int32
	IdleConns() int32
	MaxConns() int32
}

// DBCollector periodically copies pool statistics into gauges.
type DBCollector struct {
	stat func() PoolStats
	stop chan struct{}
}

func NewDBCollector(pool *pgxpool.Pool) *DBCollector {
	return newDBCollector(func() PoolStats {
		if pool == nil {
			return nil
		}
		return pool.Stat()
	})
}

func newDBCollector(stat func() PoolStats) *DBCollector {
	return &DBCollector{stat: stat, stop: make(chan struct{})}
}

// Start collects at the given interval until Stop is called or ctx ends.
func (c *DBCollector) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.collect()
	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *DBCollector) Stop() {
	close(c.stop)
}

func (c *DBCollector) collect() {
	stat := c.stat()
	if stat == nil {
		return
	}
	DBConnectionsOpen.Set(float64(stat.TotalConns()))
	DBConnectionsInUse.Set(float64(stat.AcquiredConns()))
	DBConnectionsIdle.Set(float64(stat.IdleConns()))
	DBConnectionsMax.Set(float64(stat.MaxConns()))
}

// RecordPingError classifies a failed readiness ping.
func RecordPingError(err error) {
	if err == nil {
		return
	}
	errorType := "error"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		errorType = "timeout"
	case errors.Is(err, context.Canceled):
		errorType = "canceled"
	}
	DBPingErrors.WithLabelValues(errorType).Inc()
}
