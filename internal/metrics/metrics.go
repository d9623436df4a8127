// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus collectors of dist2coast.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/wneessen/dist2coast/internal/estimate"
	"github.com/wneessen/dist2coast/internal/grid"
)

const namespace = "dist2coast"

// Result labels of EstimatesTotal.
const (
	ResultOK         = "ok"
	ResultNotFound   = "not_found"
	ResultDegenerate = "degenerate"
	ResultInvalid    = "invalid"
	ResultError      = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "path"})

	EstimatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "estimate",
		Name:      "estimates_total",
		Help:      "Total distance to coast estimations by result",
	}, []string{"result"})

	TrigRegimesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "estimate",
		Name:      "trig_regimes_total",
		Help:      "Total corner pairs solved by the trigonometric estimator, by geometric regime",
	}, []string{"regime"})

	GridLookupCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "grid",
		Name:      "lookup_cache_total",
		Help:      "Total grid lookups served by the lookup cache, by result",
	}, []string{"result"})

	GridPoints = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "grid",
		Name:      "points",
		Help:      "Number of lattice points in the loaded reference grid",
	})

	GridReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "grid",
		Name:      "reloads_total",
		Help:      "Total reference grid reload attempts, by result",
	}, []string{"result"})

	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// ObserveEstimate counts an estimation by its outcome.
func ObserveEstimate(err error) {
	EstimatesTotal.WithLabelValues(ResultLabel(err)).Inc()
}

// ResultLabel maps the outcome of an estimation to its result label.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, grid.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, estimate.ErrDegenerateWeights):
		return ResultDegenerate
	case errors.Is(err, estimate.ErrInvalidCoordinate), errors.Is(err, estimate.ErrNegativeDistance),
		errors.Is(err, estimate.ErrInvalidDistance):
		return ResultInvalid
	default:
		return ResultError
	}
}

// ObserveRegime counts a solved corner pair. It satisfies estimate.RegimeObserver.
func ObserveRegime(regime estimate.Regime) {
	TrigRegimesTotal.WithLabelValues(regime.String()).Inc()
}

// ObserveCache counts a lookup cache hit or miss. It satisfies grid.CacheObserver.
func ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	GridLookupCacheTotal.WithLabelValues(result).Inc()
}

// ObserveReload counts a grid reload attempt.
func ObserveReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	GridReloadsTotal.WithLabelValues(result).Inc()
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// PoolStat is the subset of the pgxpool statistics exported as gauges.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics updates the database pool gauges.
func UpdateDBPoolMetrics(stat PoolStat) {
	DBPoolConnsAcquired.Set(float64(stat.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(stat.IdleConns()))
	DBPoolConnsOpen.Set(float64(stat.TotalConns()))
}
