// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wneessen/dist2coast/internal/estimate"
	"github.com/wneessen/dist2coast/internal/geo"
	"github.com/wneessen/dist2coast/internal/grid"
)

func TestResultLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ResultOK},
		{fmt.Errorf("failed to look up nw corner: %w", grid.NotFoundError(geo.Coordinate{})), ResultNotFound},
		{estimate.ErrDegenerateWeights, ResultDegenerate},
		{fmt.Errorf("%w: 91,0", estimate.ErrInvalidCoordinate), ResultInvalid},
		{estimate.ErrNegativeDistance, ResultInvalid},
		{errors.New("connection refused"), ResultError},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := ResultLabel(tc.err); got != tc.want {
				t.Errorf("expected label %q, got %q", tc.want, got)
			}
		})
	}
}

func TestObservers(t *testing.T) {
	t.Run("regimes are counted by label", func(t *testing.T) {
		counter := TrigRegimesTotal.WithLabelValues(estimate.Degenerate.String())
		before := testutil.ToFloat64(counter)
		ObserveRegime(estimate.Degenerate)
		ObserveRegime(estimate.Degenerate)
		if got := testutil.ToFloat64(counter) - before; got != 2 {
			t.Errorf("expected 2 degenerate regimes, got %v", got)
		}
	})
	t.Run("cache hits and misses are counted", func(t *testing.T) {
		hits := GridLookupCacheTotal.WithLabelValues("hit")
		misses := GridLookupCacheTotal.WithLabelValues("miss")
		hitsBefore, missesBefore := testutil.ToFloat64(hits), testutil.ToFloat64(misses)
		ObserveCache(true)
		ObserveCache(false)
		ObserveCache(false)
		if got := testutil.ToFloat64(hits) - hitsBefore; got != 1 {
			t.Errorf("expected 1 hit, got %v", got)
		}
		if got := testutil.ToFloat64(misses) - missesBefore; got != 2 {
			t.Errorf("expected 2 misses, got %v", got)
		}
	})
	t.Run("estimates and reloads are counted", func(t *testing.T) {
		estimates := EstimatesTotal.WithLabelValues(ResultNotFound)
		reloads := GridReloadsTotal.WithLabelValues("error")
		estimatesBefore, reloadsBefore := testutil.ToFloat64(estimates), testutil.ToFloat64(reloads)
		ObserveEstimate(grid.ErrNotFound)
		ObserveReload(errors.New("broken grid"))
		if got := testutil.ToFloat64(estimates) - estimatesBefore; got != 1 {
			t.Errorf("expected 1 not found estimate, got %v", got)
		}
		if got := testutil.ToFloat64(reloads) - reloadsBefore; got != 1 {
			t.Errorf("expected 1 failed reload, got %v", got)
		}
	})
}

type poolStat struct{}

func (poolStat) AcquiredConns() int32 { return 2 }
func (poolStat) IdleConns() int32     { return 3 }
func (poolStat) TotalConns() int32    { return 5 }

func TestUpdateDBPoolMetrics(t *testing.T) {
	UpdateDBPoolMetrics(poolStat{})
	if got := testutil.ToFloat64(DBPoolConnsOpen); got != 5 {
		t.Errorf("expected 5 open connections, got %v", got)
	}
	if got := testutil.ToFloat64(DBPoolConnsIdle); got != 3 {
		t.Errorf("expected 3 idle connections, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/metrics", Handler())
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	if err != nil {
		t.Fatalf("failed to request ping: %s", err)
	}
	_ = resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("failed to request metrics: %s", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read metrics: %s", err)
	}
	for _, name := range []string{"dist2coast_http_requests_total", `path="/ping"`, "dist2coast_grid_points"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected metrics to contain %q", name)
		}
	}
}
