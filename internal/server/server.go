// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package server exposes the distance to coast estimation as an HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/wneessen/dist2coast/internal/config"
	"github.com/wneessen/dist2coast/internal/estimate"
	"github.com/wneessen/dist2coast/internal/geo"
	"github.com/wneessen/dist2coast/internal/logger"
	"github.com/wneessen/dist2coast/internal/metrics"
)

const (
	// MaxBatchSize is the maximum number of points of a batch request.
	MaxBatchSize = 1000

	bodyLimit = 1024 * 1024
)

// Estimator estimates distances to coast and reports the health of its dependencies.
type Estimator interface {
	Estimate(ctx context.Context, c geo.Coordinate) (estimate.Result, error)
	Checks(ctx context.Context) map[string]error
}

// Server is the HTTP API server.
type Server struct {
	app       *fiber.App
	logger    *logger.Logger
	estimator Estimator
	unit      estimate.Unit
	precision int
	version   string
	startedAt time.Time
}

// New returns a Server with all routes registered.
func New(conf *config.Config, log *logger.Logger, estimator Estimator, version string) *Server {
	srv := &Server{
		logger:    log,
		estimator: estimator,
		unit:      conf.Unit(),
		precision: conf.Output.Precision,
		version:   version,
		startedAt: time.Now(),
	}
	srv.app = fiber.New(fiber.Config{
		ReadTimeout:           conf.Server.ReadTimeout,
		WriteTimeout:          conf.Server.WriteTimeout,
		BodyLimit:             bodyLimit,
		AppName:               "dist2coast",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	srv.routes(conf.Server.RequestTimeout)
	return srv
}

func (s *Server) routes(requestTimeout time.Duration) {
	s.app.Use(recover.New())
	s.app.Use(metrics.Middleware())
	s.app.Get("/metrics", metrics.Handler())
	s.app.Use(requestid.New())
	s.app.Use(s.accessLog())

	s.app.Get("/v1/health", s.health)
	s.app.Get("/v1/ready", s.ready)

	v1 := s.app.Group("/v1")
	v1.Get("/distance", timeout.NewWithContext(s.distance, requestTimeout))
	v1.Post("/distance", timeout.NewWithContext(s.distanceBatch, requestTimeout))
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
	if err := s.app.Listener(ln); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
