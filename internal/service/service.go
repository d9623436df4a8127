// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires the reference grid, the estimator and the in- and output streams
// together. It runs either as a batch processor over address files or as the HTTP service.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/text/message"

	"github.com/wneessen/dist2coast/internal/config"
	"github.com/wneessen/dist2coast/internal/estimate"
	"github.com/wneessen/dist2coast/internal/geo"
	"github.com/wneessen/dist2coast/internal/grid"
	"github.com/wneessen/dist2coast/internal/http"
	"github.com/wneessen/dist2coast/internal/logger"
	"github.com/wneessen/dist2coast/internal/metrics"
	"github.com/wneessen/dist2coast/internal/postgres"
	"github.com/wneessen/dist2coast/internal/record"
	"github.com/wneessen/dist2coast/internal/server"
	"github.com/wneessen/dist2coast/internal/template"
	"github.com/wneessen/dist2coast/internal/valkey"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 30 * time.Second
)

var (
	// ErrNotOpen is returned when the service is used before Open succeeded.
	ErrNotOpen = errors.New("service is not open")

	// ErrNoDatabase is returned by ImportGrid when no database DSN is configured.
	ErrNoDatabase = errors.New("no database DSN configured")
)

type Service struct {
	config     *config.Config
	logger     *logger.Logger
	scheduler  gocron.Scheduler
	template   *template.Template
	httpClient *http.Client
	signals    signalSource
	version    string

	spec grid.Spec
	dist geo.DistanceFunc

	lookup     grid.Lookup
	reloadable *grid.Reloadable
	cache      *grid.CachedLookup
	db         *postgres.DB
	valkey     *valkey.Cache
	estimator  *estimate.Estimator
}

// Stats counts the lines handled by Process. Failed lines are passed through unless
// fail_fast is set and are not counted as Passthrough.
type Stats struct {
	Records     int
	Estimated   int
	Passthrough int
	Failed      int
}

func New(conf *config.Config, log *logger.Logger, printer *message.Printer, version string) (*Service, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	tpl, err := template.New(conf, printer)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	spec, err := conf.GridSpec()
	if err != nil {
		return nil, fmt.Errorf("failed to create grid spec: %w", err)
	}
	dist, err := geo.NewDistanceFunc(conf.Geodesic.Method)
	if err != nil {
		return nil, fmt.Errorf("failed to select distance function: %w", err)
	}

	service := &Service{
		config:     conf,
		logger:     log,
		scheduler:  scheduler,
		template:   tpl,
		httpClient: http.New(log),
		signals:    stdLibSignalSource{},
		version:    version,
		spec:       spec,
		dist:       dist,
	}
	return service, nil
}

// Open sets up the configured grid lookup chain and the estimator.
func (s *Service) Open(ctx context.Context) error {
	lookup, err := s.selectGridLookup(ctx)
	if err != nil {
		return fmt.Errorf("failed to create grid lookup: %w", err)
	}
	estimator, err := estimate.New(s.spec, lookup, s.dist, estimate.WithRegimeObserver(metrics.ObserveRegime))
	if err != nil {
		return fmt.Errorf("failed to create estimator: %w", err)
	}
	s.lookup = lookup
	s.estimator = estimator
	s.logger.Debug("grid lookup ready", slog.String("lookup", lookup.Name()),
		slog.String("geodesic", s.config.Geodesic.Method))
	return nil
}

// Close releases the database and Valkey connections.
func (s *Service) Close() {
	if s.valkey != nil {
		s.valkey.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// Estimate estimates the distance to coast for c.
func (s *Service) Estimate(ctx context.Context, c geo.Coordinate) (estimate.Result, error) {
	if s.estimator == nil {
		return estimate.Result{}, ErrNotOpen
	}
	result, err := s.estimator.Estimate(ctx, c)
	metrics.ObserveEstimate(err)
	return result, err
}

// Checks reports the health of the grid lookup and its backends.
func (s *Service) Checks(ctx context.Context) map[string]error {
	checks := map[string]error{"grid": nil}
	if s.estimator == nil {
		checks["grid"] = ErrNotOpen
	}
	if s.db != nil {
		checks["database"] = s.db.Ping(ctx)
	}
	if s.valkey != nil {
		checks["valkey"] = s.valkey.Ping(ctx)
	}
	return checks
}

// Process reads address records from in and writes them with their estimates to out.
func (s *Service) Process(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	var stats Stats
	if s.estimator == nil {
		return stats, ErrNotOpen
	}
	writer, err := record.NewWriter(out, s.config, s.template)
	if err != nil {
		return stats, fmt.Errorf("failed to create record writer: %w", err)
	}

	reader := record.NewReader(in)
	for {
		if err = ctx.Err(); err != nil {
			return stats, err
		}
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !errors.Is(err, record.ErrInvalidRecord) {
			return stats, fmt.Errorf("failed to read record: %w", err)
		}
		stats.Records++

		if err == nil && !rec.Query {
			if err = writer.WritePassthrough(rec); err != nil {
				return stats, err
			}
			stats.Passthrough++
			continue
		}

		var set estimate.Set
		if err == nil {
			var result estimate.Result
			result, err = s.Estimate(ctx, rec.Coord)
			set = result.Estimates
		}
		if err != nil {
			stats.Failed++
			if s.config.Output.FailFast {
				return stats, fmt.Errorf("failed to process record on line %d: %w", rec.Line, err)
			}
			s.logger.Warn("failed to estimate distance to coast, passing record through",
				slog.Int("line", rec.Line), logger.Coord(rec.Coord), logger.Err(err))
			if err = writer.WritePassthrough(rec); err != nil {
				return stats, err
			}
			continue
		}

		if err = writer.WriteEstimate(rec, set); err != nil {
			return stats, err
		}
		stats.Estimated++
	}
	return stats, nil
}

// Run serves the HTTP API until ctx is canceled. The reference grid file is reloaded on the
// configured interval and whenever SIGHUP is received.
func (s *Service) Run(ctx context.Context) error {
	if s.estimator == nil {
		return ErrNotOpen
	}

	// Start scheduled jobs
	if s.reloadable != nil && s.config.Intervals.GridReload > 0 {
		if err := s.createScheduledJob(ctx, s.config.Intervals.GridReload, s.reloadGrid,
			"grid_reload_job"); err != nil {
			return err
		}
	}
	if s.cache != nil {
		if err := s.createScheduledJob(ctx, s.config.Grid.CacheTTL, s.pruneCache,
			"cache_prune_job"); err != nil {
			return err
		}
	}
	if s.db != nil {
		if err := s.createScheduledJob(ctx, poolStatsInterval, s.updatePoolMetrics,
			"db_pool_metrics_job"); err != nil {
			return err
		}
	}
	s.scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	s.signals.Notify(sigChan, syscall.SIGHUP)
	defer s.signals.Stop(sigChan)
	go s.HandleReloadSignal(ctx, sigChan)

	ln, err := net.Listen("tcp", s.config.Server.Listen)
	if err != nil {
		return errors.Join(fmt.Errorf("failed to listen on %s: %w", s.config.Server.Listen, err),
			s.scheduler.Shutdown())
	}
	srv := server.New(s.config, s.logger, s, s.version)
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	// Wait for the context to cancel or the server to fail
	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)
	_ = ln.Close()
	if serveErr == nil {
		serveErr = <-errChan
	}
	return errors.Join(serveErr, shutdownErr, s.scheduler.Shutdown())
}

// ExportGrid writes the filtered reference grid file as CSV to w.
func (s *Service) ExportGrid(ctx context.Context, w io.Writer) error {
	store, err := s.loadGridFile(ctx)
	if err != nil {
		return err
	}
	if err = store.WriteCSV(w); err != nil {
		return fmt.Errorf("failed to export grid: %w", err)
	}
	s.logger.Info("reference grid exported", slog.Int("points", store.Len()))
	return nil
}

// ImportGrid loads the filtered reference grid file into the database and returns the number
// of imported points.
func (s *Service) ImportGrid(ctx context.Context) (int64, error) {
	if s.config.Database.DSN == "" {
		return 0, ErrNoDatabase
	}
	store, err := s.loadGridFile(ctx)
	if err != nil {
		return 0, err
	}

	db := s.db
	if db == nil {
		if db, err = postgres.New(ctx, s.config.Database.DSN, s.config.Database.MaxConns); err != nil {
			return 0, err
		}
		defer db.Close()
	}
	gridStore := postgres.NewGridStore(db, s.spec.Precision)
	if err = gridStore.EnsureSchema(ctx); err != nil {
		return 0, err
	}
	count, err := gridStore.Import(ctx, store)
	if err != nil {
		return 0, err
	}
	s.logger.Info("reference grid imported", slog.String("store", gridStore.Name()), slog.Int64("points", count))
	return count, nil
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}
