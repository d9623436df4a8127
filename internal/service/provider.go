// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/wneessen/dist2coast/internal/config"
	"github.com/wneessen/dist2coast/internal/grid"
	"github.com/wneessen/dist2coast/internal/logger"
	"github.com/wneessen/dist2coast/internal/metrics"
	"github.com/wneessen/dist2coast/internal/postgres"
	"github.com/wneessen/dist2coast/internal/valkey"
)

// selectGridLookup builds the lookup chain for the configured grid source. The in-process
// cache, if enabled, always sits on top.
func (s *Service) selectGridLookup(ctx context.Context) (grid.Lookup, error) {
	var lookup grid.Lookup

	switch strings.ToLower(s.config.Grid.Source) {
	case config.GridSourceFile:
		if err := s.ensureGridFile(ctx); err != nil {
			return nil, err
		}
		reloadable, err := grid.NewReloadable(s.config.Grid.File, s.loadOptions(), s.spec.Spacing,
			!s.config.Grid.SkipValidation)
		if err != nil {
			return nil, fmt.Errorf("failed to load grid file: %w", err)
		}
		points := reloadable.Store().Len()
		metrics.GridPoints.Set(float64(points))
		s.logger.Info("reference grid loaded", slog.String("grid", reloadable.Name()),
			slog.Int("points", points))
		s.reloadable = reloadable
		lookup = reloadable
	case config.GridSourcePostgres:
		db, err := postgres.New(ctx, s.config.Database.DSN, s.config.Database.MaxConns)
		if err != nil {
			return nil, err
		}
		s.db = db
		store := postgres.NewGridStore(db, s.spec.Precision)
		count, err := store.Count(ctx)
		if err != nil {
			return nil, err
		}
		metrics.GridPoints.Set(float64(count))
		s.logger.Info("reference grid connected", slog.String("grid", store.Name()),
			slog.Int64("points", count))
		lookup = store

		if s.config.Valkey.Addr != "" {
			cache, err := valkey.New(s.config.Valkey.Addr, store, s.spec.Precision, s.config.Valkey.TTL)
			if err != nil {
				return nil, err
			}
			cache.OnError(func(err error) {
				s.logger.Warn("valkey cache failure, falling back to database", logger.Err(err))
			})
			s.valkey = cache
			lookup = cache
		}
	default:
		return nil, fmt.Errorf("unsupported grid source: %s", s.config.Grid.Source)
	}

	if s.config.Grid.CacheTTL > 0 {
		s.cache = grid.NewCachedLookup(lookup, s.spec.Precision, s.config.Grid.CacheTTL, s.config.Grid.CacheTTL).
			WithObserver(metrics.ObserveCache)
		lookup = s.cache
	}
	return lookup, nil
}

func (s *Service) loadOptions() grid.LoadOptions {
	return grid.LoadOptions{Bounds: s.config.GridBounds(), Precision: s.spec.Precision}
}

// ensureGridFile downloads the reference grid file if it does not exist yet.
func (s *Service) ensureGridFile(ctx context.Context) error {
	_, err := os.Stat(s.config.Grid.File)
	if err == nil || !errors.Is(err, fs.ErrNotExist) || s.config.Grid.URL == "" {
		return nil
	}

	s.logger.Info("reference grid file not found, downloading", slog.String("url", s.config.Grid.URL),
		slog.String("file", s.config.Grid.File))
	size, err := s.httpClient.DownloadFile(ctx, s.config.Grid.URL, s.config.Grid.File)
	if err != nil {
		return fmt.Errorf("failed to download grid file: %w", err)
	}
	s.logger.Info("reference grid file downloaded", slog.Int64("bytes", size))
	return nil
}

// loadGridFile returns the filtered reference grid file, validated unless skip_validation is set.
func (s *Service) loadGridFile(ctx context.Context) (*grid.Store, error) {
	if s.reloadable != nil {
		return s.reloadable.Store(), nil
	}
	if err := s.ensureGridFile(ctx); err != nil {
		return nil, err
	}
	store, err := grid.LoadFile(s.config.Grid.File, s.loadOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load grid file: %w", err)
	}
	if !s.config.Grid.SkipValidation {
		if err = store.Validate(s.spec.Spacing); err != nil {
			return nil, fmt.Errorf("grid file %q failed validation: %w", s.config.Grid.File, err)
		}
	}
	return store, nil
}
