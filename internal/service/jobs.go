// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/wneessen/dist2coast/internal/logger"
	"github.com/wneessen/dist2coast/internal/metrics"
)

// reloadGrid swaps in the reference grid file if it changed on disk. Cached lookups of the
// previous grid are dropped.
func (s *Service) reloadGrid(context.Context) {
	if s.reloadable == nil {
		return
	}

	swapped, err := s.reloadable.Reload()
	metrics.ObserveReload(err)
	if err != nil {
		s.logger.Error("failed to reload reference grid, keeping current grid", logger.Err(err))
		return
	}
	if !swapped {
		return
	}

	if s.cache != nil {
		s.cache.Purge()
	}
	points := s.reloadable.Store().Len()
	metrics.GridPoints.Set(float64(points))
	s.logger.Info("reference grid reloaded", slog.String("grid", s.reloadable.Name()),
		slog.Int("points", points))
}

// pruneCache drops expired entries of the lookup cache.
func (s *Service) pruneCache(context.Context) {
	if s.cache == nil {
		return
	}
	if pruned := s.cache.Prune(); pruned > 0 {
		s.logger.Debug("pruned expired lookup cache entries", slog.Int("entries", pruned))
	}
}

func (s *Service) updatePoolMetrics(context.Context) {
	if s.db == nil {
		return
	}
	s.db.UpdatePoolMetrics()
}
