// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wneessen/dist2coast/internal/estimate"
	"github.com/wneessen/dist2coast/internal/geo"
	"github.com/wneessen/dist2coast/internal/grid"
	"github.com/wneessen/dist2coast/internal/logger"
)

const readyTimeout = 3 * time.Second

// Corner is an enriched lattice point of a distance response.
type Corner struct {
	Corner            string  `json:"corner"`
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	DistanceToCoast   float64 `json:"distance_to_coast"`
	DistanceToAddress float64 `json:"distance_to_address"`
}

// DistanceResponse is the response of GET /v1/distance.
type DistanceResponse struct {
	Query     geo.Coordinate `json:"query"`
	Unit      estimate.Unit  `json:"unit"`
	Estimates estimate.Set   `json:"estimates"`
	Corners   []Corner       `json:"corners"`
	Regimes   []string       `json:"regimes"`
}

// BatchPoint is a single address point of a batch request.
type BatchPoint struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BatchRequest is the body of POST /v1/distance.
type BatchRequest struct {
	Unit   string       `json:"unit"`
	Points []BatchPoint `json:"points"`
}

// BatchResult is the outcome for a single point of a batch request.
type BatchResult struct {
	ID        string        `json:"id"`
	Lat       float64       `json:"lat"`
	Lon       float64       `json:"lon"`
	Estimates *estimate.Set `json:"estimates,omitempty"`
	Error     *APIError     `json:"error,omitempty"`
}

// BatchResponse is the response of POST /v1/distance.
type BatchResponse struct {
	Unit    estimate.Unit `json:"unit"`
	Results []BatchResult `json:"results"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"uptime":  time.Since(s.startedAt).String(),
		"version": s.version,
	})
}

func (s *Server) ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()

	checks := make(map[string]string)
	status, code := "ready", fiber.StatusOK
	for name, err := range s.estimator.Checks(ctx) {
		if err != nil {
			checks[name] = "error: " + err.Error()
			status, code = "not ready", fiber.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": checks,
	})
}

func (s *Server) distance(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return errBadRequest(c, fmt.Sprintf("invalid latitude: %q", c.Query("lat")))
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return errBadRequest(c, fmt.Sprintf("invalid longitude: %q", c.Query("lon")))
	}
	unit, err := s.parseUnit(c.Query("unit"))
	if err != nil {
		return errBadRequest(c, err.Error())
	}

	result, err := s.estimator.Estimate(c.UserContext(), geo.Coordinate{Lat: lat, Lon: lon})
	if err != nil {
		return s.estimateError(c, err)
	}
	return c.JSON(s.response(result, unit))
}

func (s *Server) distanceBatch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}
	switch {
	case len(req.Points) == 0:
		return errBadRequest(c, "no points given")
	case len(req.Points) > MaxBatchSize:
		return errBadRequest(c, fmt.Sprintf("too many points: %d, maximum is %d", len(req.Points), MaxBatchSize))
	}
	unit, err := s.parseUnit(req.Unit)
	if err != nil {
		return errBadRequest(c, err.Error())
	}

	reqID, _ := c.Locals("requestid").(string)
	resp := BatchResponse{Unit: unit, Results: make([]BatchResult, 0, len(req.Points))}
	for _, point := range req.Points {
		item := BatchResult{ID: point.ID, Lat: point.Lat, Lon: point.Lon}
		result, err := s.estimator.Estimate(c.UserContext(), geo.Coordinate{Lat: point.Lat, Lon: point.Lon})
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			status, code := classify(err)
			item.Error = &APIError{Status: status, Code: code, Message: err.Error(), RequestID: reqID}
		default:
			set := result.Estimates.In(unit).Round(s.precision)
			item.Estimates = &set
		}
		resp.Results = append(resp.Results, item)
	}
	return c.JSON(resp)
}

func (s *Server) parseUnit(unit string) (estimate.Unit, error) {
	if unit == "" {
		return s.unit, nil
	}
	return estimate.ParseUnit(unit)
}

// estimateError renders an estimation error. Timeouts are returned to the timeout middleware.
func (s *Server) estimateError(c *fiber.Ctx, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	status, code := classify(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("failed to estimate distance to coast", logger.Err(err))
	}
	return newError(c, status, code, err.Error())
}

func (s *Server) response(result estimate.Result, unit estimate.Unit) DistanceResponse {
	resp := DistanceResponse{
		Query:     result.Query,
		Unit:      unit,
		Estimates: result.Estimates.In(unit).Round(s.precision),
		Corners:   make([]Corner, 0, len(grid.Corners)),
		Regimes:   make([]string, 0, len(result.Regimes)),
	}
	for _, corner := range grid.Corners {
		p := result.Quad[corner]
		resp.Corners = append(resp.Corners, Corner{
			Corner:            corner.String(),
			Lat:               p.Coord.Lat,
			Lon:               p.Coord.Lon,
			DistanceToCoast:   geo.Round(unit.FromKilometers(p.DistToCoast), s.precision),
			DistanceToAddress: geo.Round(unit.FromKilometers(p.DistToAddress), s.precision),
		})
	}
	for _, regime := range result.Regimes {
		resp.Regimes = append(resp.Regimes, regime.String())
	}
	return resp
}
