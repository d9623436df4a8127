// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"

	"github.com/wneessen/dist2coast/internal/estimate"
	"github.com/wneessen/dist2coast/internal/geo"
	"github.com/wneessen/dist2coast/internal/grid"
)

const (
	configEnv          = "DIST2COAST"
	DefaultTextTpl     = "{{.ID}}\t{{num .Closest}}\t{{num .SimpleAverage}}\t{{num .WeightedAverage}}\t{{num .Trigonometric}} {{.Unit}}"
	GridSourceFile     = "file"
	GridSourcePostgres = "postgres"
	FormatCSV          = "csv"
	FormatJSON         = "json"
	FormatText         = "text"
)

// Config represents the application's configuration structure.
type Config struct {
	// Allowed values: km, mi
	Units    string     `fig:"units" default:"mi"`
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Grid struct {
		// Allowed values: file, postgres
		Source    string  `fig:"source" default:"file"`
		File      string  `fig:"file" default:"dist2coast.txt.bz2"`
		// Downloaded to file if it does not exist; empty disables the download
		URL       string  `fig:"url" default:"https://oceancolor.gsfc.nasa.gov/docs/distfromcoast/dist2coast.txt.bz2"`
		OriginLat float64 `fig:"origin_lat" default:"25.02"`
		OriginLon float64 `fig:"origin_lon" default:"-124.98"`
		Spacing   float64 `fig:"spacing" default:"0.04"`
		// At most 7 decimals
		Precision int `fig:"precision" default:"2"`
		// Allowed values: nearest, floor
		Snap   string `fig:"snap" default:"nearest"`
		Bounds struct {
			MinLat float64 `fig:"min_lat" default:"25"`
			MaxLat float64 `fig:"max_lat" default:"50"`
			MinLon float64 `fig:"min_lon" default:"-125"`
			MaxLon float64 `fig:"max_lon" default:"-65"`
		} `fig:"bounds"`
		SkipValidation bool          `fig:"skip_validation"`
		CacheTTL       time.Duration `fig:"cache_ttl" default:"10m"`
	} `fig:"grid"`

	Geodesic struct {
		// Allowed values: wgs84, haversine
		Method string `fig:"method" default:"wgs84"`
	} `fig:"geodesic"`

	Output struct {
		// Allowed values: csv, json, text
		Format    string `fig:"format" default:"csv"`
		Template  string `fig:"template"`
		Precision int    `fig:"precision" default:"6"`
		FailFast  bool   `fig:"fail_fast"`
	} `fig:"output"`

	Server struct {
		Listen         string        `fig:"listen" default:":8080"`
		ReadTimeout    time.Duration `fig:"read_timeout" default:"10s"`
		WriteTimeout   time.Duration `fig:"write_timeout" default:"10s"`
		RequestTimeout time.Duration `fig:"request_timeout" default:"5s"`
	} `fig:"server"`

	Intervals struct {
		GridReload time.Duration `fig:"grid_reload" default:"5m"`
	} `fig:"intervals"`

	Database struct {
		DSN      string `fig:"dsn"`
		MaxConns int32  `fig:"max_conns" default:"10"`
	} `fig:"database"`

	Valkey struct {
		Addr string        `fig:"addr"`
		TTL  time.Duration `fig:"ttl" default:"1h"`
	} `fig:"valkey"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if _, err := estimate.ParseUnit(c.Units); err != nil {
		return fmt.Errorf("invalid units: %s", c.Units)
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}

	switch c.Grid.Source {
	case GridSourceFile:
		if c.Grid.File == "" {
			return fmt.Errorf("grid source %q requires a grid file", c.Grid.Source)
		}
	case GridSourcePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("grid source %q requires a database DSN", c.Grid.Source)
		}
	default:
		return fmt.Errorf("invalid grid source: %s", c.Grid.Source)
	}
	if _, err := c.GridSpec(); err != nil {
		return err
	}
	b := c.GridBounds()
	if b.MinLat >= b.MaxLat || b.MinLon >= b.MaxLon {
		return fmt.Errorf("invalid grid bounds: %+v", b)
	}
	if c.Grid.CacheTTL < 0 {
		return fmt.Errorf("invalid grid cache TTL: %s", c.Grid.CacheTTL)
	}
	if _, err := geo.NewDistanceFunc(c.Geodesic.Method); err != nil {
		return err
	}

	switch c.Output.Format {
	case FormatCSV, FormatJSON:
	case FormatText:
		if c.Output.Template == "" {
			c.Output.Template = DefaultTextTpl
		}
	default:
		return fmt.Errorf("invalid output format: %s", c.Output.Format)
	}
	if c.Output.Precision < 0 || c.Output.Precision > 15 {
		return fmt.Errorf("invalid output precision: %d", c.Output.Precision)
	}

	if c.Intervals.GridReload < 0 {
		return fmt.Errorf("invalid grid reload interval: %s", c.Intervals.GridReload)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("invalid database max connections: %d", c.Database.MaxConns)
	}

	return nil
}

// GridSpec returns the lattice described by the grid section.
func (c *Config) GridSpec() (grid.Spec, error) {
	snap, err := grid.ParseSnapMode(c.Grid.Snap)
	if err != nil {
		return grid.Spec{}, err
	}
	spec := grid.Spec{
		Origin:    geo.Coordinate{Lat: c.Grid.OriginLat, Lon: c.Grid.OriginLon},
		Spacing:   c.Grid.Spacing,
		Precision: c.Grid.Precision,
		Snap:      snap,
	}
	return spec, spec.Validate()
}

// GridBounds returns the bounding box the grid is filtered to.
func (c *Config) GridBounds() grid.Bounds {
	return grid.Bounds{
		MinLat: c.Grid.Bounds.MinLat,
		MaxLat: c.Grid.Bounds.MaxLat,
		MinLon: c.Grid.Bounds.MinLon,
		MaxLon: c.Grid.Bounds.MaxLon,
	}
}

// Unit returns the configured output unit.
func (c *Config) Unit() estimate.Unit {
	unit, err := estimate.ParseUnit(c.Units)
	if err != nil {
		return estimate.Miles
	}
	return unit
}

func getLocale() string {
	locale := os.Getenv("LC_NUMERIC")
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
