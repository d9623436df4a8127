// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package grid

import (
	"bufio"
	"compress/bzip2"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/wneessen/dist2coast/internal/geo"
)

var (
	// ErrEmptyGrid is returned if no grid point survived loading and filtering.
	ErrEmptyGrid = errors.New("reference grid contains no points")

	// ErrInconsistentGrid is returned if the loaded points do not form a complete lattice.
	ErrInconsistentGrid = errors.New("inconsistent reference grid")
)

// Bounds is a latitude/longitude bounding box. The zero value matches everything.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// IsZero reports whether no bounds are set.
func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

// Contains reports whether c lies within the box, edges included.
func (b Bounds) Contains(c geo.Coordinate) bool {
	if b.IsZero() {
		return true
	}
	return b.MinLat <= c.Lat && c.Lat <= b.MaxLat && b.MinLon <= c.Lon && c.Lon <= b.MaxLon
}

// LoadOptions control how a reference grid file is read.
type LoadOptions struct {
	// Bounds restricts the loaded points to a region.
	Bounds Bounds
	// Precision is the number of decimals grid coordinates are keyed at.
	Precision int
}

// Store is an in-memory reference grid. It is immutable once loaded and safe for
// concurrent use.
type Store struct {
	name      string
	precision int
	values    map[Key]float64
	extent    Bounds
}

// NewStore returns a Store for the given points. Negative distances, which the dist2coast
// product uses for points over land, are stored as magnitudes.
func NewStore(name string, precision int, points map[geo.Coordinate]float64) *Store {
	store := &Store{
		name:      name,
		precision: precision,
		values:    make(map[Key]float64, len(points)),
	}
	for coord, dist := range points {
		store.add(coord, dist)
	}
	return store
}

func (s *Store) add(c geo.Coordinate, dist float64) {
	c = c.Round(s.precision)
	if len(s.values) == 0 {
		s.extent = Bounds{MinLat: c.Lat, MaxLat: c.Lat, MinLon: c.Lon, MaxLon: c.Lon}
	}
	s.values[NewKey(c, s.precision)] = math.Abs(dist)
	s.extent.MinLat = math.Min(s.extent.MinLat, c.Lat)
	s.extent.MaxLat = math.Max(s.extent.MaxLat, c.Lat)
	s.extent.MinLon = math.Min(s.extent.MinLon, c.Lon)
	s.extent.MaxLon = math.Max(s.extent.MaxLon, c.Lon)
}

// LoadFile reads a reference grid from path. Files ending in ".bz2" are decompressed on
// the fly.
func LoadFile(path string, opts LoadOptions) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open grid file %q: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var reader io.Reader = file
	if strings.EqualFold(filepath.Ext(path), ".bz2") {
		reader = bzip2.NewReader(file)
	}
	store, err := Load(reader, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load grid file %q: %w", path, err)
	}
	store.name = "file:" + filepath.Base(path)
	return store, nil
}

// Load reads "longitude latitude distance" triples from r. Fields may be separated by
// whitespace, tabs or commas. Empty lines, lines starting with "#" and a single leading
// header line are skipped.
func Load(r io.Reader, opts LoadOptions) (*Store, error) {
	store := NewStore("reader", opts.Precision, nil)
	scanner := bufio.NewScanner(r)
	lineNo, parsed := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		coord, dist, err := parseLine(line)
		if err != nil {
			if parsed == 0 && isHeader(line) {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		parsed++
		if !opts.Bounds.Contains(coord) {
			continue
		}
		store.add(coord, dist)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read grid data: %w", err)
	}
	if store.Len() == 0 {
		return nil, ErrEmptyGrid
	}
	return store, nil
}

func parseLine(line string) (geo.Coordinate, float64, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) != 3 {
		return geo.Coordinate{}, 0, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	var vals [3]float64
	for i, field := range fields {
		val, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return geo.Coordinate{}, 0, fmt.Errorf("failed to parse field %d: %w", i+1, err)
		}
		vals[i] = val
	}
	coord := geo.Coordinate{Lat: vals[1], Lon: vals[0]}
	if !coord.Valid() {
		return geo.Coordinate{}, 0, fmt.Errorf("invalid coordinate: %s", coord)
	}
	return coord, vals[2], nil
}

func isHeader(line string) bool {
	return strings.Contains(strings.ToLower(line), "latitude")
}

// Name returns the name of the store.
func (s *Store) Name() string {
	return s.name
}

// DistanceToCoast returns the distance to coast of lattice coordinate c.
func (s *Store) DistanceToCoast(_ context.Context, c geo.Coordinate) (float64, error) {
	dist, ok := s.values[NewKey(c, s.precision)]
	if !ok {
		return 0, NotFoundError(c)
	}
	return dist, nil
}

// Len returns the number of grid points.
func (s *Store) Len() int {
	return len(s.values)
}

// Extent returns the bounding box of all grid points.
func (s *Store) Extent() Bounds {
	return s.extent
}

// Origin returns the south-west most lattice coordinate of the store.
func (s *Store) Origin() geo.Coordinate {
	return geo.Coordinate{Lat: s.extent.MinLat, Lon: s.extent.MinLon}
}

// Validate checks that the points form a complete lattice with the given spacing: the
// number of distinct latitudes and longitudes must match the extent and every combination
// of both must be present.
func (s *Store) Validate(spacing float64) error {
	lats := make(map[int32]struct{})
	lons := make(map[int32]struct{})
	for key := range s.values {
		lats[key.LatQ] = struct{}{}
		lons[key.LonQ] = struct{}{}
	}

	wantLats := s.axisCount(s.extent.MaxLat-s.extent.MinLat, spacing)
	if len(lats) != wantLats {
		return fmt.Errorf("%w: expected %d distinct latitudes, got %d", ErrInconsistentGrid, wantLats,
			len(lats))
	}
	wantLons := s.axisCount(s.extent.MaxLon-s.extent.MinLon, spacing)
	if len(lons) != wantLons {
		return fmt.Errorf("%w: expected %d distinct longitudes, got %d", ErrInconsistentGrid, wantLons,
			len(lons))
	}
	if len(lats)*len(lons) != len(s.values) {
		return fmt.Errorf("%w: expected %d points, got %d", ErrInconsistentGrid, len(lats)*len(lons),
			len(s.values))
	}
	return nil
}

func (s *Store) axisCount(span, spacing float64) int {
	return int(math.Round(geo.Round(span, s.precision)/spacing)) + 1
}

// All iterates over all grid points ordered by latitude, then longitude.
func (s *Store) All() iter.Seq2[geo.Coordinate, float64] {
	keys := make([]Key, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		if a.LatQ != b.LatQ {
			return int(a.LatQ - b.LatQ)
		}
		return int(a.LonQ - b.LonQ)
	})
	return func(yield func(geo.Coordinate, float64) bool) {
		for _, key := range keys {
			if !yield(key.Coordinate(s.precision), s.values[key]) {
				return
			}
		}
	}
}

// WriteCSV writes all grid points as "longitude,latitude,distance" with a header line.
func (s *Store) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"longitude", "latitude", "distance"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for coord, dist := range s.All() {
		record := []string{
			strconv.FormatFloat(coord.Lon, 'f', -1, 64),
			strconv.FormatFloat(coord.Lat, 'f', -1, 64),
			strconv.FormatFloat(dist, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
