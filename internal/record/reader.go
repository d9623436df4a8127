// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package record reads address point records and writes them back with their estimated
// distances to coast.
package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wneessen/dist2coast/internal/geo"
)

// ErrInvalidRecord is returned for query lines whose coordinates cannot be parsed.
var ErrInvalidRecord = errors.New("invalid record")

// Record is a single input line. Lines with exactly two commas are queries of the form
// "id,lat,lon"; every other line is passed through unchanged.
type Record struct {
	Line  int
	Raw   string
	Clean string
	ID    string
	Coord geo.Coordinate
	Query bool
}

// Reader reads records line by line.
type Reader struct {
	reader *bufio.Reader
	line   int
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(r)}
}

// Next returns the next record. It returns io.EOF once all lines have been read. A query
// line with invalid coordinates is returned together with an error wrapping
// ErrInvalidRecord, so the caller may still pass it through.
func (r *Reader) Next() (Record, error) {
	text, err := r.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || text == "") {
		return Record{}, err
	}
	r.line++
	return Parse(r.line, text)
}

// Parse parses a single input line.
func Parse(line int, text string) (Record, error) {
	raw := strings.TrimRight(text, "\r\n")
	rec := Record{Line: line, Raw: raw}
	if strings.Count(raw, ",") != 2 {
		return rec, nil
	}

	rec.Query = true
	rec.Clean = strings.ReplaceAll(raw, " ", "")
	fields := strings.Split(rec.Clean, ",")
	rec.ID = fields[0]
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return rec, fmt.Errorf("line %d: %w: latitude %q", line, ErrInvalidRecord, fields[1])
	}
	lon, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return rec, fmt.Errorf("line %d: %w: longitude %q", line, ErrInvalidRecord, fields[2])
	}
	rec.Coord = geo.Coordinate{Lat: lat, Lon: lon}
	return rec, nil
}
