// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package record

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wneessen/dist2coast/internal/config"
	"github.com/wneessen/dist2coast/internal/estimate"
	"github.com/wneessen/dist2coast/internal/template"
)

// Writer writes records. Estimates are given in kilometers and converted to the unit of
// the Writer. Every record is flushed to the underlying writer once written.
type Writer interface {
	WriteEstimate(rec Record, set estimate.Set) error
	WritePassthrough(rec Record) error
}

type output struct {
	buf       *bufio.Writer
	unit      estimate.Unit
	precision int
}

func (o *output) writeLine(line string) error {
	if _, err := o.buf.WriteString(line); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := o.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return o.flush()
}

func (o *output) flush() error {
	if err := o.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

func (o *output) convert(set estimate.Set) estimate.Set {
	return set.In(o.unit).Round(o.precision)
}

// NewWriter returns the Writer for the configured output format.
func NewWriter(w io.Writer, conf *config.Config, tpl *template.Template) (Writer, error) {
	out := output{buf: bufio.NewWriter(w), unit: conf.Unit(), precision: conf.Output.Precision}
	switch conf.Output.Format {
	case config.FormatCSV:
		return &CSVWriter{output: out}, nil
	case config.FormatJSON:
		return &JSONWriter{output: out}, nil
	case config.FormatText:
		if tpl == nil {
			return nil, fmt.Errorf("output format %q requires a template", conf.Output.Format)
		}
		return &TextWriter{output: out, tpl: tpl}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", conf.Output.Format)
	}
}

// CSVWriter appends the four estimates to the cleaned query line.
type CSVWriter struct {
	output
}

func (w *CSVWriter) WriteEstimate(rec Record, set estimate.Set) error {
	var line strings.Builder
	line.WriteString(rec.Clean)
	for _, v := range w.convert(set).Values() {
		line.WriteByte(',')
		line.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return w.writeLine(line.String())
}

func (w *CSVWriter) WritePassthrough(rec Record) error {
	return w.writeLine(rec.Raw)
}

// JSONWriter writes one JSON object per line.
type JSONWriter struct {
	output
}

type jsonRecord struct {
	Line      int           `json:"line"`
	ID        string        `json:"id,omitempty"`
	Latitude  *float64      `json:"lat,omitempty"`
	Longitude *float64      `json:"lon,omitempty"`
	Unit      estimate.Unit `json:"unit,omitempty"`
	Estimates *estimate.Set `json:"estimates,omitempty"`
	Raw       string        `json:"raw,omitempty"`
}

func (w *JSONWriter) WriteEstimate(rec Record, set estimate.Set) error {
	converted := w.convert(set)
	return w.write(jsonRecord{
		Line:      rec.Line,
		ID:        rec.ID,
		Latitude:  &rec.Coord.Lat,
		Longitude: &rec.Coord.Lon,
		Unit:      w.unit,
		Estimates: &converted,
	})
}

func (w *JSONWriter) WritePassthrough(rec Record) error {
	return w.write(jsonRecord{Line: rec.Line, Raw: rec.Raw})
}

func (w *JSONWriter) write(rec jsonRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return w.writeLine(string(data))
}

// TextWriter renders estimates with a text template.
type TextWriter struct {
	output
	tpl *template.Template
}

func (w *TextWriter) WriteEstimate(rec Record, set estimate.Set) error {
	converted := w.convert(set)
	data := template.Data{
		Line:            rec.Line,
		ID:              rec.ID,
		Latitude:        rec.Coord.Lat,
		Longitude:       rec.Coord.Lon,
		Unit:            string(w.unit),
		Closest:         converted.Closest,
		SimpleAverage:   converted.SimpleAverage,
		WeightedAverage: converted.WeightedAverage,
		Trigonometric:   converted.Trigonometric,
	}
	if err := w.tpl.Execute(w.buf, data); err != nil {
		return err
	}
	return w.flush()
}

func (w *TextWriter) WritePassthrough(rec Record) error {
	return w.writeLine(rec.Raw)
}
