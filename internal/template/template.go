// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package template

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/wneessen/dist2coast/internal/config"
)

// Data is the context a text output template is rendered with.
type Data struct {
	Line      int
	ID        string
	Latitude  float64
	Longitude float64
	Unit      string

	Closest         float64
	SimpleAverage   float64
	WeightedAverage float64
	Trigonometric   float64
}

// Template renders estimates with a user supplied text/template.
type Template struct {
	Text      *template.Template
	printer   *message.Printer
	precision int
}

func New(conf *config.Config, printer *message.Printer) (*Template, error) {
	tpl := &Template{printer: printer, precision: conf.Output.Precision}

	text, err := template.New("text").Funcs(tpl.templateFuncMap()).Parse(conf.Output.Template)
	if err != nil {
		return tpl, fmt.Errorf("failed to parse text template: %w", err)
	}
	tpl.Text = text

	return tpl, nil
}

// Execute renders data followed by a newline.
func (t *Template) Execute(w io.Writer, data Data) error {
	var buf strings.Builder
	if err := t.Text.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	buf.WriteByte('\n')
	_, err := io.WriteString(w, buf.String())
	return err
}

func (t *Template) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"num":         t.num,
		"floatFormat": floatFormat,
		"pad":         pad,
		"padLeft":     padLeft,
		"lc":          strings.ToLower,
		"uc":          strings.ToUpper,
	}
}

// num formats val with the locale's decimal and grouping separators.
func (t *Template) num(val float64) string {
	if t.printer == nil {
		return floatFormat(val, t.precision)
	}
	return t.printer.Sprint(number.Decimal(val, number.MaxFractionDigits(t.precision)))
}

func floatFormat(val float64, precision int) string {
	pow := math.Pow(10, float64(precision))
	return fmt.Sprintf("%.*f", precision, math.Round(val*pow)/pow)
}

// pad fills val with spaces on the right up to the given display width.
func pad(width int, val string) string {
	return runewidth.FillRight(val, width)
}

// padLeft fills val with spaces on the left up to the given display width.
func padLeft(width int, val string) string {
	return runewidth.FillLeft(val, width)
}
