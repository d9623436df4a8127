// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package i18n resolves the locale used for formatting numbers in human readable output.
package i18n

import (
	"fmt"

	"github.com/Xuanwo/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Tag returns the language tag for loc. An empty loc is detected from the environment and
// falls back to English if detection fails.
func Tag(loc string) (language.Tag, error) {
	if loc == "" {
		tag, err := locale.Detect()
		if err != nil {
			return language.English, nil
		}
		return tag, nil
	}
	tag, err := language.Parse(loc)
	if err != nil {
		return language.Und, fmt.Errorf("failed to parse locale %q: %w", loc, err)
	}
	return tag, nil
}

// New returns a message printer for the given locale.
func New(loc string) (*message.Printer, error) {
	tag, err := Tag(loc)
	if err != nil {
		return nil, err
	}
	return message.NewPrinter(tag), nil
}
