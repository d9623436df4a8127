// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package estimate

import (
	"fmt"
	"strings"
)

// milesPerKilometer is the conversion factor from kilometers to statute miles.
const milesPerKilometer = 0.621371

// Unit is a distance unit for estimate output.
type Unit string

const (
	Kilometers Unit = "km"
	Miles      Unit = "mi"
)

// ParseUnit parses a unit name.
func ParseUnit(unit string) (Unit, error) {
	switch strings.ToLower(unit) {
	case "km", "kilometers", "metric":
		return Kilometers, nil
	case "mi", "miles", "imperial":
		return Miles, nil
	default:
		return "", fmt.Errorf("unsupported unit: %s", unit)
	}
}

// FromKilometers converts v kilometers into the unit.
func (u Unit) FromKilometers(v float64) float64 {
	if u == Miles {
		return v * milesPerKilometer
	}
	return v
}
