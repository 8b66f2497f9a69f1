package domain

import (
	"fmt"
	"strings"
)

type Temperature string

const (
	TemperatureHot    Temperature = "hot"
	TemperatureCold   Temperature = "cold"
	TemperatureFrozen Temperature = "frozen"
)

// Temperatures lists the classes in relocation priority order
var Temperatures = []Temperature{TemperatureHot, TemperatureCold, TemperatureFrozen}

// ParseTemperature accepts any casing of hot, cold or frozen
func ParseTemperature(s string) (Temperature, error) {
	t := Temperature(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTemperature, s)
	}
	return t, nil
}

func (t Temperature) Valid() bool {
	switch t {
	case TemperatureHot, TemperatureCold, TemperatureFrozen:
		return true
	default:
		return false
	}
}

// Index maps a temperature to a dense 0..2 index
func (t Temperature) Index() int {
	switch t {
	case TemperatureHot:
		return 0
	case TemperatureCold:
		return 1
	case TemperatureFrozen:
		return 2
	default:
		return -1
	}
}

// ShelfKind names one of the four shelves
type ShelfKind string

const (
	ShelfHot      ShelfKind = "hot"
	ShelfCold     ShelfKind = "cold"
	ShelfFrozen   ShelfKind = "frozen"
	ShelfOverflow ShelfKind = "overflow"
	ShelfNone     ShelfKind = ""
)

// ShelfFor returns the regular shelf matching a temperature
func ShelfFor(t Temperature) ShelfKind {
	switch t {
	case TemperatureHot:
		return ShelfHot
	case TemperatureCold:
		return ShelfCold
	case TemperatureFrozen:
		return ShelfFrozen
	default:
		return ShelfNone
	}
}
