package weather

import (
	"fmt"
	"strings"
)

// Unit is a temperature display unit.
type Unit string

const (
	UnitCelsius    Unit = "C"
	UnitFahrenheit Unit = "F"
)

// CelsiusToFahrenheit converts c degrees Celsius to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// ParseUnit accepts "C", "F", "°C", "°F", "celsius" or "fahrenheit" in any case.
// An empty string yields Celsius.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "°")) {
	case "", "c", "celsius":
		return UnitCelsius, nil
	case "f", "fahrenheit":
		return UnitFahrenheit, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", s)
	}
}

// FromCelsius converts a Celsius value into u. Unknown units are treated as Celsius.
func (u Unit) FromCelsius(c float64) float64 {
	if u == UnitFahrenheit {
		return CelsiusToFahrenheit(c)
	}
	return c
}

// Symbol returns the display suffix, e.g. "°C".
func (u Unit) Symbol() string {
	if u == UnitFahrenheit {
		return "°F"
	}
	return "°C"
}
