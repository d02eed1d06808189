package idaia

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is a recognized length unit token.
type Unit string

const (
	UnitMillimeter Unit = "mm"
	UnitCentimeter Unit = "cm"
	UnitDecimeter  Unit = "dm"
	UnitMeter      Unit = "m"
	UnitInch       Unit = "in"
	UnitFoot       Unit = "ft"
)

// unitFactors maps a unit token to its millimeter conversion factor.
// Inch and foot carry their quote-mark aliases.
var unitFactors = map[string]float64{
	"mm": 1.0,
	"cm": 10.0,
	"dm": 100.0,
	"m":  1000.0,
	"in": 25.4,
	`"`:  25.4,
	"ft": 304.8,
	"'":  304.8,
}

// UnitError indicates a numeric token that could not be parsed.
// Unknown unit tokens are not an error; they default to millimeters.
type UnitError struct {
	Token string
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("malformed numeric token %q", e.Token)
}

// UnitFactor returns the millimeter factor for a unit token,
// case-insensitive, with surrounding whitespace ignored. Unknown or
// empty tokens default to millimeters. The silent default is a
// deliberate leniency: prompts routinely omit units, and millimeters
// are the canonical unit downstream.
func UnitFactor(token string) float64 {
	f, ok := unitFactors[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return 1.0
	}
	return f
}

// Normalize converts a value expressed in the given unit token to
// millimeters. It never fails: unknown units are treated as millimeters.
func Normalize(value float64, unitToken string) float64 {
	return value * UnitFactor(unitToken)
}

// ParseQuantity parses a numeric string plus a unit token into a
// millimeter value. The only failure mode is a non-numeric value, which
// yields a *UnitError. A missing or unrecognized unit defaults to mm.
func ParseQuantity(value, unitToken string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, &UnitError{Token: value}
	}
	return Normalize(v, unitToken), nil
}
