// aviation/units.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	metersPerFoot         = 0.3048
	metersPerNauticalMile = 1852.0
	feetPerFlightLevel    = 100.0
)

// UnlimitedAltitudeMeters stands in for "UNL" ceilings; it is far above
// anything a published airspace ceiling can reach.
const UnlimitedAltitudeMeters = 999999

func FeetToMeters(ft float32) float32 {
	return ft * metersPerFoot
}

func MetersToFeet(m float32) float32 {
	return m / metersPerFoot
}

func NMToMeters(nm float32) float32 {
	return nm * metersPerNauticalMile
}

func MetersToNM(m float32) float32 {
	return m / metersPerNauticalMile
}

func FlightLevelToMeters(fl float32) float32 {
	return FeetToMeters(fl * feetPerFlightLevel)
}

// DistanceUnit records the unit a distance was declared in by the source
// text. Radii are always stored in meters internally; the declared unit
// is kept for provenance since conversion direction is keyed off of it.
type DistanceUnit int

const (
	UnitUnknown DistanceUnit = iota
	UnitMeters
	UnitKilometers
	UnitNauticalMiles
)

func (u DistanceUnit) String() string {
	switch u {
	case UnitMeters:
		return "m"
	case UnitKilometers:
		return "km"
	case UnitNauticalMiles:
		return "NM"
	default:
		return "?"
	}
}

// ToMeters converts a value declared in unit u to meters.
func (u DistanceUnit) ToMeters(v float32) (float32, error) {
	switch u {
	case UnitMeters:
		return v, nil
	case UnitKilometers:
		return v * 1000, nil
	case UnitNauticalMiles:
		return NMToMeters(v), nil
	default:
		return 0, &FormatError{Token: u.String(), Err: fmt.Errorf("unknown distance unit")}
	}
}

// AltitudeDatum gives the vertical reference for an AltitudeLimit.
type AltitudeDatum int

const (
	DatumMSL AltitudeDatum = iota // meters above mean sea level
	DatumFlightLevel
	DatumGround
	DatumUnlimited
)

func (d AltitudeDatum) MarshalJSON() ([]byte, error) {
	switch d {
	case DatumMSL:
		return []byte(`"msl"`), nil
	case DatumFlightLevel:
		return []byte(`"fl"`), nil
	case DatumGround:
		return []byte(`"gnd"`), nil
	case DatumUnlimited:
		return []byte(`"unl"`), nil
	default:
		return nil, fmt.Errorf("%d: unknown altitude datum", d)
	}
}

func (d *AltitudeDatum) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"msl"`:
		*d = DatumMSL
	case `"fl"`:
		*d = DatumFlightLevel
	case `"gnd"`:
		*d = DatumGround
	case `"unl"`:
		*d = DatumUnlimited
	default:
		return fmt.Errorf("%s: unknown altitude datum", string(b))
	}
	return nil
}

// AltitudeLimit is a vertical limit: a value interpreted with respect to
// a datum. For DatumMSL the value is meters above mean sea level; for
// DatumFlightLevel it is the flight level number. Ground and unlimited
// limits carry no meaningful value.
type AltitudeLimit struct {
	Value float32       `json:"value"`
	Datum AltitudeDatum `json:"datum"`
}

// Meters returns the limit expressed as meters AMSL. Flight levels are
// converted at the standard 100 ft per level; no pressure correction is
// attempted.
func (a AltitudeLimit) Meters() float32 {
	switch a.Datum {
	case DatumFlightLevel:
		return FlightLevelToMeters(a.Value)
	case DatumGround:
		return 0
	case DatumUnlimited:
		return UnlimitedAltitudeMeters
	default:
		return a.Value
	}
}

// Feet returns the limit expressed as feet AMSL.
func (a AltitudeLimit) Feet() float32 {
	switch a.Datum {
	case DatumFlightLevel:
		return a.Value * feetPerFlightLevel
	case DatumGround:
		return 0
	case DatumUnlimited:
		return MetersToFeet(UnlimitedAltitudeMeters)
	default:
		return MetersToFeet(a.Value)
	}
}

// Convert returns the limit's value expressed in the given target datum.
// Converting to ground or unlimited datums is meaningless and returns an
// error.
func (a AltitudeLimit) Convert(target AltitudeDatum) (float32, error) {
	switch target {
	case DatumMSL:
		return a.Meters(), nil
	case DatumFlightLevel:
		return a.Feet() / feetPerFlightLevel, nil
	default:
		return 0, fmt.Errorf("cannot convert altitude to datum %d", target)
	}
}

var (
	reFlightLevel = regexp.MustCompile(`^FL\s*([0-9]+)$`)
	reFeet        = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*F[T]?\b\s*(AMSL|AGL|MSL)?$`)
	reMeters      = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*M\b\s*(AMSL|AGL|MSL)?$`)
	reBareNumber  = regexp.MustCompile(`^[0-9]+$`)
)

// ParseAltitude parses an altitude token as it appears in vertical-limit
// columns: "GND", "SFC", "UNL", "FL95", "1500 FT AMSL", "2300 m", or a
// bare number (interpreted as feet, the convention of the source tables).
func ParseAltitude(s string) (AltitudeLimit, error) {
	t := strings.ToUpper(strings.TrimSpace(s))

	switch t {
	case "GND", "SFC":
		return AltitudeLimit{Datum: DatumGround}, nil
	case "UNL", "UNLIMITED":
		return AltitudeLimit{Datum: DatumUnlimited}, nil
	}

	if m := reFlightLevel.FindStringSubmatch(t); m != nil {
		fl, err := strconv.ParseFloat(m[1], 32)
		if err != nil {
			return AltitudeLimit{}, &FormatError{Token: s, Err: err}
		}
		return AltitudeLimit{Value: float32(fl), Datum: DatumFlightLevel}, nil
	}
	if m := reFeet.FindStringSubmatch(t); m != nil {
		ft, err := strconv.ParseFloat(m[1], 32)
		if err != nil {
			return AltitudeLimit{}, &FormatError{Token: s, Err: err}
		}
		return AltitudeLimit{Value: FeetToMeters(float32(ft)), Datum: DatumMSL}, nil
	}
	if m := reMeters.FindStringSubmatch(t); m != nil {
		mv, err := strconv.ParseFloat(m[1], 32)
		if err != nil {
			return AltitudeLimit{}, &FormatError{Token: s, Err: err}
		}
		return AltitudeLimit{Value: float32(mv), Datum: DatumMSL}, nil
	}
	if reBareNumber.MatchString(t) {
		ft, _ := strconv.ParseFloat(t, 32)
		return AltitudeLimit{Value: FeetToMeters(float32(ft)), Datum: DatumMSL}, nil
	}

	return AltitudeLimit{}, &FormatError{Token: s}
}
