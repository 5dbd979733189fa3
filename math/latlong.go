// math/latlong.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
	"regexp"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the mean radius of the spherical earth model used
// for all great-circle computations.
const EarthRadiusMeters = 6371000

const NMPerLatitude = 60

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float32

func (p Point2LL) Longitude() float32 {
	return p[0]
}

func (p Point2LL) Latitude() float32 {
	return p[1]
}

func (p Point2LL) IsZero() bool {
	return p[0] == 0 && p[1] == 0
}

// DDString returns the position in decimal degrees, e.g.:
// (59.685001, 10.532778)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// DMSString returns the position in degrees, minutes, seconds, e.g.
// N059.41.06.000,E010.31.58.000
func (p Point2LL) DMSString() string {
	format := func(v float32) string {
		s := fmt.Sprintf("%03d", int(v))
		v -= Floor(v)
		v *= 60
		s += fmt.Sprintf(".%02d", int(v))
		v -= Floor(v)
		v *= 60
		s += fmt.Sprintf(".%02d", int(v))
		v -= Floor(v)
		v *= 1000
		s += fmt.Sprintf(".%03d", int(v))
		return s
	}

	var s string
	if p[1] > 0 {
		s = "N"
	} else {
		s = "S"
	}
	s += format(Abs(p[1]))

	if p[0] > 0 {
		s += ",E"
	} else {
		s += ",W"
	}
	s += format(Abs(p[0]))

	return s
}

var (
	// pair of floats, latitude first (no exponents)
	reLatLongFloat = regexp.MustCompile(`^(\-?[0-9]+\.[0-9]+), *(\-?[0-9]+\.[0-9]+)$`)
	// compact AIP notation, e.g. "594106N 0103158E"; seconds are
	// optional and may carry a decimal fraction.
	reCompactDMS = regexp.MustCompile(`^([0-9]{4,6}(?:\.[0-9]+)?)([NS])[ ]+([0-9]{5,7}(?:\.[0-9]+)?)([EW])$`)
)

// parseCompactDMS converts a run of digits in DDMMSS (degWidth 2) or
// DDDMMSS (degWidth 3) layout to decimal degrees. Seconds are optional.
func parseCompactDMS(digits string, degWidth int) (float32, error) {
	if len(digits) < degWidth+2 {
		return 0, fmt.Errorf("%s: too few digits in coordinate", digits)
	}
	deg, err := strconv.Atoi(digits[:degWidth])
	if err != nil {
		return 0, err
	}
	min, err := strconv.Atoi(digits[degWidth : degWidth+2])
	if err != nil {
		return 0, err
	}
	sec := 0.0
	if rest := digits[degWidth+2:]; rest != "" {
		if sec, err = strconv.ParseFloat(rest, 64); err != nil {
			return 0, err
		}
	}
	if min >= 60 || sec >= 60 {
		return 0, fmt.Errorf("%s: minutes/seconds out of range", digits)
	}
	return float32(float64(deg) + float64(min)/60 + sec/3600), nil
}

// Parse positions of the form "N59.41.06.000, E010.31.58.000". This is
// tried by hand before any of the regexps since bulk conversions are
// dominated by this form.
func tryParseDotted(b []byte) (Point2LL, bool) {
	if len(b) == 0 || (b[0] != 'N' && b[0] != 'S') {
		return Point2LL{}, false
	}
	negateLatitude := b[0] == 'S'

	b = b[1:]
	latitude, n, ok := tryParseDottedNumbers(b)
	if !ok {
		return Point2LL{}, false
	}
	if negateLatitude {
		latitude = -latitude
	}
	b = b[n:]

	if len(b) == 0 || b[0] != ',' {
		return Point2LL{}, false
	}
	b = b[1:]

	if len(b) > 0 && b[0] == ' ' {
		b = b[1:]
	}

	if len(b) == 0 || (b[0] != 'E' && b[0] != 'W') {
		return Point2LL{}, false
	}
	negateLongitude := b[0] == 'W'

	b = b[1:]
	longitude, _, ok := tryParseDottedNumbers(b)
	if !ok {
		return Point2LL{}, false
	}
	if negateLongitude {
		longitude = -longitude
	}

	return Point2LL{longitude, latitude}, true
}

// Parse a latlong of the form aaa.bbb.ccc.ddd and return the
// corresponding float32, the number of bytes of b consumed, and a bool
// indicating success or failure.
func tryParseDottedNumbers(b []byte) (float32, int, bool) {
	n := 0
	var ll float64

	scan := func(b []byte) int {
		for i, v := range b {
			if v == '.' || v == ',' {
				return i
			}
		}
		return len(b)
	}

	for i := 0; i < 4; i++ {
		end := scan(b)
		if end == 0 {
			return 0, 0, false
		}

		value := 0
		for _, ch := range b[:end] {
			if ch < '0' || ch > '9' {
				return 0, 0, false
			}
			value *= 10
			value += int(ch - '0')
		}
		if i == 3 {
			// Treat the last set of digits as a decimal, so that
			// Nxx.yy.zz.1 is handled like Nxx.yy.zz.100.
			for j := end; j < 3; j++ {
				value *= 10
			}
		}

		scales := [4]float64{1, 60, 3600, 3600000}
		ll += float64(value) / scales[i]
		n += end
		b = b[end:]

		if i < 3 {
			if len(b) == 0 {
				return 0, 0, false
			}
			b = b[1:]
			n++
		}
	}

	return float32(ll), n, true
}

// ParseLatLong parses a textual position in one of the recognized
// notations: compact DMS with hemisphere letters ("594106N 0103158E",
// optionally parenthesized), dotted DMS ("N59.41.06.000,E010.31.58.000"),
// or signed decimal degrees with latitude first ("59.685, 10.533").
func ParseLatLong(llstr []byte) (Point2LL, error) {
	s := strings.TrimSpace(string(llstr))
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	var p Point2LL
	if pt, ok := tryParseDotted([]byte(s)); ok {
		p = pt
	} else if strs := reCompactDMS.FindStringSubmatch(s); strs != nil {
		lat, err := parseCompactDMS(strs[1], 2)
		if err != nil {
			return Point2LL{}, err
		}
		lon, err := parseCompactDMS(strs[3], 3)
		if err != nil {
			return Point2LL{}, err
		}
		if strs[2] == "S" {
			lat = -lat
		}
		if strs[4] == "W" {
			lon = -lon
		}
		p = Point2LL{lon, lat}
	} else if strs := reLatLongFloat.FindStringSubmatch(s); len(strs) == 3 {
		if l, err := strconv.ParseFloat(strs[1], 32); err != nil {
			return Point2LL{}, err
		} else {
			p[1] = float32(l)
		}
		if l, err := strconv.ParseFloat(strs[2], 32); err != nil {
			return Point2LL{}, err
		} else {
			p[0] = float32(l)
		}
	} else {
		return Point2LL{}, fmt.Errorf("%s: invalid latlong string", s)
	}

	if Abs(p[1]) > 90 {
		return Point2LL{}, fmt.Errorf("%s: latitude out of range", s)
	}
	if Abs(p[0]) > 180 {
		return Point2LL{}, fmt.Errorf("%s: longitude out of range", s)
	}
	return p, nil
}

// NMDistance2LL returns the distance in nautical miles between two
// provided lat-long coordinates.
func NMDistance2LL(a Point2LL, b Point2LL) float32 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	rad := func(d float64) float64 { return d / 180 * gomath.Pi }
	lat1, lon1 := rad(float64(a[1])), rad(float64(a[0]))
	lat2, lon2 := rad(float64(b[1])), rad(float64(b[0]))
	dlat, dlon := lat2-lat1, lon2-lon1

	x := Sqr(gomath.Sin(dlat/2)) + gomath.Cos(lat1)*gomath.Cos(lat2)*Sqr(gomath.Sin(dlon/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	dm := EarthRadiusMeters * c // in metres

	return float32(dm * 0.000539957)
}

// GreatCircleOffset2LL returns the point at the given true bearing (in
// degrees) and distance (in meters) from p, following a great circle on
// the spherical earth.
func GreatCircleOffset2LL(p Point2LL, bearing float32, distance float32) Point2LL {
	lat1 := float64(Radians(p[1]))
	lon1 := float64(Radians(p[0]))
	br := float64(Radians(bearing))
	d := float64(distance) / EarthRadiusMeters // angular distance

	lat2 := gomath.Asin(gomath.Sin(lat1)*gomath.Cos(d) + gomath.Cos(lat1)*gomath.Sin(d)*gomath.Cos(br))
	lon2 := lon1 + gomath.Atan2(gomath.Sin(br)*gomath.Sin(d)*gomath.Cos(lat1),
		gomath.Cos(d)-gomath.Sin(lat1)*gomath.Sin(lat2))

	return Point2LL{Degrees(float32(lon2)), Degrees(float32(lat2))}
}

// GreatCircleBearing returns the initial true bearing in degrees of the
// great circle from a to b, normalized to [0,360).
func GreatCircleBearing(a Point2LL, b Point2LL) float32 {
	lat1 := float64(Radians(a[1]))
	lat2 := float64(Radians(b[1]))
	dlon := float64(Radians(b[0] - a[0]))

	y := gomath.Sin(dlon) * gomath.Cos(lat2)
	x := gomath.Cos(lat1)*gomath.Sin(lat2) - gomath.Sin(lat1)*gomath.Cos(lat2)*gomath.Cos(dlon)
	return NormalizeHeading(Degrees(float32(gomath.Atan2(y, x))))
}

// RingArea returns the absolute area of a polygon ring in square degrees
// via the shoelace formula. The value has no physical meaning; it is only
// useful for ordering rings by approximate size.
func RingArea(ring []Point2LL) float32 {
	var sum float64
	for i := 0; i+1 < len(ring); i++ {
		sum += float64(ring[i][0])*float64(ring[i+1][1]) - float64(ring[i+1][0])*float64(ring[i][1])
	}
	return Abs(float32(sum / 2))
}
