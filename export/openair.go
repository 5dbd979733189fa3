// export/openair.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package export

import (
	"fmt"
	"io"

	"github.com/mmp/luftrom/aviation"
	"github.com/mmp/luftrom/math"
)

// OpenAir's class vocabulary is narrower than the source documents';
// anything unmapped becomes Q (danger/other).
var openAirClass = map[string]string{
	"A": "A",
	"B": "B",
	"C": "C",
	"D": "D",
	"G": "G",
	"P": "P",
	"R": "R",
}

// WriteOpenAir writes the records in the OpenAir airspace format used by
// flight computers and planning tools. Altitudes are emitted in feet if
// feet is set, meters MSL otherwise; some consumers only accept one or
// the other, so callers typically write both variants.
func WriteOpenAir(w io.Writer, recs []*aviation.AirspaceRecord, feet bool) error {
	for _, r := range recs {
		if len(r.Ring) == 0 {
			continue
		}

		class, ok := openAirClass[r.Class]
		if !ok {
			class = "Q"
		}

		fmt.Fprintf(w, "AC %s\n", class)
		fmt.Fprintf(w, "AN %s\n", r.Name)
		if feet {
			fmt.Fprintf(w, "AL %d ft\n", int(r.Floor.Feet()))
			fmt.Fprintf(w, "AH %d ft\n", int(r.Ceiling.Feet()))
		} else {
			fmt.Fprintf(w, "AL %d MSL\n", int(r.Floor.Meters()))
			fmt.Fprintf(w, "AH %d MSL\n", int(r.Ceiling.Meters()))
		}
		for _, p := range r.Ring {
			fmt.Fprintf(w, "DP %s\n", openAirCoord(p))
		}
		if r.Source.Href != "" {
			fmt.Fprintf(w, "* Source: %s\n", r.Source.Href)
		}
		fmt.Fprintf(w, "*\n*\n")
	}
	return nil
}

// openAirCoord formats a position as "59:41:06 N  010:31:58 E".
func openAirCoord(p math.Point2LL) string {
	dms := func(v float32, degDigits int) string {
		deg := int(v)
		v = (v - float32(deg)) * 60
		min := int(v)
		sec := int((v - float32(min)) * 60)
		return fmt.Sprintf("%0*d:%02d:%02d", degDigits, deg, min, sec)
	}

	ns, ew := "N", "E"
	lat, lon := p.Latitude(), p.Longitude()
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%s %s  %s %s", dms(lat, 2), ns, dms(lon, 3), ew)
}
