// parser/parser_test.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package parser

import (
	"testing"
	"time"

	"github.com/mmp/luftrom/aviation"
)

func parseText(t *testing.T, dialect, text string) ([]*aviation.AirspaceRecord, int) {
	t.Helper()
	d, err := DialectFromTag(dialect)
	if err != nil {
		t.Fatalf("%s: %v", dialect, err)
	}
	recs, warnings := New(d, nil).Parse(aviation.SourceRef{Document: "test", Href: "https://example.org/aip"}, text)
	return recs, len(warnings.Warnings())
}

func TestParseControlZone(t *testing.T) {
	// A control zone in the usual aerodrome-chapter layout: coordinate
	// list with an arc, explicit class, and vertical limits as a range.
	text := `ATS airspace

Somewhere CTR

594106N 0103158E - 594109N 0103219E -
583000N 0103000E - clockwise along an arc of 5 NM radius centred on 583500N 0102000E - 584000N 0101000E -
594106N 0103158E

Class D

GND to 9500

AD 2.4 Some other table
`
	recs, nwarn := parseText(t, "en-aip", text)
	if nwarn != 0 {
		t.Errorf("expected no warnings, got %d", nwarn)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}

	r := recs[0]
	if r.Name != "Somewhere CTR" {
		t.Errorf("got name %q", r.Name)
	}
	if r.Class != "D" {
		t.Errorf("got class %q", r.Class)
	}
	if r.Floor.Datum != aviation.DatumGround {
		t.Errorf("got floor %+v", r.Floor)
	}
	if r.Ceiling.Datum != aviation.DatumMSL || r.Ceiling.Meters() < 2895 || r.Ceiling.Meters() > 2896 {
		t.Errorf("got ceiling %+v", r.Ceiling)
	}
	if r.Temporary {
		t.Errorf("permanent airspace marked temporary")
	}

	// 4 line points, then arc plus its endpoint, then the closing point.
	var lines, arcs int
	for _, seg := range r.Boundary {
		switch seg.Type {
		case aviation.SegmentLineTo:
			lines++
		case aviation.SegmentArcTo:
			arcs++
			if !seg.Clockwise {
				t.Errorf("arc direction not preserved")
			}
			if seg.Radius != 5*1852 {
				t.Errorf("got arc radius %g m", seg.Radius)
			}
		}
	}
	if lines != 5 || arcs != 1 {
		t.Errorf("got %d line and %d arc segments", lines, arcs)
	}

	if r.Source.Document != "test" || r.Source.Section == "" {
		t.Errorf("missing provenance: %+v", r.Source)
	}
}

func TestParseVerticalLimitOrder(t *testing.T) {
	// Single-value vertical limits appear upper first, as in the source
	// tables.
	text := `Farris TIA
594106N 0103158E - 594109N 0103219E - 583000N 0103000E
FL 135
4500 FT AMSL
`
	recs, _ := parseText(t, "en-enr", text)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r.Ceiling.Datum != aviation.DatumFlightLevel || r.Ceiling.Value != 135 {
		t.Errorf("got ceiling %+v", r.Ceiling)
	}
	if r.Floor.Datum != aviation.DatumMSL || r.Floor.Feet() < 4499 || r.Floor.Feet() > 4501 {
		t.Errorf("got floor %+v", r.Floor)
	}
}

func TestHeaderClosesPreviousRecord(t *testing.T) {
	// A record with no content lines is still emitted when the next
	// header arrives; losing it silently would mask extraction bugs.
	text := `Alpha CTR
Bravo TMA
594106N 0103158E - 594109N 0103219E - 583000N 0103000E
`
	recs, _ := parseText(t, "en-enr", text)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Name != "Alpha CTR" || len(recs[0].Boundary) != 0 {
		t.Errorf("got %q with %d segments", recs[0].Name, len(recs[0].Boundary))
	}
	if recs[0].Class != "D" {
		t.Errorf("expected class D inferred from CTR, got %q", recs[0].Class)
	}
	if recs[1].Name != "Bravo TMA" || len(recs[1].Boundary) != 3 {
		t.Errorf("got %q with %d segments", recs[1].Name, len(recs[1].Boundary))
	}
}

func TestMalformedSegmentWarns(t *testing.T) {
	// 599961N has seconds out of range; the point is dropped with a
	// warning and the rest of the record survives.
	text := `Bravo TMA
594106N 0103158E - 599961N 0103219E - 594109N 0103219E - 583000N 0103000E
`
	recs, nwarn := parseText(t, "en-enr", text)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if nwarn != 1 {
		t.Errorf("expected 1 warning, got %d", nwarn)
	}
	if len(recs[0].Boundary) != 3 {
		t.Errorf("got %d boundary segments", len(recs[0].Boundary))
	}
}

func TestContinuationLines(t *testing.T) {
	// Column layout breaks boundary descriptions mid-coordinate; the
	// parser joins such lines before interpreting them.
	text := `Bravo TMA
594106N 0103158E - 594109N
0103219E - 583000N 0103000E
`
	recs, nwarn := parseText(t, "en-enr", text)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if nwarn != 0 {
		t.Errorf("expected no warnings, got %d", nwarn)
	}
	if len(recs[0].Boundary) != 3 {
		t.Errorf("got %d boundary segments", len(recs[0].Boundary))
	}
}

func TestParseRestrictedAreaWithValidity(t *testing.T) {
	// A danger area defined by a circle with an NM radius and an
	// activation window.
	text := `EN R102 Somewhere
A circle with radius 5 NM centred on 594106N 0103158E
FL 135
GND
FROM: 26/03/01 08:00 TO: 26/03/15 16:00
SCHEDULE: MON-FRI 0700-1500
`
	recs, nwarn := parseText(t, "en-enr", text)
	if nwarn != 0 {
		t.Errorf("expected no warnings, got %d", nwarn)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}

	r := recs[0]
	if r.Class != "R" {
		t.Errorf("got class %q", r.Class)
	}
	if len(r.Boundary) != 1 || r.Boundary[0].Type != aviation.SegmentCircle {
		t.Fatalf("got boundary %+v", r.Boundary)
	}
	// Declared in NM, stored in meters.
	if r.Boundary[0].Radius != 5*1852 || r.Boundary[0].RadiusUnit != aviation.UnitNauticalMiles {
		t.Errorf("got radius %g m in %s", r.Boundary[0].Radius, r.Boundary[0].RadiusUnit)
	}

	if !r.Temporary {
		t.Errorf("record with validity window not marked temporary")
	}
	if len(r.Validity) != 1 {
		t.Fatalf("got %d validity windows", len(r.Validity))
	}
	w := r.Validity[0]
	if want := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC); !w.From.Equal(want) {
		t.Errorf("got window start %v, expected %v", w.From, want)
	}
	if want := time.Date(2026, 3, 15, 16, 0, 0, 0, time.UTC); !w.To.Equal(want) {
		t.Errorf("got window end %v, expected %v", w.To, want)
	}
	if w.Schedule != "MON-FRI 0700-1500" {
		t.Errorf("got schedule %q", w.Schedule)
	}

	ring, err := aviation.BuildPolygon(r.Boundary, aviation.DefaultSamplingConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ring) < aviation.MinCirclePoints || ring[0] != ring[len(ring)-1] {
		t.Errorf("got %d-point ring for circle", len(ring))
	}
}

func TestEndToEndControlZone(t *testing.T) {
	// Four edges and single-value vertical limits all the way to the
	// polygon ring: five points with the closure, ceiling at FL95.
	text := `Somewhere CTR
594106N 0103158E - 594109N 0103219E -
583000N 0103000E - 583000N 0102000E
FL 95
GND
`
	recs, nwarn := parseText(t, "en-enr", text)
	if len(recs) != 1 || nwarn != 0 {
		t.Fatalf("got %d records, %d warnings", len(recs), nwarn)
	}
	r := recs[0]

	ring, err := aviation.BuildPolygon(r.Boundary, aviation.DefaultSamplingConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ring) != 5 || ring[0] != ring[4] {
		t.Errorf("got ring %v", ring)
	}
	if r.Floor.Datum != aviation.DatumGround {
		t.Errorf("got floor %+v", r.Floor)
	}
	if m := r.Ceiling.Meters(); m < 2895 || m > 2896 {
		t.Errorf("got ceiling %g m", m)
	}
}

func TestSectionGates(t *testing.T) {
	// The aerodrome-chapter dialect ignores everything outside the ATS
	// airspace section; the enroute dialect has no such gates.
	text := `Alpha CTR
594106N 0103158E - 594109N 0103219E - 583000N 0103000E
`
	if recs, _ := parseText(t, "en-aip", text); len(recs) != 0 {
		t.Errorf("expected no records outside airspace section, got %d", len(recs))
	}
	if recs, _ := parseText(t, "en-enr", text); len(recs) != 1 {
		t.Errorf("expected 1 record, got %d", len(recs))
	}
}

func TestUnrecognizedLinesIgnored(t *testing.T) {
	text := `Bravo TMA
Operated by Somewhere Approach on 120.45 MHz
594106N 0103158E - 594109N 0103219E - 583000N 0103000E
Callsign SOMEWHERE APPROACH
`
	recs, nwarn := parseText(t, "en-enr", text)
	if len(recs) != 1 || nwarn != 0 {
		t.Fatalf("got %d records, %d warnings", len(recs), nwarn)
	}
	if len(recs[0].Boundary) != 3 {
		t.Errorf("got %d boundary segments", len(recs[0].Boundary))
	}
}
