// assembler/assembler_test.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package assembler

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mmp/luftrom/aviation"
	"github.com/mmp/luftrom/math"
)

func triangle(lon, lat, size float32) []aviation.BoundarySegment {
	return []aviation.BoundarySegment{
		{Type: aviation.SegmentLineTo, Point: math.Point2LL{lon, lat}},
		{Type: aviation.SegmentLineTo, Point: math.Point2LL{lon + size, lat}},
		{Type: aviation.SegmentLineTo, Point: math.Point2LL{lon, lat + size}},
	}
}

func record(name string, boundary []aviation.BoundarySegment) *aviation.AirspaceRecord {
	return &aviation.AirspaceRecord{
		Name:     name,
		Class:    "D",
		Boundary: boundary,
		Ceiling:  aviation.AltitudeLimit{Value: 95, Datum: aviation.DatumFlightLevel},
		Source:   aviation.SourceRef{Document: "a.txt", Section: "line 1"},
	}
}

func TestNormalizeName(t *testing.T) {
	for _, c := range []struct{ in, want string }{
		{"Oslo TMA", "OSLO TMA"},
		{"  oslo   tma ", "OSLO TMA"},
		{"Farris TIA cont.", "FARRIS TIA"},
		{"Farris TIA CONT", "FARRIS TIA"},
	} {
		if got := NormalizeName(c.in); got != c.want {
			t.Errorf("%q: got %q, expected %q", c.in, got, c.want)
		}
	}
}

func TestMergeCollapsesDuplicates(t *testing.T) {
	// The same airspace parsed from two documents, differing only in
	// name case and a validity window, collapses to a single record.
	a := record("Somewhere CTR", triangle(10, 59, 1))
	b := record("SOMEWHERE CTR", triangle(10, 59, 1))
	b.Validity = []aviation.ValidityWindow{{From: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}}
	b.Source = aviation.SourceRef{Document: "b.txt", Section: "line 40"}

	asm := New(nil)
	asm.Add([]*aviation.AirspaceRecord{a})
	asm.Add([]*aviation.AirspaceRecord{b})

	recs, err := asm.Records()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record after merge, got %d", len(recs))
	}
	if len(recs[0].Validity) != 1 {
		t.Errorf("validity window lost in merge: %+v", recs[0].Validity)
	}
	if asm.Warnings().HaveWarnings() {
		t.Errorf("unexpected warnings: %s", asm.Warnings())
	}

	// The merged record must not alias the caller's.
	a.Boundary[0].Point = math.Point2LL{0, 0}
	if recs[0].Boundary[0].Point.IsZero() {
		t.Errorf("assembled record aliases caller's boundary")
	}
}

func TestMergeKeepsConflicts(t *testing.T) {
	// Same name, same boundary, different ceiling: both definitions
	// survive, the later one renamed, and the conflict is warned about
	// with both sources.
	a := record("Somewhere CTR", triangle(10, 59, 1))
	b := record("Somewhere CTR", triangle(10, 59, 1))
	b.Ceiling = aviation.AltitudeLimit{Value: 135, Datum: aviation.DatumFlightLevel}
	b.Source = aviation.SourceRef{Document: "b.txt", Section: "line 40"}

	asm := New(nil)
	asm.Add([]*aviation.AirspaceRecord{a, b})

	recs, err := asm.Records()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected both conflicting records, got %d", len(recs))
	}

	names := []string{recs[0].Name, recs[1].Name}
	var orig, renamed *aviation.AirspaceRecord
	for _, r := range recs {
		if r.Name == "Somewhere CTR" {
			orig = r
		} else if r.Name == "Somewhere CTR 2" {
			renamed = r
		}
	}
	if orig == nil || renamed == nil {
		t.Fatalf("got names %v", names)
	}
	if renamed.Source.Document != "b.txt" {
		t.Errorf("renamed record lost provenance: %+v", renamed.Source)
	}

	warnings := asm.Warnings().Warnings()
	if len(warnings) != 1 {
		t.Fatalf("expected 1 conflict warning, got %d", len(warnings))
	}
	if !strings.Contains(warnings[0].Message, "a.txt") || !strings.Contains(warnings[0].Message, "b.txt") {
		t.Errorf("conflict warning does not name both sources: %s", warnings[0])
	}
}

func TestLinkActivities(t *testing.T) {
	published := record("EN R102 Somewhere", triangle(10, 59, 1))

	asm := New(nil)
	asm.Add([]*aviation.AirspaceRecord{published})

	window := aviation.ValidityWindow{
		From: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 5, 3, 16, 0, 0, 0, time.UTC),
	}
	activation := &aviation.TemporaryActivity{
		ID:        "A0123/26",
		AreaNames: []string{"EN R102", "EN R102 Somewhere"},
		Record: &aviation.AirspaceRecord{
			Name:     "EN R102 Somewhere",
			Validity: []aviation.ValidityWindow{window},
		},
	}
	newArea := &aviation.TemporaryActivity{
		ID:        "A0124/26",
		AreaNames: []string{"ENR138"},
		Record:    record("ENR138 Lommedalen", triangle(11, 60, 1)),
	}
	asm.LinkActivities([]*aviation.TemporaryActivity{activation, newArea})

	if len(activation.Resolved) != 1 {
		t.Fatalf("expected 1 resolved record, got %d", len(activation.Resolved))
	}
	r := activation.Resolved[0]
	if !r.Temporary || len(r.Validity) != 1 || !r.Validity[0].From.Equal(window.From) {
		t.Errorf("activation window not attached: %+v", r.Validity)
	}

	// The unmatched establishing NOTAM contributes its own record.
	recs, err := asm.Records()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("expected 2 records, got %d", len(recs))
	}
}

func TestBuildGeometry(t *testing.T) {
	good := record("Bravo TMA", triangle(10, 59, 2))
	degenerate := record("Alpha CTR", []aviation.BoundarySegment{
		{Type: aviation.SegmentLineTo, Point: math.Point2LL{10, 59}},
	})
	empty := record("Charlie TIZ", nil)

	asm := New(nil)
	asm.Add([]*aviation.AirspaceRecord{good, degenerate, empty})
	asm.BuildGeometry(aviation.DefaultSamplingConfig())

	recs, err := asm.Records()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records dropped by geometry pass: %d", len(recs))
	}

	byName := make(map[string]*aviation.AirspaceRecord)
	for _, r := range recs {
		byName[r.Name] = r
	}
	if len(byName["Bravo TMA"].Ring) < 4 {
		t.Errorf("no ring for valid boundary")
	}
	if byName["Alpha CTR"].Ring != nil || byName["Charlie TIZ"].Ring != nil {
		t.Errorf("ring built for degenerate boundary")
	}
	if n := len(asm.Warnings().Warnings()); n != 2 {
		t.Errorf("expected 2 geometry warnings, got %d", n)
	}

	// Largest first.
	if recs[0].Name != "Bravo TMA" {
		t.Errorf("expected largest record first, got %q", recs[0].Name)
	}
}

func TestNoRecords(t *testing.T) {
	asm := New(nil)
	if _, err := asm.Records(); !errors.Is(err, ErrNoRecords) {
		t.Errorf("expected ErrNoRecords, got %v", err)
	}
}
