// export/export_test.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmp/luftrom/aviation"
	"github.com/mmp/luftrom/math"
)

func testRecord() *aviation.AirspaceRecord {
	return &aviation.AirspaceRecord{
		Name:    "EN R102 Somewhere",
		Class:   "R",
		Floor:   aviation.AltitudeLimit{Datum: aviation.DatumGround},
		Ceiling: aviation.AltitudeLimit{Value: 95, Datum: aviation.DatumFlightLevel},
		Source:  aviation.SourceRef{Document: "a.txt", Href: "https://example.org/aip"},
		Ring: []math.Point2LL{
			{10, 59}, {11, 59}, {11, 60}, {10, 59},
		},
	}
}

func TestWriteGeoJSON(t *testing.T) {
	r := testRecord()
	r.Temporary = true
	r.Validity = []aviation.ValidityWindow{{
		From:     time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 3, 15, 16, 0, 0, 0, time.UTC),
		Schedule: "MON-FRI 0700-1500",
	}}
	noGeometry := testRecord()
	noGeometry.Ring = nil

	var buf bytes.Buffer
	if err := WriteGeoJSON(&buf, []*aviation.AirspaceRecord{r, noGeometry}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Type       string                 `json:"type"`
			Properties map[string]interface{} `json:"properties"`
			Geometry   struct {
				Type        string         `json:"type"`
				Coordinates [][][2]float32 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(buf.Bytes(), &fc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("got type %q", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature (no geometry, no export), got %d", len(fc.Features))
	}

	f := fc.Features[0]
	props := f.Properties
	if props["name"] != "EN R102 Somewhere" || props["class"] != "R" {
		t.Errorf("got properties %v", props)
	}
	if props["from (m amsl)"] != float64(0) {
		t.Errorf("got floor %v", props["from (m amsl)"])
	}
	if props["to (m amsl)"] != float64(2895) {
		t.Errorf("got ceiling %v", props["to (m amsl)"])
	}
	if props["to (ft amsl)"] != float64(9500) {
		t.Errorf("got ceiling %v ft", props["to (ft amsl)"])
	}
	if props["temporary"] != true {
		t.Errorf("temporary flag lost")
	}
	if props["source_href"] != "https://example.org/aip" {
		t.Errorf("got source %v", props["source_href"])
	}
	if props["Time (UTC)"] != "MON-FRI 0700-1500" {
		t.Errorf("got schedule %v", props["Time (UTC)"])
	}

	if f.Geometry.Type != "Polygon" || len(f.Geometry.Coordinates) != 1 {
		t.Fatalf("got geometry %+v", f.Geometry)
	}
	ring := f.Geometry.Coordinates[0]
	if len(ring) != 4 || ring[0] != ring[len(ring)-1] {
		t.Errorf("got ring %v", ring)
	}
	// GeoJSON positions are [longitude, latitude].
	if ring[0][0] != 10 || ring[0][1] != 59 {
		t.Errorf("coordinate order wrong: %v", ring[0])
	}

	// Property order is part of the format.
	out := buf.String()
	if strings.Index(out, `"name"`) > strings.Index(out, `"class"`) ||
		strings.Index(out, `"class"`) > strings.Index(out, `"from (m amsl)"`) ||
		strings.Index(out, `"from (m amsl)"`) > strings.Index(out, `"source_href"`) {
		t.Errorf("property order not preserved")
	}
}

func TestWriteOpenAir(t *testing.T) {
	r := testRecord()

	var ft, m bytes.Buffer
	if err := WriteOpenAir(&ft, []*aviation.AirspaceRecord{r}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WriteOpenAir(&m, []*aviation.AirspaceRecord{r}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"AC R\n",
		"AN EN R102 Somewhere\n",
		"AL 0 ft\n",
		"AH 9500 ft\n",
		"DP 59:00:00 N  010:00:00 E\n",
		"DP 60:00:00 N  011:00:00 E\n",
		"* Source: https://example.org/aip\n",
	} {
		if !strings.Contains(ft.String(), want) {
			t.Errorf("feet output is missing %q:\n%s", want, ft.String())
		}
	}
	for _, want := range []string{"AL 0 MSL\n", "AH 2895 MSL\n"} {
		if !strings.Contains(m.String(), want) {
			t.Errorf("meters output is missing %q:\n%s", want, m.String())
		}
	}
}

func TestOpenAirCoord(t *testing.T) {
	for _, c := range []struct {
		p    math.Point2LL
		want string
	}{
		{math.Point2LL{10.532778, 59.685}, "59:41:06 N  010:31:58 E"},
		{math.Point2LL{-73.5, -12.25}, "12:15:00 S  073:30:00 W"},
	} {
		if got := openAirCoord(c.p); got != c.want {
			t.Errorf("%v: got %q, expected %q", c.p, got, c.want)
		}
	}
}

func TestWriteTable(t *testing.T) {
	r := testRecord()
	noGeometry := testRecord()
	noGeometry.Name = "Charlie TIZ"
	noGeometry.Ring = nil

	var buf bytes.Buffer
	if err := WriteTable(&buf, []*aviation.AirspaceRecord{r, noGeometry}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "name,class,floor_m_amsl,ceiling_m_amsl,points,temporary,source" {
		t.Errorf("got header %q", lines[0])
	}
	// Records without geometry still show up in the table.
	if !strings.Contains(lines[2], "Charlie TIZ") || !strings.Contains(lines[2], ",0,") {
		t.Errorf("got row %q", lines[2])
	}
}

func TestReadBorderRing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "border.geojson")
	content := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},
"geometry":{"type":"LineString","coordinates":[[11,59],[11.5,59.5],[12,60]]}}]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("%v", err)
	}

	ring, err := ReadBorderRing(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ring) != 3 {
		t.Fatalf("got %d points", len(ring))
	}
	if ring[1].Longitude() != 11.5 || ring[1].Latitude() != 59.5 {
		t.Errorf("got %v", ring[1])
	}

	if _, err := ReadBorderRing(filepath.Join(dir, "missing.geojson")); err == nil {
		t.Errorf("no error for missing file")
	}
}
