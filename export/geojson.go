// export/geojson.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/iancoleman/orderedmap"
	"github.com/mmp/luftrom/aviation"
	"github.com/mmp/luftrom/log"
	"github.com/mmp/luftrom/math"
)

// WriteGeoJSON writes the records as a GeoJSON FeatureCollection.
// Property order is significant to downstream map tooling that displays
// properties verbatim, hence the ordered maps. Records without geometry
// are skipped; they were already warned about when their ring was built.
func WriteGeoJSON(w io.Writer, recs []*aviation.AirspaceRecord, lg *log.Logger) error {
	features := []*orderedmap.OrderedMap{}
	for _, r := range recs {
		if len(r.Ring) == 0 {
			lg.Debugf("%s: no geometry, not exported", r.Name)
			continue
		}

		props := orderedmap.New()
		props.Set("name", r.Name)
		props.Set("class", r.Class)
		props.Set("from (m amsl)", int(r.Floor.Meters()))
		props.Set("from (ft amsl)", int(r.Floor.Feet()))
		props.Set("to (m amsl)", int(r.Ceiling.Meters()))
		props.Set("to (ft amsl)", int(r.Ceiling.Feet()))
		props.Set("temporary", r.Temporary)
		if len(r.Validity) > 0 {
			var from, until []string
			var schedule string
			for _, v := range r.Validity {
				if !v.From.IsZero() {
					from = append(from, v.From.Format("2006-01-02 15:04"))
				}
				if v.Permanent {
					until = append(until, "PERM")
				} else if !v.To.IsZero() {
					until = append(until, v.To.Format("2006-01-02 15:04"))
				}
				if v.Schedule != "" {
					schedule = v.Schedule
				}
			}
			props.Set("Date from", from)
			props.Set("Date until", until)
			if schedule != "" {
				props.Set("Time (UTC)", schedule)
			}
		}
		props.Set("source_href", r.Source.Href)

		ring := make([][2]float32, len(r.Ring))
		for i, p := range r.Ring {
			ring[i] = [2]float32{p.Longitude(), p.Latitude()}
		}
		geom := orderedmap.New()
		geom.Set("type", "Polygon")
		geom.Set("coordinates", [][][2]float32{ring})

		f := orderedmap.New()
		f.Set("type", "Feature")
		f.Set("properties", props)
		f.Set("geometry", geom)
		features = append(features, f)
	}

	fc := orderedmap.New()
	fc.Set("type", "FeatureCollection")
	fc.Set("features", features)

	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(fc)
}

// ReadBorderRing loads a border polyline from a GeoJSON file holding a
// single LineString or Polygon feature.
func ReadBorderRing(path string) ([]math.Point2LL, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc struct {
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%s: no features", path)
	}

	geo := fc.Features[0].Geometry
	var line [][2]float32
	switch geo.Type {
	case "LineString":
		if err := json.Unmarshal(geo.Coordinates, &line); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case "Polygon":
		var poly [][][2]float32
		if err := json.Unmarshal(geo.Coordinates, &poly); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(poly) == 0 {
			return nil, fmt.Errorf("%s: empty polygon", path)
		}
		line = poly[0]
	default:
		return nil, fmt.Errorf("%s: unsupported geometry %q", path, geo.Type)
	}

	ring := make([]math.Point2LL, len(line))
	for i, c := range line {
		ring[i] = math.Point2LL{c[0], c[1]} // GeoJSON is [lon, lat]
	}
	return ring, nil
}
