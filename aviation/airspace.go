// aviation/airspace.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"time"

	"github.com/mmp/luftrom/math"
)

// SegmentType distinguishes the variants of BoundarySegment.
type SegmentType int

const (
	SegmentUnknown SegmentType = iota
	SegmentLineTo
	SegmentArcTo
	SegmentCircle
	SegmentFollow
)

func (t SegmentType) MarshalJSON() ([]byte, error) {
	switch t {
	case SegmentLineTo:
		return []byte(`"line"`), nil
	case SegmentArcTo:
		return []byte(`"arc"`), nil
	case SegmentCircle:
		return []byte(`"circle"`), nil
	case SegmentFollow:
		return []byte(`"follow"`), nil
	default:
		return nil, fmt.Errorf("%d: unknown segment type", t)
	}
}

func (t *SegmentType) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"line"`:
		*t = SegmentLineTo
	case `"arc"`:
		*t = SegmentArcTo
	case `"circle"`:
		*t = SegmentCircle
	case `"follow"`:
		*t = SegmentFollow
	default:
		return fmt.Errorf("%s: unknown segment type", string(b))
	}
	return nil
}

// BoundarySegment is one element of an airspace boundary description.
// Which fields are meaningful depends on Type:
//
//	SegmentLineTo: Point
//	SegmentArcTo:  Center, Radius, StartBearing, EndBearing, Clockwise
//	SegmentCircle: Center, Radius
//	SegmentFollow: Border (a named polyline, e.g. a national border),
//	               Point (where the boundary rejoins it)
//
// Radius is always meters; RadiusUnit records the unit the source text
// declared it in.
type BoundarySegment struct {
	Type         SegmentType   `json:"type"`
	Point        math.Point2LL `json:"point,omitempty"`
	Center       math.Point2LL `json:"center,omitempty"`
	Radius       float32       `json:"radius,omitempty"`
	RadiusUnit   DistanceUnit  `json:"-"`
	StartBearing float32       `json:"start_bearing,omitempty"`
	EndBearing   float32       `json:"end_bearing,omitempty"`
	Clockwise    bool          `json:"clockwise,omitempty"`
	Border       string        `json:"border,omitempty"`
}

// ValidityWindow is one date/time range during which a (typically
// temporary) airspace is active. Permanent is set for activations with
// no published end.
type ValidityWindow struct {
	From      time.Time `json:"from"`
	To        time.Time `json:"to,omitempty"`
	Permanent bool      `json:"permanent,omitempty"`
	Schedule  string    `json:"schedule,omitempty"` // free-text activation schedule, e.g. "MON-FRI 0700-1500"
}

// SourceRef identifies where a record came from: the source document and
// the section or line region within it.
type SourceRef struct {
	Document string `json:"document"`
	Section  string `json:"section,omitempty"`
	Href     string `json:"href,omitempty"`
}

func (s SourceRef) String() string {
	if s.Section != "" {
		return s.Document + " " + s.Section
	}
	return s.Document
}

// AirspaceRecord is one parsed airspace definition. Names are not
// globally unique across source documents; reconciliation is the
// assembler's job. Records are immutable after parsing except for the
// assembler's merge step and the geometry pass that fills Ring.
type AirspaceRecord struct {
	Name      string            `json:"name"`
	Class     string            `json:"class"` // opaque classification code (CTR, TMA, R, ...)
	Boundary  []BoundarySegment `json:"boundary"`
	Floor     AltitudeLimit     `json:"floor"`
	Ceiling   AltitudeLimit     `json:"ceiling"`
	Temporary bool              `json:"temporary,omitempty"`
	Validity  []ValidityWindow  `json:"validity,omitempty"`
	Remarks   []string          `json:"remarks,omitempty"`
	Source    SourceRef         `json:"source"`

	// Ring is the closed polygon approximation of Boundary; it is
	// computed after assembly, not by the parser.
	Ring []math.Point2LL `json:"-"`
}

// TemporaryActivity is a NOTAM-style activation notice. It may establish
// a new area (Record non-nil) and may reference existing airspaces by
// name; the references are lookup keys, not ownership edges, and may
// remain unresolved.
type TemporaryActivity struct {
	ID        string
	Record    *AirspaceRecord
	AreaNames []string

	// Filled by the assembler; parallel to AreaNames where matches were
	// found.
	Resolved []*AirspaceRecord
}
