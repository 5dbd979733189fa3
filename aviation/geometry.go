// aviation/geometry.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"github.com/mmp/luftrom/math"
)

// Full circles are never sampled more coarsely than this, whatever the
// configured step says.
const MinCirclePoints = 36

// SamplingConfig controls how finely arcs and circles are approximated
// by polygon edges. Downstream output granularity depends on it, so it
// is configuration rather than a constant.
type SamplingConfig struct {
	// DegreesPerStep is the angular resolution for sampling arcs; one
	// vertex is emitted per step.
	DegreesPerStep float32

	// Borders maps border names referenced by SegmentFollow segments to
	// their polylines.
	Borders map[string][]math.Point2LL
}

func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{DegreesPerStep: 5}
}

func (c SamplingConfig) degreesPerStep() float32 {
	if c.DegreesPerStep <= 0 {
		return 5
	}
	return c.DegreesPerStep
}

// BuildPolygon converts a boundary-segment sequence into a closed
// polygon ring: the first point is repeated as the last and consecutive
// duplicate points are elided. Arcs are walked in their stated rotation
// direction even when the opposite way around would be shorter.
func BuildPolygon(segs []BoundarySegment, cfg SamplingConfig) ([]math.Point2LL, error) {
	if len(segs) == 0 {
		return nil, &GeometryError{Reason: "empty boundary"}
	}

	var ring []math.Point2LL
	add := func(p math.Point2LL) {
		if n := len(ring); n > 0 && ring[n-1] == p {
			return
		}
		ring = append(ring, p)
	}

	for _, seg := range segs {
		switch seg.Type {
		case SegmentLineTo:
			add(seg.Point)

		case SegmentArcTo:
			if seg.Radius <= 0 {
				return nil, &GeometryError{Reason: "arc with non-positive radius"}
			}
			sweep := math.NormalizeHeading(seg.EndBearing - seg.StartBearing)
			if !seg.Clockwise {
				sweep = math.NormalizeHeading(seg.StartBearing - seg.EndBearing)
			}
			if sweep == 0 {
				return nil, &GeometryError{Reason: "arc with zero angular span"}
			}
			steps := int(math.Ceil(sweep / cfg.degreesPerStep()))
			for i := 0; i <= steps; i++ {
				delta := sweep * float32(i) / float32(steps)
				if !seg.Clockwise {
					delta = -delta
				}
				b := math.NormalizeHeading(seg.StartBearing + delta)
				add(math.GreatCircleOffset2LL(seg.Center, b, seg.Radius))
			}

		case SegmentCircle:
			if seg.Radius <= 0 {
				return nil, &GeometryError{Reason: "circle with non-positive radius"}
			}
			steps := int(360 / cfg.degreesPerStep())
			if steps < MinCirclePoints {
				steps = MinCirclePoints
			}
			for i := 0; i < steps; i++ {
				b := 360 * float32(i) / float32(steps)
				add(math.GreatCircleOffset2LL(seg.Center, b, seg.Radius))
			}

		case SegmentFollow:
			border, ok := cfg.Borders[seg.Border]
			if !ok || len(border) == 0 {
				return nil, &GeometryError{Reason: "unknown border " + seg.Border}
			}
			if len(ring) == 0 {
				return nil, &GeometryError{Reason: "border-following segment with no preceding point"}
			}
			for _, p := range followBorder(ring[len(ring)-1], seg.Point, border) {
				add(p)
			}
			add(seg.Point)

		default:
			return nil, &GeometryError{Reason: "unknown segment type"}
		}
	}

	// Close the ring.
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}

	if len(ring) < 4 { // at least a triangle, with the closing repeat
		return nil, &GeometryError{Reason: "fewer than three distinct points"}
	}

	return ring, nil
}

// followBorder returns the span of border vertices between the vertices
// nearest to from and to. Nearness is cheap rectilinear distance in
// degrees; border polylines are dense enough that this matches the
// published boundary to well under the sampling resolution.
func followBorder(from, to math.Point2LL, border []math.Point2LL) []math.Point2LL {
	nearest := func(p math.Point2LL) int {
		best, bestDist := 0, float32(-1)
		for i, b := range border {
			d := math.Abs(b[0]-p[0]) + math.Abs(b[1]-p[1])
			if bestDist < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
		return best
	}

	fi, ti := nearest(from), nearest(to)
	if fi == ti {
		return nil
	}
	if fi < ti {
		return border[fi : ti+1]
	}
	span := make([]math.Point2LL, 0, fi-ti+1)
	for i := fi; i >= ti; i-- {
		span = append(span, border[i])
	}
	return span
}
