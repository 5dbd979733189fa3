// assembler/assembler.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package assembler

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/brunoga/deep"
	"github.com/mmp/luftrom/aviation"
	"github.com/mmp/luftrom/log"
	"github.com/mmp/luftrom/math"
	"github.com/mmp/luftrom/util"
)

// ErrNoRecords is returned when assembly finished without a single
// airspace record; it distinguishes "the sources were empty or
// unrecognizable" from a run that parsed sources and found problems in
// some of them.
var ErrNoRecords = errors.New("no airspace records recognized in any source")

// An Assembler reconciles the records parsed from multiple source
// documents into one model. The same airspace commonly appears both in
// an aerodrome chapter and an enroute table; matching is by normalized
// name. The name index is rebuilt from scratch for each run.
type Assembler struct {
	lg *log.Logger

	records    []*aviation.AirspaceRecord
	index      map[string][]*aviation.AirspaceRecord
	activities []*aviation.TemporaryActivity
	warnings   *util.WarningLog
}

func New(lg *log.Logger) *Assembler {
	return &Assembler{
		lg:       lg,
		index:    make(map[string][]*aviation.AirspaceRecord),
		warnings: &util.WarningLog{},
	}
}

// NormalizeName maps an airspace name to its merge key: case and runs of
// whitespace are not significant, and continuation markers left over from
// table layout are dropped.
func NormalizeName(name string) string {
	n := strings.ToUpper(strings.Join(strings.Fields(name), " "))
	n = strings.TrimSuffix(n, " CONT.")
	n = strings.TrimSuffix(n, " CONT")
	return n
}

// Add merges one source's records into the model. The assembler takes
// deep copies so later merge edits never alias the parser's output.
//
// Records that agree on definition are collapsed into one; records that
// share a name but disagree are both kept, with the later one renamed so
// nothing is silently dropped. Provenance survives either way.
func (a *Assembler) Add(recs []*aviation.AirspaceRecord) {
	for _, rec := range recs {
		r := deep.MustCopy(rec)
		key := NormalizeName(r.Name)

		merged := false
		for _, existing := range a.index[key] {
			if !sameDefinition(existing, r) {
				continue
			}
			absorb(existing, r)
			merged = true
			break
		}
		if merged {
			continue
		}

		if n := len(a.index[key]); n > 0 {
			prev := a.index[key][0]
			r.Name = fmt.Sprintf("%s %d", r.Name, n+1)
			a.warnings.Warnf("%s: conflicting definitions (%s vs %s); keeping both",
				key, prev.Source, r.Source)
		}
		a.index[key] = append(a.index[key], r)
		a.records = append(a.records, r)
	}
}

// sameDefinition reports whether two records describe the same airspace:
// identical boundary, vertical limits, and classification. Validity and
// remarks may differ and are unioned by absorb.
func sameDefinition(x, y *aviation.AirspaceRecord) bool {
	return x.Class == y.Class &&
		x.Floor == y.Floor && x.Ceiling == y.Ceiling &&
		slices.Equal(x.Boundary, y.Boundary)
}

func absorb(dst, src *aviation.AirspaceRecord) {
	for _, w := range src.Validity {
		if !slices.Contains(dst.Validity, w) {
			dst.Validity = append(dst.Validity, w)
		}
	}
	for _, rmk := range src.Remarks {
		if !slices.Contains(dst.Remarks, rmk) {
			dst.Remarks = append(dst.Remarks, rmk)
		}
	}
	dst.Temporary = dst.Temporary || src.Temporary
}

// LinkActivities resolves NOTAM-style activities against the assembled
// records. A reference to a published airspace attaches the activation
// window to it; an activity that establishes an area no source publishes
// contributes its own record instead.
func (a *Assembler) LinkActivities(acts []*aviation.TemporaryActivity) {
	for _, act := range acts {
		act.Resolved = nil
		for _, name := range act.AreaNames {
			act.Resolved = append(act.Resolved, a.index[NormalizeName(name)]...)
		}

		if len(act.Resolved) == 0 {
			if act.Record != nil {
				a.lg.Debugf("%s: establishes new area %q", act.ID, act.Record.Name)
				a.Add([]*aviation.AirspaceRecord{act.Record})
			} else {
				a.warnings.Warnf("%s: references unknown airspace %q", act.ID,
					strings.Join(act.AreaNames, ", "))
			}
			continue
		}

		for _, r := range act.Resolved {
			if act.Record != nil {
				for _, w := range act.Record.Validity {
					if !slices.Contains(r.Validity, w) {
						r.Validity = append(r.Validity, w)
					}
				}
			}
			r.Temporary = true
			a.lg.Debugf("%s: activates %q", act.ID, r.Name)
		}
	}
	a.activities = append(a.activities, acts...)
}

// BuildGeometry fills in the polygon ring for every record. Geometry
// failures are demoted to warnings: one degenerate boundary must not
// take down the rest of the model. Records that fail keep a nil Ring.
func (a *Assembler) BuildGeometry(cfg aviation.SamplingConfig) {
	for _, r := range a.records {
		a.warnings.Push(r.Name)
		if len(r.Boundary) == 0 {
			a.warnings.Warnf("no boundary; skipping geometry")
		} else if ring, err := aviation.BuildPolygon(r.Boundary, cfg); err != nil {
			a.warnings.Warning(err)
		} else {
			r.Ring = ring
		}
		a.warnings.Pop()
	}
}

// Records returns the assembled model, largest airspace first so that
// nested areas draw on top when rendered in order. ErrNoRecords is
// returned if nothing at all was assembled.
func (a *Assembler) Records() ([]*aviation.AirspaceRecord, error) {
	if len(a.records) == 0 {
		return nil, ErrNoRecords
	}
	recs := slices.Clone(a.records)
	SortByArea(recs)
	return recs, nil
}

// Activities returns the linked activities, in the order added.
func (a *Assembler) Activities() []*aviation.TemporaryActivity {
	return a.activities
}

func (a *Assembler) Warnings() *util.WarningLog {
	return a.warnings
}

// SortByArea orders records by decreasing ring area, breaking ties by
// name so output is deterministic.
func SortByArea(recs []*aviation.AirspaceRecord) {
	slices.SortStableFunc(recs, func(x, y *aviation.AirspaceRecord) int {
		ax, ay := math.RingArea(x.Ring), math.RingArea(y.Ring)
		if ax != ay {
			return util.Select(ax > ay, -1, 1)
		}
		return strings.Compare(x.Name, y.Name)
	})
}
