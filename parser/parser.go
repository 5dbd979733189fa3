// parser/parser.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package parser

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmp/luftrom/aviation"
	"github.com/mmp/luftrom/log"
	"github.com/mmp/luftrom/math"
	"github.com/mmp/luftrom/util"
)

// The parser is an explicit two-state machine: it scans for a record
// header, then accumulates boundary and metadata lines until the next
// header, an end of section, or end of input closes the record.
type state int

const (
	stateSearching state = iota
	stateInRecord
)

const compactLat = `\d{4,6}(?:\.\d+)?[NS]`
const compactLon = `\d{5,7}(?:\.\d+)?[EW]`

var (
	reCoordPair = regexp.MustCompile(`\(?(` + compactLat + `)\s+(` + compactLon + `)\)?`)

	// "A circle with radius 5 NM centred on 594106N 0103158E"; the
	// center may instead be a coordinate earlier on the line.
	reCircle     = regexp.MustCompile(`(?i)(?:A circle(?: with|,)? radius|Radius)\s+([\d.,]+)\s*(NM|km|m)\b(?:\s*\([\d.,]+\s*k?m\))?(?:\s+cent(?:er|re)d on\s+(` + compactLat + `)\s+(` + compactLon + `))?`)
	reCircleHint = regexp.MustCompile(`(?i)\bA circle\b|\bradius\b`)

	// "clockwise along an arc of 16.2 NM radius centred on 550404N 0144448E - 545500N 0142127E"
	reArc     = regexp.MustCompile(`(?i)\b((?:counter)?clockwise) along an arc(?: of ([\d.,]+) NM radius)? cent(?:er|re)d on (` + compactLat + `)\s+(` + compactLon + `)(?:(?: and)?(?: with)? radius ([\d.,]+) NM(?:\s*\([\d.,]+\s*k?m\))?)?\s*(?:- )(` + compactLat + `)\s+(` + compactLon + `)`)
	reArcHint = regexp.MustCompile(`(?i)\b(counter)?clockwise\b`)

	// "Sector 030° - 120° (T), radius 10 - 16 NM", optionally preceded
	// by the center coordinate.
	reSector = regexp.MustCompile(`(?i)(?:(` + compactLat + `)\s+(` + compactLon + `) - )?(?:(?:\d\. )?A s|S)ector (\d+)°\s*-\s*(\d+)°\s*\(T\), radius (?:([\d.,]+)\s*-\s*)?([\d.,]+) NM`)

	// A boundary line broken after a latitude continues on the next line.
	reLatOnlyEnd = regexp.MustCompile(compactLat + `$`)

	reClassInline = regexp.MustCompile(`Class (?P<class>[A-G])`)
	reClassBare   = regexp.MustCompile(`^([CDG])$`)

	reVertRange  = regexp.MustCompile(`(GND|SFC|\d+)\s+to\s+(UNL|\d+)(?:\s*[Ff][Tt]\s+AMSL)?`)
	reVertSingle = regexp.MustCompile(`(?i)^(?:\d+\s*FT\s+AMSL|GND|SFC|UNL|FL\s*\d+)$`)

	reValidityFrom = regexp.MustCompile(`(?i)(?:FROM|WEF):?\s+(\d{2}/\d{2}/\d{2}\s+\d{2}:\d{2})`)
	reValidityTo   = regexp.MustCompile(`(?i)(?:TO|TIL):?\s+(PERM|\d{2}/\d{2}/\d{2}\s+\d{2}:\d{2})(?:\s+EST)?`)
	reSchedule     = regexp.MustCompile(`(?i)^SCHEDULE:?\s+(.+)$`)
	reRemark       = regexp.MustCompile(`(?i)^(?:RMK|Remark)[:.]?\s+(.+)$`)
)

// Names containing these are enroute/oceanic control structures with no
// useful lateral boundary in the sources; they are recognized and then
// discarded.
var ignoredNameMarkers = []string{"ACC", "ADS", "AOR", "FIR"}

type Parser struct {
	dialect *Dialect
	lg      *log.Logger

	state     state
	inSection bool

	cur         *aviation.AirspaceRecord
	haveCeiling bool
	wrap        string // buffered continuation line
	follow      bool   // next coordinate ends a border-following segment
	lastPoint   math.Point2LL
	haveLast    bool

	src      aviation.SourceRef
	lineno   int
	records  []*aviation.AirspaceRecord
	warnings *util.WarningLog
}

func New(dialect *Dialect, lg *log.Logger) *Parser {
	return &Parser{dialect: dialect, lg: lg}
}

// Parse scans the plain text of one source document and returns the
// airspace records recognized in it, along with the warnings for
// anything that had to be skipped along the way. Unrecognizable lines
// are boilerplate and layout artifacts; they never abort the parse.
func (p *Parser) Parse(src aviation.SourceRef, text string) ([]*aviation.AirspaceRecord, *util.WarningLog) {
	p.src = src
	p.state = stateSearching
	p.inSection = p.dialect.SectionStart == nil
	p.records = nil
	p.warnings = &util.WarningLog{}
	p.lineno = 0
	p.wrap = ""

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		p.lineno++
		p.parseLine(sc.Text())
	}
	p.finalize() // end of input closes the in-flight record

	return p.records, p.warnings
}

func (p *Parser) parseLine(line string) {
	if p.dialect.SectionStart != nil {
		if !p.inSection {
			if p.dialect.SectionStart.MatchString(line) {
				p.lg.Debugf("%s:%d: entering airspace section", p.src.Document, p.lineno)
				p.inSection = true
			}
			return
		}
		if p.dialect.SectionEnd.MatchString(line) {
			p.lg.Debugf("%s:%d: leaving airspace section", p.src.Document, p.lineno)
			p.finalize()
			p.inSection = false
			return
		}
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	// Join a buffered continuation before classifying.
	if p.wrap != "" {
		line = p.wrap + " " + line
		p.wrap = ""
	}

	// A header always closes the previous record; sources frequently
	// have no explicit end-of-record marker.
	if name, ok := p.dialect.matchHeader(line); ok {
		p.finalize()
		p.startRecord(name)
		return
	}

	if p.state != stateInRecord {
		return
	}

	switch {
	case p.tryBoundary(line):
	case p.tryClass(line):
	case p.tryVerticalLimit(line):
	case p.tryValidity(line):
	case p.tryRemark(line):
	default:
		// Unrecognized; ignore.
	}
}

func (p *Parser) startRecord(name string) {
	name = strings.Join(strings.Fields(name), " ")
	p.cur = &aviation.AirspaceRecord{
		Name: name,
		Source: aviation.SourceRef{
			Document: p.src.Document,
			Section:  fmt.Sprintf("line %d", p.lineno),
			Href:     p.src.Href,
		},
	}
	p.state = stateInRecord
	p.haveCeiling = false
	p.follow = false
	p.haveLast = false
	p.warnings.Push(name)
}

// finalize emits the in-flight record, if any. Records are emitted even
// with an empty boundary; dropping them would hide upstream extraction
// problems from review.
func (p *Parser) finalize() {
	if p.state != stateInRecord {
		return
	}
	defer p.warnings.Pop()
	r := p.cur
	p.cur = nil
	p.state = stateSearching
	p.wrap = ""

	for _, marker := range ignoredNameMarkers {
		if strings.Contains(r.Name, marker) {
			p.lg.Debugf("%s: ignoring %q", p.src.Document, r.Name)
			return
		}
	}

	if r.Class == "" {
		r.Class = classFromName(r.Name)
	}
	if len(r.Validity) > 0 {
		r.Temporary = true
	}
	if r.Floor.Datum == r.Ceiling.Datum && r.Floor.Value > r.Ceiling.Value {
		p.warnings.Warnf("floor %g above ceiling %g", r.Floor.Value, r.Ceiling.Value)
	}

	p.lg.Debugf("%s: emitting %q with %d boundary segments", p.src.Document, r.Name, len(r.Boundary))
	p.records = append(p.records, r)
}

// classFromName infers a classification for sources that give none
// explicitly; the naming conventions are consistent enough for this.
func classFromName(name string) string {
	up := strings.ToUpper(name)
	switch {
	case strings.Contains(up, "TIZ") || strings.Contains(up, "TIA"):
		return "G"
	case strings.Contains(up, "CTR"):
		return "D"
	case strings.Contains(up, "EN R") || strings.Contains(up, "EN D") ||
		strings.Contains(up, "ES R") || strings.Contains(up, "ES D") ||
		strings.Contains(up, "END") || strings.Contains(up, "ESTRA") ||
		strings.Contains(up, "EUCBA"):
		return "R"
	case strings.Contains(up, "TMA") || strings.Contains(up, "CTA") ||
		strings.Contains(up, "ATZ") || strings.Contains(up, "FAB"):
		return "C"
	default:
		return ""
	}
}

///////////////////////////////////////////////////////////////////////////
// Boundary lines

func (p *Parser) tryBoundary(line string) bool {
	hasCoord := reCoordPair.MatchString(line)
	hasCircle := reCircleHint.MatchString(line)
	hasArc := reArcHint.MatchString(line)
	hasSector := reSector.MatchString(line)
	if !hasCoord && !hasCircle && !hasArc && !hasSector {
		return false
	}

	// A line broken after a bare latitude continues on the next one.
	if reLatOnlyEnd.MatchString(line) {
		p.wrap = line
		return true
	}

	if hasArc {
		loc := reArc.FindStringSubmatchIndex(line)
		if loc == nil {
			// Arc description split across lines; keep accumulating.
			p.wrap = line
			return true
		}
		// Coordinates on the same line before and after the arc text are
		// ordinary boundary points.
		p.addPoints(line[:loc[0]])
		p.addArc(submatches(line, loc))
		p.addPoints(line[loc[1]:])
		return true
	}

	if m := reSector.FindStringSubmatch(line); m != nil {
		p.addSector(m)
		return true
	}

	if hasCircle {
		if m := reCircle.FindStringSubmatch(line); m != nil {
			p.addCircle(line, m)
			return true
		}
		if !hasCoord {
			// "A circle" with the radius still to come.
			p.wrap = line
			return true
		}
	}

	p.addPoints(line)
	return true
}

// addPoints walks a plain coordinate list, honoring border-following
// keywords between coordinates.
func (p *Parser) addPoints(line string) {
	matches := reCoordPair.FindAllStringSubmatchIndex(line, -1)
	prev := 0
	for _, m := range matches {
		if p.dialect.FollowKeyword != nil && p.dialect.FollowKeyword.MatchString(line[prev:m[0]]) {
			p.follow = true
		}
		prev = m[1]

		lat, lon := line[m[2]:m[3]], line[m[4]:m[5]]
		pt, err := aviation.ParseCoordinate(lat + " " + lon)
		if err != nil {
			p.warnings.Warnf("line %d: skipping boundary point: %v", p.lineno, err)
			continue
		}

		if p.follow {
			p.cur.Boundary = append(p.cur.Boundary, aviation.BoundarySegment{
				Type:   aviation.SegmentFollow,
				Border: p.dialect.BorderName,
				Point:  pt,
			})
			p.follow = false
		} else {
			p.cur.Boundary = append(p.cur.Boundary, aviation.BoundarySegment{
				Type:  aviation.SegmentLineTo,
				Point: pt,
			})
		}
		p.lastPoint, p.haveLast = pt, true
	}
	if p.dialect.FollowKeyword != nil && p.dialect.FollowKeyword.MatchString(line[prev:]) {
		p.follow = true
	}
}

func (p *Parser) addArc(m []string) {
	center, err := aviation.ParseCoordinate(m[3] + " " + m[4])
	if err != nil {
		p.warnings.Warnf("line %d: skipping arc: bad center: %v", p.lineno, err)
		return
	}
	to, err := aviation.ParseCoordinate(m[6] + " " + m[7])
	if err != nil {
		p.warnings.Warnf("line %d: skipping arc: bad endpoint: %v", p.lineno, err)
		return
	}

	radStr := m[2]
	if radStr == "" {
		radStr = m[5]
	}
	radius, err := parseDistance(radStr, aviation.UnitNauticalMiles)
	if err != nil {
		p.warnings.Warnf("line %d: skipping arc: %v", p.lineno, err)
		return
	}

	if !p.haveLast {
		p.warnings.Warnf("line %d: skipping arc with no preceding boundary point", p.lineno)
		p.lastPoint, p.haveLast = to, true
		return
	}

	p.cur.Boundary = append(p.cur.Boundary,
		aviation.BoundarySegment{
			Type:         aviation.SegmentArcTo,
			Center:       center,
			Radius:       radius,
			RadiusUnit:   aviation.UnitNauticalMiles,
			StartBearing: math.GreatCircleBearing(center, p.lastPoint),
			EndBearing:   math.GreatCircleBearing(center, to),
			Clockwise:    !strings.EqualFold(m[1], "counterclockwise"),
		},
		aviation.BoundarySegment{Type: aviation.SegmentLineTo, Point: to})
	p.lastPoint, p.haveLast = to, true
}

func (p *Parser) addSector(m []string) {
	var center math.Point2LL
	if m[1] != "" {
		var err error
		center, err = aviation.ParseCoordinate(m[1] + " " + m[2])
		if err != nil {
			p.warnings.Warnf("line %d: skipping sector: bad center: %v", p.lineno, err)
			return
		}
	} else if p.haveLast {
		center = p.lastPoint
	} else {
		p.warnings.Warnf("line %d: skipping sector with no center", p.lineno)
		return
	}

	from, err1 := strconv.ParseFloat(m[3], 32)
	to, err2 := strconv.ParseFloat(m[4], 32)
	if err1 != nil || err2 != nil {
		p.warnings.Warnf("line %d: skipping sector: bad bearings", p.lineno)
		return
	}

	outer, err := parseDistance(m[6], aviation.UnitNauticalMiles)
	if err != nil {
		p.warnings.Warnf("line %d: skipping sector: %v", p.lineno, err)
		return
	}

	var inner float32
	if m[5] != "" {
		if inner, err = parseDistance(m[5], aviation.UnitNauticalMiles); err != nil {
			p.warnings.Warnf("line %d: skipping sector: %v", p.lineno, err)
			return
		}
	}

	if inner > 0 {
		// Annular band: outer arc forward, inner arc back.
		p.cur.Boundary = append(p.cur.Boundary,
			aviation.BoundarySegment{
				Type: aviation.SegmentArcTo, Center: center, Radius: outer,
				RadiusUnit:   aviation.UnitNauticalMiles,
				StartBearing: float32(from), EndBearing: float32(to), Clockwise: true,
			},
			aviation.BoundarySegment{
				Type: aviation.SegmentArcTo, Center: center, Radius: inner,
				RadiusUnit:   aviation.UnitNauticalMiles,
				StartBearing: float32(to), EndBearing: float32(from), Clockwise: false,
			})
	} else {
		// Pie slice from the center.
		p.cur.Boundary = append(p.cur.Boundary,
			aviation.BoundarySegment{Type: aviation.SegmentLineTo, Point: center},
			aviation.BoundarySegment{
				Type: aviation.SegmentArcTo, Center: center, Radius: outer,
				RadiusUnit:   aviation.UnitNauticalMiles,
				StartBearing: float32(from), EndBearing: float32(to), Clockwise: true,
			})
	}
	p.lastPoint, p.haveLast = center, true
}

func (p *Parser) addCircle(line string, m []string) {
	unit := aviation.UnitNauticalMiles
	switch strings.ToLower(m[2]) {
	case "m":
		unit = aviation.UnitMeters
	case "km":
		unit = aviation.UnitKilometers
	}

	var center math.Point2LL
	var err error
	if m[3] != "" {
		center, err = aviation.ParseCoordinate(m[3] + " " + m[4])
	} else if cm := reCoordPair.FindStringSubmatch(line); cm != nil {
		// No "centred on" clause: the leading coordinate is the center.
		center, err = aviation.ParseCoordinate(cm[1] + " " + cm[2])
	} else {
		// Center still to come on a following line.
		p.wrap = line
		return
	}
	if err != nil {
		p.warnings.Warnf("line %d: skipping circle: bad center: %v", p.lineno, err)
		return
	}

	radius, err := parseDistance(m[1], unit)
	if err != nil {
		p.warnings.Warnf("line %d: skipping circle: %v", p.lineno, err)
		return
	}

	p.cur.Boundary = append(p.cur.Boundary, aviation.BoundarySegment{
		Type:       aviation.SegmentCircle,
		Center:     center,
		Radius:     radius,
		RadiusUnit: unit,
	})
	p.lastPoint, p.haveLast = center, true
}

func submatches(s string, loc []int) []string {
	m := make([]string, len(loc)/2)
	for i := range m {
		if loc[2*i] >= 0 {
			m[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return m
}

// parseDistance converts a textual distance in the declared unit to
// meters. Continental sources write decimal commas.
func parseDistance(s string, unit aviation.DistanceUnit) (float32, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 32)
	if err != nil {
		return 0, &aviation.FormatError{Token: s, Err: err}
	}
	return unit.ToMeters(float32(v))
}

///////////////////////////////////////////////////////////////////////////
// Metadata lines

func (p *Parser) tryClass(line string) bool {
	if m := reClassInline.FindStringSubmatch(line); m != nil {
		p.cur.Class = m[1]
		return true
	}
	if m := reClassBare.FindStringSubmatch(line); m != nil {
		p.cur.Class = m[1]
		return true
	}
	return false
}

func (p *Parser) tryVerticalLimit(line string) bool {
	if m := reVertRange.FindStringSubmatch(line); m != nil {
		floor, err := aviation.ParseAltitude(m[1])
		if err != nil {
			p.warnings.Warnf("line %d: bad floor: %v", p.lineno, err)
			return true
		}
		ceiling, err := aviation.ParseAltitude(m[2])
		if err != nil {
			p.warnings.Warnf("line %d: bad ceiling: %v", p.lineno, err)
			return true
		}
		p.cur.Floor, p.cur.Ceiling = floor, ceiling
		p.haveCeiling = true
		return true
	}

	if reVertSingle.MatchString(line) {
		lim, err := aviation.ParseAltitude(line)
		if err != nil {
			p.warnings.Warnf("line %d: bad vertical limit: %v", p.lineno, err)
			return true
		}
		// Tables print the upper limit above the lower one.
		if !p.haveCeiling {
			p.cur.Ceiling = lim
			p.haveCeiling = true
		} else {
			p.cur.Floor = lim
		}
		return true
	}

	return false
}

func (p *Parser) tryValidity(line string) bool {
	if m := reValidityFrom.FindStringSubmatch(line); m != nil {
		w := aviation.ValidityWindow{}
		var err error
		if w.From, err = parseValidityTime(m[1]); err != nil {
			p.warnings.Warnf("line %d: bad validity start: %v", p.lineno, err)
			return true
		}
		if tm := reValidityTo.FindStringSubmatch(line); tm != nil {
			p.setValidityEnd(&w, tm[1])
		}
		p.cur.Validity = append(p.cur.Validity, w)
		return true
	}

	if m := reValidityTo.FindStringSubmatch(line); m != nil {
		if n := len(p.cur.Validity); n > 0 && p.cur.Validity[n-1].To.IsZero() && !p.cur.Validity[n-1].Permanent {
			p.setValidityEnd(&p.cur.Validity[n-1], m[1])
			return true
		}
		return false
	}

	if m := reSchedule.FindStringSubmatch(line); m != nil {
		if n := len(p.cur.Validity); n > 0 {
			p.cur.Validity[n-1].Schedule = strings.TrimSpace(m[1])
		} else {
			p.cur.Remarks = append(p.cur.Remarks, strings.TrimSpace(line))
		}
		return true
	}

	return false
}

func (p *Parser) setValidityEnd(w *aviation.ValidityWindow, s string) {
	if strings.EqualFold(s, "PERM") {
		w.Permanent = true
		return
	}
	t, err := parseValidityTime(s)
	if err != nil {
		p.warnings.Warnf("line %d: bad validity end: %v", p.lineno, err)
		return
	}
	w.To = t
}

// Validity timestamps are "YY/MM/DD HH:MM" in UTC.
func parseValidityTime(s string) (time.Time, error) {
	return time.Parse("06/01/02 15:04", strings.TrimSpace(s))
}

func (p *Parser) tryRemark(line string) bool {
	if m := reRemark.FindStringSubmatch(line); m != nil {
		p.cur.Remarks = append(p.cur.Remarks, strings.TrimSpace(m[1]))
		return true
	}
	return false
}
