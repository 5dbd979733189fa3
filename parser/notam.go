// parser/notam.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package parser

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/mmp/luftrom/aviation"
	"github.com/mmp/luftrom/log"
	"github.com/mmp/luftrom/util"
)

// NOTAMs arrive as a flat text feed: an identifier line ("A0123/26")
// followed by a block of free text. Only notices that establish a
// restricted or danger area are of interest; the rest are skipped.
var (
	reNotamID        = regexp.MustCompile(`^([AE]\d{4}/\d{2})$`)
	reNotamEstablish = regexp.MustCompile(`(?is)(RESTRICTED AREA|DANGER AREA|TEMPO RESTRICTED AREA|TEMP RESTRICTED AREA)\s+(?:ESTABLISHED\s+['"]?([A-Z]{2,6}\s*[RD]?\d+[A-Z]?)|([A-Z]{2,6}\s*[RD]?\d+[A-Z]?)\s+.*?\s+ESTABLISHED)`)
	reNotamQuoted    = regexp.MustCompile(`['"]([^'"]+)['"]`)
	reNotamPSN       = regexp.MustCompile(`(?s)PSN\s+([\d\sNE\-\(\)]+?)(?:\.|MAX HGT|LOWER:|UPPER:|SCHEDULE:|ALL FLYING|CTC|$)`)
	reNotamCoord     = regexp.MustCompile(`\d{6}N\s+\d{7}E`)
	reNotamLower     = regexp.MustCompile(`(?i)^LOWER:\s*(GND|SFC|\d+FT\s+(?:AMSL|AGL)|FL\d+)`)
	reNotamUpper     = regexp.MustCompile(`(?i)^UPPER:\s*(\d+FT\s+(?:AMSL|AGL)|FL\d+)`)
)

// A NOTAM block runs until the next identifier line, with a hard cap
// since feeds sometimes omit separators.
const notamBlockMaxLines = 25

// ParseNOTAMs scans a NOTAM text feed and returns the activities that
// establish airspace. Each activity carries a synthesized record for the
// established area plus the names under which the assembler should link
// it against published airspaces.
func ParseNOTAMs(src aviation.SourceRef, text string, lg *log.Logger) ([]*aviation.TemporaryActivity, *util.WarningLog) {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}

	var activities []*aviation.TemporaryActivity
	warnings := &util.WarningLog{}

	for i := 0; i < len(lines); {
		m := reNotamID.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			i++
			continue
		}
		id := m[1]

		block := []string{lines[i]}
		j := i + 1
		for ; j < len(lines) && j < i+notamBlockMaxLines; j++ {
			if j > i+1 && reNotamID.MatchString(strings.TrimSpace(lines[j])) {
				break
			}
			block = append(block, lines[j])
		}
		i = j

		warnings.Push(id)
		if act := parseNotamBlock(id, src, block, warnings, lg); act != nil {
			activities = append(activities, act)
		}
		warnings.Pop()
	}

	lg.Infof("%s: %d NOTAMs establish airspace", src.Document, len(activities))
	return activities, warnings
}

func parseNotamBlock(id string, src aviation.SourceRef, lines []string, warnings *util.WarningLog, lg *log.Logger) *aviation.TemporaryActivity {
	block := strings.Join(lines, "\n")

	em := reNotamEstablish.FindStringSubmatch(block)
	if em == nil {
		return nil // not an airspace-establishing notice
	}
	areaType := strings.ToUpper(em[1])

	var designation, areaName string
	if em[2] != "" {
		// "RESTRICTED AREA ESTABLISHED 'ENR138 LOMMEDALEN'"
		designation = strings.TrimSpace(em[2])
		if qm := reNotamQuoted.FindStringSubmatch(block); qm != nil {
			quoted := qm[1]
			if strings.HasPrefix(quoted, designation) {
				areaName = strings.TrimSpace(quoted[len(designation):])
			} else {
				areaName = quoted
			}
		}
	} else {
		// "RESTRICTED AREA ENR123 CHEMRING NOBEL ESTABLISHED"
		designation = strings.TrimSpace(em[3])
		middle := strings.Replace(em[0], em[1], "", 1)
		middle = strings.TrimSpace(strings.Replace(middle, "ESTABLISHED", "", 1))
		areaName = strings.TrimSpace(strings.TrimPrefix(middle, designation))
	}

	name := designation
	if areaName != "" {
		name += " " + areaName
	}

	r := &aviation.AirspaceRecord{
		Name:  name,
		Class: notamClass(areaType),
		Floor: aviation.AltitudeLimit{Datum: aviation.DatumGround},
		// Absent an UPPER line the vertical extent is unknown; treat it
		// as unbounded rather than inventing a ceiling.
		Ceiling: aviation.AltitudeLimit{Datum: aviation.DatumUnlimited},
		Source:  aviation.SourceRef{Document: src.Document, Section: id, Href: src.Href},
	}

	if pm := reNotamPSN.FindStringSubmatch(block); pm != nil {
		for _, c := range reNotamCoord.FindAllString(pm[1], -1) {
			pt, err := aviation.ParseCoordinate(c)
			if err != nil {
				warnings.Warnf("skipping position: %v", err)
				continue
			}
			r.Boundary = append(r.Boundary, aviation.BoundarySegment{
				Type:  aviation.SegmentLineTo,
				Point: pt,
			})
		}
	}
	if len(r.Boundary) == 0 {
		warnings.Warnf("%s: no usable position, skipping", designation)
		return nil
	}

	w := aviation.ValidityWindow{}
	if fm := reValidityFrom.FindStringSubmatch(block); fm != nil {
		t, err := parseValidityTime(fm[1])
		if err != nil {
			warnings.Warnf("bad activation start: %v", err)
		} else {
			w.From = t
		}
	}
	if tm := reValidityTo.FindStringSubmatch(block); tm != nil {
		if strings.EqualFold(tm[1], "PERM") {
			w.Permanent = true
		} else if t, err := parseValidityTime(strings.TrimSuffix(tm[1], " EST")); err != nil {
			warnings.Warnf("bad activation end: %v", err)
		} else {
			w.To = t
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if m := reNotamLower.FindStringSubmatch(line); m != nil {
			if lim, err := aviation.ParseAltitude(m[1]); err != nil {
				warnings.Warnf("bad lower limit: %v", err)
			} else {
				r.Floor = lim
			}
		}
		if m := reNotamUpper.FindStringSubmatch(line); m != nil {
			if lim, err := aviation.ParseAltitude(m[1]); err != nil {
				warnings.Warnf("bad upper limit: %v", err)
			} else {
				r.Ceiling = lim
			}
		}
		if m := reSchedule.FindStringSubmatch(line); m != nil {
			w.Schedule = strings.TrimSpace(m[1])
		}
	}

	r.Temporary = !w.Permanent
	if !w.From.IsZero() || !w.To.IsZero() || w.Permanent || w.Schedule != "" {
		r.Validity = []aviation.ValidityWindow{w}
	}

	lg.Debugf("%s: %s %s (%d boundary points)", id, designation, areaName, len(r.Boundary))

	names := []string{designation}
	if areaName != "" {
		names = append(names, name)
	}
	return &aviation.TemporaryActivity{ID: id, Record: r, AreaNames: names}
}

func notamClass(areaType string) string {
	switch {
	case strings.Contains(areaType, "RESTRICTED"):
		return "R"
	case strings.Contains(areaType, "DANGER"):
		return "D"
	default:
		return "Q"
	}
}
