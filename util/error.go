// util/error.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"strings"

	"github.com/mmp/luftrom/log"
)

// Warning is one recoverable problem encountered while processing a
// record: a skipped boundary segment, an unparsable metadata line, and
// the like. Context says what was being processed when it happened.
type Warning struct {
	Context string
	Message string
}

func (w Warning) String() string {
	if w.Context == "" {
		return w.Message
	}
	return w.Context + ": " + w.Message
}

// WarningLog accumulates Warnings while processing continues. It tracks
// context via Push()/Pop() calls so each warning records what was being
// looked at when it was raised. Warnings are surfaced to the caller as a
// structured list; they are never returned as errors.
type WarningLog struct {
	hierarchy []string
	warnings  []Warning
}

func (wl *WarningLog) Push(s string) {
	wl.hierarchy = append(wl.hierarchy, s)
}

func (wl *WarningLog) Pop() {
	wl.hierarchy = wl.hierarchy[:len(wl.hierarchy)-1]
}

func (wl *WarningLog) Warnf(s string, args ...interface{}) {
	wl.warnings = append(wl.warnings, Warning{
		Context: strings.Join(wl.hierarchy, " / "),
		Message: fmt.Sprintf(s, args...),
	})
}

func (wl *WarningLog) Warning(err error) {
	wl.warnings = append(wl.warnings, Warning{
		Context: strings.Join(wl.hierarchy, " / "),
		Message: err.Error(),
	})
}

func (wl *WarningLog) HaveWarnings() bool {
	return len(wl.warnings) > 0
}

// Warnings returns the accumulated warnings.
func (wl *WarningLog) Warnings() []Warning {
	return wl.warnings
}

// Merge appends all of other's warnings; used to gather per-source logs
// after concurrent parsing.
func (wl *WarningLog) Merge(other *WarningLog) {
	if other != nil {
		wl.warnings = append(wl.warnings, other.warnings...)
	}
}

func (wl *WarningLog) PrintWarnings(lg *log.Logger) {
	for _, w := range wl.warnings {
		lg.Warnf("%s", w)
	}
}

func (wl *WarningLog) String() string {
	var sb strings.Builder
	for i, w := range wl.warnings {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(w.String())
	}
	return sb.String()
}
