// export/table.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package export

import (
	"io"

	"github.com/jszwec/csvutil"
	"github.com/mmp/luftrom/aviation"
)

type tableRow struct {
	Name      string `csv:"name"`
	Class     string `csv:"class"`
	FloorM    int    `csv:"floor_m_amsl"`
	CeilingM  int    `csv:"ceiling_m_amsl"`
	Points    int    `csv:"points"`
	Temporary bool   `csv:"temporary"`
	Source    string `csv:"source"`
}

// WriteTable writes a CSV summary of the model, one row per record
// including the ones without geometry; the table is the place to go
// looking for what fell out of the pipeline and why.
func WriteTable(w io.Writer, recs []*aviation.AirspaceRecord) error {
	rows := make([]tableRow, len(recs))
	for i, r := range recs {
		rows[i] = tableRow{
			Name:      r.Name,
			Class:     r.Class,
			FloorM:    int(r.Floor.Meters()),
			CeilingM:  int(r.Ceiling.Meters()),
			Points:    len(r.Ring),
			Temporary: r.Temporary,
			Source:    r.Source.String(),
		}
	}

	b, err := csvutil.Marshal(rows)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
