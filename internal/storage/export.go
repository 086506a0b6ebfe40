package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

type ExportData struct {
	RunMetadata
	Times  []float64            `json:"times"`
	Series map[string][]float64 `json:"series"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes a header of time and the record columns, then one row
// per sample.
func WriteCSV(w io.Writer, rec *Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"time"}, rec.Columns...)); err != nil {
		return err
	}
	for i, t := range rec.T {
		row := []string{formatFloat(t)}
		for _, v := range rec.Data.RawRowView(i) {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportJSON writes the run metadata and its samples keyed by column.
func ExportJSON(w io.Writer, meta *RunMetadata, rec *Record) error {
	data := ExportData{
		RunMetadata: *meta,
		Times:       rec.T,
		Series:      make(map[string][]float64, len(rec.Columns)),
	}
	for _, name := range rec.Columns {
		data.Series[name], _ = rec.Column(name)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
