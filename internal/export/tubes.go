// Package export renders tube inventories as spreadsheet files. The
// column set and French headers match the sheets the lab already uses.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ghfc/dnastock/internal/models"
)

// Headers, in output order.
var Headers = []string{
	"Barcode",
	"Code Échantillon",
	"ID Individu",
	"Boîte",
	"Congélateur",
	"Position",
	"Concentration (ng/µL)",
	"Qualité",
	"Volume Initial (µL)",
	"Volume Actuel (µL)",
	"Source",
	"Type",
	"Statut",
	"Notes",
}

// TubeRow is one denormalized output line.
type TubeRow struct {
	Barcode       string
	SampleCode    string
	IndividualID  string
	BoxName       string
	Freezer       string
	Position      string
	Concentration *float64
	Quality       string
	InitialVolume *float64
	CurrentVolume *float64
	Source        string
	TubeType      string
	Status        string
	Notes         string
}

// FromTube flattens a tube with loaded relations into an output row.
func FromTube(t *models.Tube) TubeRow {
	row := TubeRow{
		Barcode:       t.Barcode,
		Position:      t.PositionDisplay(),
		Concentration: t.Concentration,
		InitialVolume: t.InitialVolume,
		CurrentVolume: t.CurrentVolume,
		TubeType:      string(t.TubeType),
		Status:        string(t.Status()),
	}
	if t.Quality != nil {
		row.Quality = *t.Quality
	}
	if t.Source != nil {
		row.Source = *t.Source
	}
	if t.Notes != nil {
		row.Notes = *t.Notes
	}
	if t.Sample != nil {
		row.SampleCode = t.Sample.SampleID
		if t.Sample.Individual != nil {
			row.IndividualID = t.Sample.Individual.IndividualID
		}
	}
	if t.Box != nil {
		row.BoxName = t.Box.Name
		if t.Box.Freezer != nil {
			row.Freezer = *t.Box.Freezer
		}
	}
	return row
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func (r TubeRow) values() []string {
	return []string{
		r.Barcode,
		r.SampleCode,
		r.IndividualID,
		r.BoxName,
		r.Freezer,
		r.Position,
		formatFloat(r.Concentration),
		r.Quality,
		formatFloat(r.InitialVolume),
		formatFloat(r.CurrentVolume),
		r.Source,
		r.TubeType,
		r.Status,
		r.Notes,
	}
}

// WriteTSV writes rows as UTF-8 TSV with a BOM, so spreadsheet programs
// pick up the accented headers correctly.
func WriteTSV(w io.Writer, rows []TubeRow) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	writer.Comma = '\t'

	if err := writer.Write(Headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.values()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

const sheetName = "Tubes"

// BuildXLSX renders rows as an Excel workbook with a styled header row.
func BuildXLSX(rows []TubeRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#2D3250"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	widths := make([]int, len(Headers))
	for col, header := range Headers {
		widths[col] = len(header)
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header %s: %w", cell, err)
		}
	}

	for i, row := range rows {
		for col, value := range row.values() {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
			if len(value) > widths[col] {
				widths[col] = len(value)
			}
		}
	}

	for col := range Headers {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		width := float64(widths[col]) + 2
		if width > 50 {
			width = 50
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return nil, err
		}
	}

	out, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Filename builds the attachment name for an export.
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("tubes_export_%s.%s", now.Format("20060102"), format)
}
