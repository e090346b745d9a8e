package importer

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/ghfc/dnastock/internal/grid"
)

// Row is one tube record on its way into the database, regardless of
// where it came from. Sheet rows carry raw text; dump rows arrive with
// positions and volumes already decoded.
type Row struct {
	Line int

	Barcode        string
	IndividualCode string
	SampleCode     string
	Alias          string

	BoxName   string
	BoxNumber string
	BoxType   string
	Freezer   string
	Shelf     string

	RowLetter  string
	ColumnText string
	Position   *grid.Coord

	VolumeText        string
	ConcentrationText string
	InitialVolume     *float64
	CurrentVolume     *float64
	Concentration     *float64

	Quality  string
	Degraded string
	Tissue   string
	WGA      string
	Notes    string
}

// Column layout of the merged inventory sheet.
const (
	colBarcode = iota
	colIndividualCode
	colAlias
	colVolume
	colPositionH
	colPositionV
	colFreezer
	colShelf
	colBoxNumber
	colBoxName
	colPositionNumber
	colBoxType
	colConcentration
	colDegraded
	colTissue
	colWGA

	sheetMinColumns = 12
)

// ReadSheet parses the tab-separated inventory sheet. The first line is
// the header; rows shorter than the minimum column count are dropped.
func ReadSheet(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	field := func(record []string, idx int) string {
		if idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var rows []Row
	for i, record := range records[1:] {
		if len(record) < sheetMinColumns {
			continue
		}
		rows = append(rows, Row{
			Line:              i + 2,
			Barcode:           field(record, colBarcode),
			IndividualCode:    field(record, colIndividualCode),
			Alias:             field(record, colAlias),
			VolumeText:        field(record, colVolume),
			ColumnText:        field(record, colPositionH),
			RowLetter:         field(record, colPositionV),
			Freezer:           field(record, colFreezer),
			Shelf:             field(record, colShelf),
			BoxNumber:         field(record, colBoxNumber),
			BoxName:           field(record, colBoxName),
			BoxType:           field(record, colBoxType),
			ConcentrationText: field(record, colConcentration),
			Degraded:          field(record, colDegraded),
			Tissue:            field(record, colTissue),
			WGA:               field(record, colWGA),
		})
	}
	return rows, nil
}
