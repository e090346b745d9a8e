package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ghfc/dnastock/internal/models"
)

func fptr(v float64) *float64 { return &v }
func sptr(s string) *string   { return &s }
func iptr(v int) *int         { return &v }

func sampleTube() *models.Tube {
	return &models.Tube{
		Barcode:       "T000042",
		TubeType:      models.TubeStock,
		PositionRow:   iptr(2),
		PositionCol:   iptr(7),
		Concentration: fptr(52.5),
		InitialVolume: fptr(100),
		CurrentVolume: fptr(80),
		Quality:       sptr("OK"),
		Source:        sptr("sang"),
		Notes:         sptr("Alias: AOM-3"),
		Sample: &models.Sample{
			SampleID:   "c0733-17",
			Individual: &models.Individual{IndividualID: "IND-0042"},
		},
		Box: &models.Box{Name: "ADN 1", Freezer: sptr("Frigo 2, Étage 3")},
	}
}

func TestFromTube(t *testing.T) {
	row := FromTube(sampleTube())
	require.Equal(t, "T000042", row.Barcode)
	require.Equal(t, "c0733-17", row.SampleCode)
	require.Equal(t, "IND-0042", row.IndividualID)
	require.Equal(t, "ADN 1", row.BoxName)
	require.Equal(t, "Frigo 2, Étage 3", row.Freezer)
	require.Equal(t, "B7", row.Position)
	require.Equal(t, "available", row.Status)
}

func TestFromTubeBareTube(t *testing.T) {
	row := FromTube(&models.Tube{Barcode: "T000001", TubeType: models.TubeStock})
	require.Equal(t, "T000001", row.Barcode)
	require.Empty(t, row.SampleCode)
	require.Empty(t, row.Position)
	require.Equal(t, "empty", row.Status)
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTSV(&buf, []TubeRow{FromTube(sampleTube())})
	require.NoError(t, err)

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"), "expected UTF-8 BOM")

	lines := strings.Split(strings.TrimRight(strings.TrimPrefix(out, "\xEF\xBB\xBF"), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, strings.Join(Headers, "\t"), lines[0])

	fields := strings.Split(lines[1], "\t")
	require.Len(t, fields, len(Headers))
	require.Equal(t, "T000042", fields[0])
	require.Equal(t, "52.5", fields[6])
	require.Equal(t, "available", fields[12])
}

func TestBuildXLSX(t *testing.T) {
	data, err := BuildXLSX([]TubeRow{FromTube(sampleTube())})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, Headers, rows[0])
	require.Equal(t, "T000042", rows[1][0])
	require.Equal(t, "B7", rows[1][5])
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	require.Equal(t, "tubes_export_20250314.tsv", Filename("tsv", now))
	require.Equal(t, "tubes_export_20250314.xlsx", Filename("xlsx", now))
}
