package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ghfc/dnastock/internal/grid"
	"github.com/ghfc/dnastock/internal/models"
)

// Legacy dump tables.
const (
	dumpTableBoxes    = "boite"
	dumpTableArrivals = "arrivee"
	dumpTableTubes    = "tube"
)

// DumpBox is a storage box record from the legacy dump.
type DumpBox struct {
	LegacyID int64
	Name     string
	BoxType  string
	Notes    string
}

// DumpArrival is one sample arrival from the legacy dump. The sample
// code is picked from the code columns by preference; rows with no code
// at all fall back to a synthetic one.
type DumpArrival struct {
	LegacyID       int64
	IndividualCode string
	SampleCode     string
	ArrivalDate    *time.Time
}

// DumpData is the decoded content of a legacy stock dump.
type DumpData struct {
	Boxes    []DumpBox
	Arrivals []DumpArrival
	Rows     []Row
}

// LoadDump decodes the legacy MySQL dump into boxes, arrivals and tube
// rows ready for reconciliation.
func LoadDump(dump string) (*DumpData, error) {
	data := &DumpData{}

	boxNames := map[int64]string{}
	boxRecords, err := ExtractInserts(dump, dumpTableBoxes)
	if err != nil {
		return nil, err
	}
	for _, raw := range boxRecords {
		if len(raw) != 4 {
			continue
		}
		values := decodeRecord(raw)
		id, ok := valueInt(values[0])
		if !ok {
			continue
		}
		box := DumpBox{
			LegacyID: id,
			Name:     valueString(values[1]),
			BoxType:  valueString(values[2]),
			Notes:    valueString(values[3]),
		}
		if box.Name == "" {
			continue
		}
		data.Boxes = append(data.Boxes, box)
		boxNames[id] = box.Name
	}

	arrivalCodes := map[int64]string{}
	arrivalRecords, err := ExtractInserts(dump, dumpTableArrivals)
	if err != nil {
		return nil, err
	}
	for _, raw := range arrivalRecords {
		if len(raw) != 7 {
			continue
		}
		values := decodeRecord(raw)
		id, ok := valueInt(values[0])
		if !ok {
			continue
		}
		arrival := DumpArrival{
			LegacyID:       id,
			IndividualCode: valueString(values[1]),
			SampleCode:     pickSampleCode(id, valueString(values[3]), valueString(values[2]), valueString(values[4])),
			ArrivalDate:    parseDumpDate(valueString(values[6])),
		}
		data.Arrivals = append(data.Arrivals, arrival)
		arrivalCodes[id] = arrival.SampleCode
	}

	tubeRecords, err := ExtractInserts(dump, dumpTableTubes)
	if err != nil {
		return nil, err
	}
	for _, raw := range tubeRecords {
		if len(raw) != 12 {
			continue
		}
		values := decodeRecord(raw)
		legacyBarcode, ok := valueInt(values[0])
		if !ok {
			continue
		}

		row := Row{
			Barcode:       fmt.Sprintf("T%06d", legacyBarcode),
			Concentration: valueFloat(values[5]),
			Quality:       valueString(values[6]),
			InitialVolume: valueFloat(values[7]),
			CurrentVolume: valueFloat(values[8]),
			Tissue:        valueString(values[9]),
			Notes:         valueString(values[11]),
		}
		if arrivalID, ok := valueInt(values[1]); ok {
			row.SampleCode = arrivalCodes[arrivalID]
		}
		if boxID, ok := valueInt(values[2]); ok {
			row.BoxName = boxNames[boxID]
		}
		if posRow, okRow := valueInt(values[3]); okRow {
			if posCol, okCol := valueInt(values[4]); okCol && posRow >= 1 && posCol >= 1 {
				row.Position = &grid.Coord{Row: int(posRow), Col: int(posCol)}
			}
		}
		data.Rows = append(data.Rows, row)
	}

	return data, nil
}

// pickSampleCode prefers the study code, then the old cohort code, then
// the raw extraction code, and finally a synthetic arrival code.
func pickSampleCode(arrivalID int64, c0733, aom, adn string) string {
	switch {
	case c0733 != "":
		return c0733
	case aom != "":
		return aom
	case adn != "":
		return adn
	default:
		return fmt.Sprintf("ARR%d", arrivalID)
	}
}

func parseDumpDate(text string) *time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}

// ImportDump runs a full dump import: legacy boxes become boxes, arrivals
// become samples linked to known individuals, and tubes go through the
// reconciler.
func ImportDump(ctx context.Context, db *bun.DB, logger *zap.Logger, dump string, batchSize, maxErrors int) (*Summary, error) {
	data, err := LoadDump(dump)
	if err != nil {
		return nil, err
	}
	logger.Info("dump decoded",
		zap.Int("boxes", len(data.Boxes)),
		zap.Int("arrivals", len(data.Arrivals)),
		zap.Int("tubes", len(data.Rows)))

	lk, err := LoadLookups(ctx, db)
	if err != nil {
		return nil, err
	}
	store := NewDBStore(db)

	for _, dumpBox := range data.Boxes {
		if _, exists := lk.BoxesByName[dumpBox.Name]; exists {
			continue
		}
		boxType := models.BoxType(dumpBox.BoxType)
		if boxType != models.BoxStock && boxType != models.BoxWorking {
			boxType = models.BoxStock
		}
		box := &models.Box{Name: dumpBox.Name, BoxType: boxType, Notes: strPtr(dumpBox.Notes)}
		if err := store.InsertBox(ctx, box); err != nil {
			return nil, fmt.Errorf("create box %q: %w", dumpBox.Name, err)
		}
		lk.BoxesByName[dumpBox.Name] = box.ID
	}

	for _, arrival := range data.Arrivals {
		if _, exists := lk.SampleByCode[arrival.SampleCode]; exists {
			continue
		}
		sample := &models.Sample{
			SampleID:    arrival.SampleCode,
			ArrivalDate: arrival.ArrivalDate,
		}
		if pk, ok := lk.Individuals[arrival.IndividualCode]; ok {
			sample.IndividualID = &pk
		}
		if err := store.InsertSample(ctx, sample); err != nil {
			return nil, fmt.Errorf("create sample %q: %w", arrival.SampleCode, err)
		}
		lk.SampleByCode[arrival.SampleCode] = sample.ID
		if sample.IndividualID != nil {
			if _, ok := lk.SampleByIndividual[*sample.IndividualID]; !ok {
				lk.SampleByIndividual[*sample.IndividualID] = sample.ID
			}
		}
	}

	return NewReconciler(store, logger, batchSize, maxErrors).Run(ctx, data.Rows, lk)
}
