package importer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ghfc/dnastock/internal/grid"
	"github.com/ghfc/dnastock/internal/models"
	"github.com/ghfc/dnastock/internal/volume"
)

// Store is the persistence surface the reconciler writes through.
type Store interface {
	InsertBox(ctx context.Context, box *models.Box) error
	InsertSample(ctx context.Context, sample *models.Sample) error
	InsertTubes(ctx context.Context, tubes []*models.Tube) error
}

// Lookups holds the current database state the reconciler matches
// incoming rows against. The maps are mutated as records are created so
// later rows see earlier ones.
type Lookups struct {
	Individuals        map[string]int64 // individual code -> pk
	SampleByIndividual map[int64]int64  // individual pk -> first sample pk
	SampleByCode       map[string]int64 // sample code -> pk
	BoxesByName        map[string]int64 // box name -> pk
	AmbiguousBoxNames  map[string]bool
	SeenBarcodes       map[string]bool
}

// NewLookups returns empty lookup maps, for imports into a fresh database.
func NewLookups() *Lookups {
	return &Lookups{
		Individuals:        map[string]int64{},
		SampleByIndividual: map[int64]int64{},
		SampleByCode:       map[string]int64{},
		BoxesByName:        map[string]int64{},
		AmbiguousBoxNames:  map[string]bool{},
		SeenBarcodes:       map[string]bool{},
	}
}

// Summary reports what one reconciliation pass did.
type Summary struct {
	Created           int      `json:"created"`
	DuplicateBarcode  int      `json:"duplicate_barcode"`
	DuplicatePosition int      `json:"duplicate_position"`
	NoBarcode         int      `json:"no_barcode"`
	Linked            int      `json:"linked"`
	Unlinked          int      `json:"unlinked"`
	SamplesCreated    int      `json:"samples_created"`
	SamplesReused     int      `json:"samples_reused"`
	BoxesCreated      int      `json:"boxes_created"`
	OutOfGrid         int      `json:"out_of_grid"`
	ErrorsTotal       int      `json:"errors_total"`
	Warnings          []string `json:"warnings,omitempty"`
	// Errors keeps the first maxErrors messages; ErrorsTotal counts all
	// failed rows.
	Errors []string `json:"errors,omitempty"`
}

func (s *Summary) warnf(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Reconciler drives tube imports: boxes first, then tubes row by row with
// duplicate and placement checks, committed in batches.
type Reconciler struct {
	store     Store
	logger    *zap.Logger
	batchSize int
	maxErrors int
}

// NewReconciler builds a reconciler. batchSize and maxErrors fall back to
// sane values when zero. maxErrors caps how many error messages the
// summary keeps; failed rows are skipped and counted either way, the run
// itself never aborts on row errors.
func NewReconciler(store Store, logger *zap.Logger, batchSize, maxErrors int) *Reconciler {
	if batchSize <= 0 {
		batchSize = 500
	}
	if maxErrors <= 0 {
		maxErrors = 50
	}
	return &Reconciler{store: store, logger: logger, batchSize: batchSize, maxErrors: maxErrors}
}

// trimLinkCode strips the dagger marker legacy sheets use to flag codes,
// then surrounding whitespace.
func trimLinkCode(code string) string {
	return strings.TrimSpace(strings.TrimRight(code, "†"))
}

func buildNotes(alias, degraded, wga string) *string {
	var parts []string
	if alias != "" {
		parts = append(parts, "Alias: "+alias)
	}
	if degraded != "" {
		parts = append(parts, "Dégradé: "+degraded)
	}
	if wga != "" {
		parts = append(parts, "WGA: "+wga)
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, "; ")
	return &joined
}

func buildFreezer(freezer, shelf string) *string {
	var parts []string
	if freezer != "" {
		parts = append(parts, "Frigo "+freezer)
	}
	if shelf != "" {
		parts = append(parts, "Étage "+shelf)
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, ", ")
	return &joined
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Run reconciles rows into the store. Partially imported batches stay in
// the database when a later batch fails; the summary reports how far the
// pass got.
func (r *Reconciler) Run(ctx context.Context, rows []Row, lk *Lookups) (*Summary, error) {
	summary := &Summary{}

	if err := r.createBoxes(ctx, rows, lk, summary); err != nil {
		return summary, err
	}
	if err := r.createTubes(ctx, rows, lk, summary); err != nil {
		return summary, err
	}

	r.logger.Info("reconciliation finished",
		zap.Int("created", summary.Created),
		zap.Int("duplicate_barcode", summary.DuplicateBarcode),
		zap.Int("duplicate_position", summary.DuplicatePosition),
		zap.Int("no_barcode", summary.NoBarcode),
		zap.Int("linked", summary.Linked),
		zap.Int("unlinked", summary.Unlinked),
		zap.Int("samples_created", summary.SamplesCreated),
		zap.Int("samples_reused", summary.SamplesReused),
		zap.Int("boxes_created", summary.BoxesCreated),
		zap.Int("out_of_grid", summary.OutOfGrid),
		zap.Int("errors", summary.ErrorsTotal))

	return summary, nil
}

// createBoxes scans all rows for box names and creates the ones the
// database does not have yet. The first row naming a box supplies its
// metadata.
func (r *Reconciler) createBoxes(ctx context.Context, rows []Row, lk *Lookups, summary *Summary) error {
	for _, row := range rows {
		if row.BoxName == "" {
			continue
		}
		if lk.AmbiguousBoxNames[row.BoxName] {
			summary.warnf("box name %q matches several boxes, using the oldest", row.BoxName)
			delete(lk.AmbiguousBoxNames, row.BoxName)
		}
		if _, exists := lk.BoxesByName[row.BoxName]; exists {
			continue
		}

		boxType := models.BoxType(row.BoxType)
		if boxType != models.BoxStock && boxType != models.BoxWorking {
			boxType = models.BoxStock
		}
		box := &models.Box{
			Name:    row.BoxName,
			BoxType: boxType,
			Freezer: buildFreezer(row.Freezer, row.Shelf),
			Shelf:   strPtr(row.Shelf),
		}
		if row.BoxNumber != "" {
			box.Notes = strPtr("N° boîte: " + row.BoxNumber)
		}

		if err := r.store.InsertBox(ctx, box); err != nil {
			return fmt.Errorf("create box %q: %w", row.BoxName, err)
		}
		lk.BoxesByName[row.BoxName] = box.ID
		summary.BoxesCreated++
		r.logger.Debug("box created", zap.String("name", box.Name), zap.Int64("id", box.ID))
	}
	return nil
}

func (r *Reconciler) createTubes(ctx context.Context, rows []Row, lk *Lookups, summary *Summary) error {
	occupied := map[string]map[grid.Coord]string{} // box name -> filled wells
	batch := make([]*models.Tube, 0, r.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.store.InsertTubes(ctx, batch); err != nil {
			return fmt.Errorf("insert tube batch: %w", err)
		}
		summary.Created += len(batch)
		r.logger.Info("tube batch committed", zap.Int("total", summary.Created))
		batch = batch[:0]
		return nil
	}

	for _, row := range rows {
		if row.Barcode == "" {
			summary.NoBarcode++
			continue
		}
		if lk.SeenBarcodes[row.Barcode] {
			summary.DuplicateBarcode++
			continue
		}
		lk.SeenBarcodes[row.Barcode] = true

		coord, hasPos := r.resolvePosition(row, summary)

		if hasPos && row.BoxName != "" {
			wells := occupied[row.BoxName]
			if wells == nil {
				wells = map[grid.Coord]string{}
				occupied[row.BoxName] = wells
			}
			if err := grid.ValidatePlacement(coord, wells); err != nil {
				summary.DuplicatePosition++
				continue
			}
			wells[coord] = row.Barcode
		}

		samplePK, err := r.resolveSample(ctx, row, lk, summary)
		if err != nil {
			summary.ErrorsTotal++
			if len(summary.Errors) < r.maxErrors {
				summary.Errors = append(summary.Errors, err.Error())
			}
			continue
		}

		tube := r.buildTube(row, lk, samplePK, coord, hasPos)
		batch = append(batch, tube)

		if len(batch) >= r.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// resolvePosition picks the pre-decoded coordinate when the source had
// one, otherwise parses the sheet's letter/number pair. Coordinates past
// the physical grid are kept but counted.
func (r *Reconciler) resolvePosition(row Row, summary *Summary) (grid.Coord, bool) {
	var coord grid.Coord
	switch {
	case row.Position != nil:
		coord = *row.Position
	default:
		rowNum, okRow := grid.LetterToRow(row.RowLetter)
		colNum, okCol := grid.ColumnFromText(row.ColumnText)
		if !okRow || !okCol {
			return grid.Coord{}, false
		}
		coord = grid.Coord{Row: rowNum, Col: colNum}
	}
	if coord.Row < 1 || coord.Col < 1 {
		return grid.Coord{}, false
	}
	if grid.OutOfGrid(coord.Row, coord.Col) {
		summary.OutOfGrid++
		summary.warnf("tube %s: position %s is outside the 9x9 grid", row.Barcode, grid.Display(coord.Row, coord.Col))
	}
	return coord, true
}

// resolveSample finds or creates the sample a tube belongs to. Rows from
// dumps name the sample directly; sheet rows name the individual and the
// sample is reused or created underneath it.
func (r *Reconciler) resolveSample(ctx context.Context, row Row, lk *Lookups, summary *Summary) (*int64, error) {
	if row.SampleCode != "" {
		if pk, ok := lk.SampleByCode[row.SampleCode]; ok {
			summary.Linked++
			summary.SamplesReused++
			return &pk, nil
		}
		sample := &models.Sample{
			SampleID:   row.SampleCode,
			SampleType: strPtr(row.Tissue),
		}
		if err := r.store.InsertSample(ctx, sample); err != nil {
			return nil, fmt.Errorf("tube %s: create sample %q: %v", row.Barcode, row.SampleCode, err)
		}
		lk.SampleByCode[row.SampleCode] = sample.ID
		summary.Linked++
		summary.SamplesCreated++
		return &sample.ID, nil
	}

	code := trimLinkCode(row.IndividualCode)
	if code == "" {
		summary.Unlinked++
		return nil, nil
	}

	individualPK, ok := lk.Individuals[code]
	if !ok {
		summary.Unlinked++
		return nil, nil
	}
	summary.Linked++

	if samplePK, ok := lk.SampleByIndividual[individualPK]; ok {
		summary.SamplesReused++
		return &samplePK, nil
	}

	// New sample under this individual; suffix the code on collision.
	sampleCode := code
	for suffix := 1; ; suffix++ {
		if _, taken := lk.SampleByCode[sampleCode]; !taken {
			break
		}
		sampleCode = fmt.Sprintf("%s_T%d", code, suffix)
	}

	sample := &models.Sample{
		SampleID:     sampleCode,
		IndividualID: &individualPK,
		SampleType:   strPtr(row.Tissue),
	}
	if row.Alias != "" {
		sample.Notes = strPtr("Alias: " + row.Alias)
	}
	if err := r.store.InsertSample(ctx, sample); err != nil {
		return nil, fmt.Errorf("tube %s: create sample %q: %v", row.Barcode, sampleCode, err)
	}
	lk.SampleByIndividual[individualPK] = sample.ID
	lk.SampleByCode[sampleCode] = sample.ID
	summary.SamplesCreated++
	return &sample.ID, nil
}

func (r *Reconciler) buildTube(row Row, lk *Lookups, samplePK *int64, coord grid.Coord, hasPos bool) *models.Tube {
	tube := &models.Tube{
		Barcode:  row.Barcode,
		SampleID: samplePK,
		TubeType: models.TubeStock,
	}

	if boxPK, ok := lk.BoxesByName[row.BoxName]; ok && row.BoxName != "" {
		tube.BoxID = &boxPK
	}
	if hasPos {
		tube.PositionRow = &coord.Row
		tube.PositionCol = &coord.Col
	}

	if row.CurrentVolume != nil {
		tube.CurrentVolume = row.CurrentVolume
		tube.InitialVolume = row.InitialVolume
	} else {
		tube.CurrentVolume = volume.ParseVolume(row.VolumeText)
	}
	if row.Concentration != nil {
		tube.Concentration = row.Concentration
	} else {
		tube.Concentration = volume.ParseConcentration(row.ConcentrationText)
	}
	volume.Initialize(tube)

	if row.Quality != "" {
		tube.Quality = strPtr(row.Quality)
	} else {
		tube.Quality = strPtr(row.Degraded)
	}
	tube.Source = strPtr(row.Tissue)
	if row.Notes != "" {
		tube.Notes = strPtr(row.Notes)
	} else {
		tube.Notes = buildNotes(row.Alias, row.Degraded, row.WGA)
	}
	return tube
}
