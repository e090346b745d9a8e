package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ghfc/dnastock/internal/models"
	"github.com/ghfc/dnastock/internal/repositories"
)

// IndividualRecord is one parsed line of the individuals sheet.
type IndividualRecord struct {
	Line             int
	IndividualID     string
	Aliases          string
	FamilyID         string
	Sex              *models.Sex
	Phenotype        string
	Projects         string
	SampleCodes      []string
	OtherFamilyCodes string
}

// IndividualSummary reports what an individuals import did.
type IndividualSummary struct {
	IndividualsCreated int      `json:"individuals_created"`
	IndividualsUpdated int      `json:"individuals_updated"`
	SamplesCreated     int      `json:"samples_created"`
	SamplesLinked      int      `json:"samples_linked"`
	Errors             []string `json:"errors,omitempty"`
}

// ReadIndividualSheet parses the individuals sheet. Columns are matched
// by header name, so the column order does not matter.
func ReadIndividualSheet(r io.Reader) ([]IndividualRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var records []IndividualRecord
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		id := field(record, "ID")
		if id == "" {
			continue
		}

		rec := IndividualRecord{
			Line:             line,
			IndividualID:     id,
			Aliases:          field(record, "Aliases"),
			FamilyID:         field(record, "Family ID"),
			Phenotype:        field(record, "Phenotype"),
			Projects:         field(record, "Projects"),
			OtherFamilyCodes: field(record, "Other family codes"),
		}
		if sex, ok := models.ParseSex(field(record, "Sex")); ok && field(record, "Sex") != "" {
			rec.Sex = &sex
		}
		for _, code := range strings.Split(field(record, "Samples"), ",") {
			if code = strings.TrimSpace(code); code != "" {
				rec.SampleCodes = append(rec.SampleCodes, code)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// MergeIndividual applies a sheet record onto an individual. Incoming
// values win only when non-empty, so re-imports never blank out fields.
// Returns true when anything changed.
func MergeIndividual(existing *models.Individual, rec IndividualRecord) bool {
	changed := false
	merge := func(dst **string, src string) {
		if src != "" && (*dst == nil || **dst != src) {
			*dst = &src
			changed = true
		}
	}
	merge(&existing.Aliases, rec.Aliases)
	merge(&existing.FamilyID, rec.FamilyID)
	merge(&existing.Phenotype, rec.Phenotype)
	merge(&existing.Projects, rec.Projects)
	merge(&existing.OtherFamilyCodes, rec.OtherFamilyCodes)
	if rec.Sex != nil && (existing.Sex == nil || *existing.Sex != *rec.Sex) {
		existing.Sex = rec.Sex
		changed = true
	}
	return changed
}

// ImportIndividuals merges the individuals sheet into the database:
// unknown individuals are created, known ones updated field by field, and
// listed sample codes created or relinked under the individual. Rows that
// fail are reported and skipped.
func ImportIndividuals(ctx context.Context, db *bun.DB, logger *zap.Logger, r io.Reader) (*IndividualSummary, error) {
	records, err := ReadIndividualSheet(r)
	if err != nil {
		return nil, err
	}

	summary := &IndividualSummary{}
	for _, rec := range records {
		if err := importIndividual(ctx, db, rec, summary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", rec.Line, err))
		}
	}

	logger.Info("individuals import finished",
		zap.Int("created", summary.IndividualsCreated),
		zap.Int("updated", summary.IndividualsUpdated),
		zap.Int("samples_created", summary.SamplesCreated),
		zap.Int("samples_linked", summary.SamplesLinked),
		zap.Int("errors", len(summary.Errors)))

	return summary, nil
}

func importIndividual(ctx context.Context, db *bun.DB, rec IndividualRecord, summary *IndividualSummary) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		individual, err := repositories.GetIndividualByCode(ctx, tx, rec.IndividualID)
		switch {
		case err == repositories.ErrNotFound:
			individual = &models.Individual{IndividualID: rec.IndividualID}
			MergeIndividual(individual, rec)
			if err := repositories.InsertIndividual(ctx, tx, individual); err != nil {
				return err
			}
			summary.IndividualsCreated++
		case err != nil:
			return err
		default:
			if MergeIndividual(individual, rec) {
				if err := repositories.UpdateIndividual(ctx, tx, individual); err != nil {
					return err
				}
			}
			summary.IndividualsUpdated++
		}

		for _, code := range rec.SampleCodes {
			sample, err := repositories.GetSampleByCode(ctx, tx, code)
			switch {
			case err == repositories.ErrNotFound:
				sample = &models.Sample{SampleID: code, IndividualID: &individual.ID}
				if err := repositories.InsertSample(ctx, tx, sample); err != nil {
					return err
				}
				summary.SamplesCreated++
			case err != nil:
				return err
			default:
				if sample.IndividualID == nil || *sample.IndividualID != individual.ID {
					sample.IndividualID = &individual.ID
					if err := repositories.UpdateSample(ctx, tx, sample); err != nil {
						return err
					}
					summary.SamplesLinked++
				}
			}
		}
		return nil
	})
}
