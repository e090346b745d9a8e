package models

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Sample is a biological extraction from an individual. One individual
// can have several samples; each sample can be split into several tubes.
type Sample struct {
	bun.BaseModel `bun:"table:samples,alias:sp"`

	ID           int64      `bun:"id,pk,autoincrement" json:"id"`
	SampleID     string     `bun:"sample_id,unique,notnull" json:"sample_id"`
	IndividualID *int64     `bun:"individual_id" json:"individual_id,omitempty"`
	SampleType   *string    `bun:"sample_type" json:"sample_type,omitempty"`
	ArrivalDate  *time.Time `bun:"arrival_date" json:"arrival_date,omitempty"`
	Notes        *string    `bun:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Individual *Individual `bun:"rel:belongs-to,join:individual_id=id" json:"individual,omitempty"`
	Tubes      []*Tube     `bun:"rel:has-many,join:id=sample_id" json:"tubes,omitempty"`
}

// BeforeUpdate updates the timestamp on modifications.
func (s *Sample) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	s.UpdatedAt = time.Now()
	return nil
}

// Validate checks that required fields are present.
func (s *Sample) Validate() error {
	if s.SampleID == "" {
		return errors.New("sample ID is required")
	}
	return nil
}

// IsLinked reports whether the sample is attached to an individual.
func (s *Sample) IsLinked() bool {
	return s.IndividualID != nil && *s.IndividualID > 0
}
