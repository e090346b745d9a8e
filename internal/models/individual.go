package models

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Individual is a person (or cell line donor) from whom samples were taken.
type Individual struct {
	bun.BaseModel `bun:"table:individuals,alias:i"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	IndividualID     string    `bun:"individual_id,unique,notnull" json:"individual_id"`
	Aliases          *string   `bun:"aliases" json:"aliases,omitempty"`
	FamilyID         *string   `bun:"family_id" json:"family_id,omitempty"`
	Sex              *Sex      `bun:"sex" json:"sex,omitempty"`
	Phenotype        *string   `bun:"phenotype" json:"phenotype,omitempty"`
	Projects         *string   `bun:"projects" json:"projects,omitempty"`
	OtherFamilyCodes *string   `bun:"other_family_codes" json:"other_family_codes,omitempty"`
	Notes            *string   `bun:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Samples []*Sample `bun:"rel:has-many,join:id=individual_id" json:"samples,omitempty"`
}

// BeforeUpdate updates the timestamp on modifications.
func (i *Individual) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	i.UpdatedAt = time.Now()
	return nil
}

// Validate checks that required fields are present.
func (i *Individual) Validate() error {
	if i.IndividualID == "" {
		return errors.New("individual ID is required")
	}
	if i.Sex != nil && (*i.Sex < SexUnknown || *i.Sex > SexFemale) {
		return errors.New("sex must be 0, 1 or 2")
	}
	return nil
}

// SexDisplay returns a label for the individual's sex.
func (i *Individual) SexDisplay() string {
	if i.Sex == nil {
		return SexUnknown.Display()
	}
	return i.Sex.Display()
}
