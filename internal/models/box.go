package models

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Box is a physical storage box in a freezer, laid out as a grid of wells.
type Box struct {
	bun.BaseModel `bun:"table:boxes,alias:b"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	BoxType   BoxType   `bun:"box_type,notnull,default:'stock'" json:"box_type"`
	Freezer   *string   `bun:"freezer" json:"freezer,omitempty"`
	Shelf     *string   `bun:"shelf" json:"shelf,omitempty"`
	Notes     *string   `bun:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Tubes []*Tube `bun:"rel:has-many,join:id=box_id" json:"tubes,omitempty"`
}

// BeforeUpdate updates the timestamp on modifications.
func (b *Box) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	b.UpdatedAt = time.Now()
	return nil
}

// Validate checks that required fields are present.
func (b *Box) Validate() error {
	if b.Name == "" {
		return errors.New("box name is required")
	}
	if b.BoxType != BoxStock && b.BoxType != BoxWorking {
		return errors.New("box type must be stock or working")
	}
	return nil
}
