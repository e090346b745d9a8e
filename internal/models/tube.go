package models

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/ghfc/dnastock/internal/grid"
)

// Tube is the physical unit of storage: one barcoded tube holding part
// of a sample, sitting (usually) in a well of a box.
type Tube struct {
	bun.BaseModel `bun:"table:tubes,alias:t"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Barcode       string    `bun:"barcode,unique,notnull" json:"barcode"`
	SampleID      *int64    `bun:"sample_id" json:"sample_id,omitempty"`
	BoxID         *int64    `bun:"box_id" json:"box_id,omitempty"`
	PositionRow   *int      `bun:"position_row" json:"position_row,omitempty"`
	PositionCol   *int      `bun:"position_col" json:"position_col,omitempty"`
	TubeType      TubeType  `bun:"tube_type,notnull,default:'stock'" json:"tube_type"`
	Concentration *float64  `bun:"concentration" json:"concentration,omitempty"`
	InitialVolume *float64  `bun:"initial_volume" json:"initial_volume,omitempty"`
	CurrentVolume *float64  `bun:"current_volume" json:"current_volume,omitempty"`
	Quality       *string   `bun:"quality" json:"quality,omitempty"`
	Source        *string   `bun:"source" json:"source,omitempty"`
	Notes         *string   `bun:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Sample *Sample  `bun:"rel:belongs-to,join:sample_id=id" json:"sample,omitempty"`
	Box    *Box     `bun:"rel:belongs-to,join:box_id=id" json:"box,omitempty"`
	Usages []*Usage `bun:"rel:has-many,join:id=tube_id" json:"usages,omitempty"`
}

// BeforeUpdate updates the timestamp on modifications.
func (t *Tube) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	t.UpdatedAt = time.Now()
	return nil
}

// Validate checks that required fields are present and the position, if
// any, is complete.
func (t *Tube) Validate() error {
	if t.Barcode == "" {
		return errors.New("barcode is required")
	}
	if t.TubeType != TubeStock && t.TubeType != TubeWorking {
		return errors.New("tube type must be stock or working")
	}
	if (t.PositionRow == nil) != (t.PositionCol == nil) {
		return errors.New("position row and column must be set together")
	}
	if t.PositionRow != nil && (*t.PositionRow < 1 || *t.PositionCol < 1) {
		return errors.New("position coordinates must be positive")
	}
	if t.InitialVolume != nil && *t.InitialVolume < 0 {
		return errors.New("initial volume cannot be negative")
	}
	if t.CurrentVolume != nil && *t.CurrentVolume < 0 {
		return errors.New("current volume cannot be negative")
	}
	return nil
}

// Status derives the availability status from the volume fields.
func (t *Tube) Status() TubeStatus {
	if t.CurrentVolume == nil || *t.CurrentVolume <= 0 {
		return StatusEmpty
	}
	cur := *t.CurrentVolume
	if cur < CriticalVolumeThreshold {
		return StatusCritical
	}
	if t.InitialVolume != nil && *t.InitialVolume > 0 && cur < *t.InitialVolume*LowVolumeFraction {
		return StatusLow
	}
	return StatusAvailable
}

// HasPosition reports whether the tube is placed in a box well.
func (t *Tube) HasPosition() bool {
	return t.PositionRow != nil && t.PositionCol != nil
}

// PositionDisplay renders the position like "B7", or "" when unplaced.
func (t *Tube) PositionDisplay() string {
	if !t.HasPosition() {
		return ""
	}
	return grid.Display(*t.PositionRow, *t.PositionCol)
}

// Coord returns the position as a grid coordinate.
func (t *Tube) Coord() (grid.Coord, bool) {
	if !t.HasPosition() {
		return grid.Coord{}, false
	}
	return grid.Coord{Row: *t.PositionRow, Col: *t.PositionCol}, true
}
