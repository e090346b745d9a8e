package models

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Usage records a checkout of material from a tube: who took it, when,
// how much, and whether the tube came back.
type Usage struct {
	bun.BaseModel `bun:"table:usages,alias:u"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	TubeID      *int64     `bun:"tube_id" json:"tube_id,omitempty"`
	UserName    *string    `bun:"user_name" json:"user_name,omitempty"`
	DateOut     *time.Time `bun:"date_out" json:"date_out,omitempty"`
	DateReturn  *time.Time `bun:"date_return" json:"date_return,omitempty"`
	VolumeTaken *float64   `bun:"volume_taken" json:"volume_taken,omitempty"`
	Purpose     *string    `bun:"purpose" json:"purpose,omitempty"`
	Notes       *string    `bun:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Tube *Tube `bun:"rel:belongs-to,join:tube_id=id" json:"tube,omitempty"`
}

// Validate checks that the usage record is coherent.
func (u *Usage) Validate() error {
	if u.TubeID == nil || *u.TubeID <= 0 {
		return errors.New("tube ID is required")
	}
	if u.VolumeTaken != nil && *u.VolumeTaken <= 0 {
		return errors.New("volume taken must be positive")
	}
	if u.DateOut != nil && u.DateReturn != nil && u.DateReturn.Before(*u.DateOut) {
		return errors.New("return date cannot precede checkout date")
	}
	return nil
}

// IsReturned reports whether the tube went back to storage.
func (u *Usage) IsReturned() bool {
	return u.DateReturn != nil
}
