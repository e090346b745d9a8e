package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// DuplicateKeyError reports a unique constraint violation on a business key.
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s: %q already exists", e.Field, e.Value)
}

// ReferentialError reports a delete blocked by dependent child records.
type ReferentialError struct {
	Entity   string
	ID       int64
	Children string
	Count    int
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("cannot delete %s %d: %d %s still attached", e.Entity, e.ID, e.Count, e.Children)
}

// wrapNotFound converts sql.ErrNoRows to ErrNotFound.
func wrapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// wrapDuplicate maps SQLite unique violations on the given field to a
// DuplicateKeyError.
func wrapDuplicate(err error, field, value string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &DuplicateKeyError{Field: field, Value: value}
	}
	return err
}
