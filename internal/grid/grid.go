// Package grid resolves tube positions inside a storage box. Coordinates
// are 1-based: row 1 is the top row, column 1 the leftmost column. The
// physical boxes in the lab are 9x9, but larger coordinates are accepted
// and only flagged as out of grid.
package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Rows and Cols describe the physical box layout.
const (
	Rows = 9
	Cols = 9
)

// Coord is a 1-based position inside a box.
type Coord struct {
	Row int
	Col int
}

// PositionConflictError reports a placement into an occupied well.
type PositionConflictError struct {
	Coord   Coord
	TubeID  int64
	Barcode string
}

func (e *PositionConflictError) Error() string {
	return fmt.Sprintf("position %s already occupied by tube %s", Display(e.Coord.Row, e.Coord.Col), e.Barcode)
}

// LetterToRow converts a row letter from legacy records to a row number.
// Only A through I are meaningful on a 9x9 box; anything else is rejected.
func LetterToRow(s string) (int, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) != 1 || s[0] < 'A' || s[0] > 'I' {
		return 0, false
	}
	return int(s[0]-'A') + 1, true
}

// ColumnFromText parses a column number from free text.
func ColumnFromText(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Parse builds a coordinate from a row letter and a column number in text
// form. Row letters A-Z are accepted here to tolerate oversized legacy
// boxes; validation against the physical grid is a separate concern.
func Parse(letter, numberText string) (Coord, error) {
	letter = strings.TrimSpace(strings.ToUpper(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return Coord{}, fmt.Errorf("invalid row letter %q", letter)
	}
	col, ok := ColumnFromText(numberText)
	if !ok {
		return Coord{}, fmt.Errorf("invalid column %q", numberText)
	}
	return Coord{Row: int(letter[0]-'A') + 1, Col: col}, nil
}

// ParseDisplay parses a display string like "B7" back into a coordinate.
func ParseDisplay(s string) (Coord, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) < 2 {
		return Coord{}, fmt.Errorf("invalid position %q", s)
	}
	if s[0] >= 'A' && s[0] <= 'Z' {
		return Parse(s[:1], s[1:])
	}
	// numeric fallback "r12c3"
	if s[0] == 'R' {
		rest := s[1:]
		ci := strings.IndexByte(rest, 'C')
		if ci > 0 {
			row, err1 := strconv.Atoi(rest[:ci])
			col, err2 := strconv.Atoi(rest[ci+1:])
			if err1 == nil && err2 == nil && row >= 1 && col >= 1 {
				return Coord{Row: row, Col: col}, nil
			}
		}
	}
	return Coord{}, fmt.Errorf("invalid position %q", s)
}

// Display renders a coordinate for humans: letter rows up to Z, numeric
// fallback beyond that. Invalid coordinates render as an empty string.
func Display(row, col int) string {
	if row < 1 || col < 1 {
		return ""
	}
	if row <= 26 {
		return fmt.Sprintf("%c%d", 'A'+row-1, col)
	}
	return fmt.Sprintf("r%dc%d", row, col)
}

// OutOfGrid reports whether a coordinate falls outside the physical box.
func OutOfGrid(row, col int) bool {
	return row > Rows || col > Cols
}

// ValidatePlacement checks a coordinate against the occupied wells of a
// box. occupied maps coordinates to the barcode of the tube holding them.
func ValidatePlacement(c Coord, occupied map[Coord]string) error {
	if barcode, taken := occupied[c]; taken {
		return &PositionConflictError{Coord: c, Barcode: barcode}
	}
	return nil
}
