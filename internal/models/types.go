package models

import "strings"

// Sex encodes biological sex the way the legacy records did: 0 unknown,
// 1 male, 2 female.
type Sex int

const (
	SexUnknown Sex = 0
	SexMale    Sex = 1
	SexFemale  Sex = 2
)

// Display returns a human readable label.
func (s Sex) Display() string {
	switch s {
	case SexMale:
		return "M"
	case SexFemale:
		return "F"
	default:
		return "Unknown"
	}
}

// ParseSex maps free-text sex markers from legacy files to the enum.
func ParseSex(text string) (Sex, bool) {
	switch text {
	case "1", "M", "m", "H", "h":
		return SexMale, true
	case "2", "F", "f":
		return SexFemale, true
	case "0", "", "?":
		return SexUnknown, true
	}
	return SexUnknown, false
}

// BoxType distinguishes long-term stock boxes from working boxes.
type BoxType string

const (
	BoxStock   BoxType = "stock"
	BoxWorking BoxType = "working"
)

// TubeType mirrors BoxType at the tube level.
type TubeType string

const (
	TubeStock   TubeType = "stock"
	TubeWorking TubeType = "working"
)

// TubeStatus is derived from the volume fields, never stored.
type TubeStatus string

const (
	StatusEmpty     TubeStatus = "empty"
	StatusCritical  TubeStatus = "critical"
	StatusLow       TubeStatus = "low"
	StatusAvailable TubeStatus = "available"
)

// ParseTubeStatus maps a status filter value to the enum, accepting any
// casing. ok is false for unknown values; the empty string means no
// filter and is valid.
func ParseTubeStatus(text string) (TubeStatus, bool) {
	switch strings.ToLower(text) {
	case "":
		return "", true
	case string(StatusEmpty):
		return StatusEmpty, true
	case string(StatusCritical):
		return StatusCritical, true
	case string(StatusLow):
		return StatusLow, true
	case string(StatusAvailable):
		return StatusAvailable, true
	}
	return "", false
}

// Volume thresholds in microliters used to derive tube status.
const (
	CriticalVolumeThreshold = 10.0
	LowVolumeFraction       = 0.25
)
