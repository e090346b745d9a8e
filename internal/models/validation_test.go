package models

import (
	"testing"
	"time"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestIndividualValidate(t *testing.T) {
	sex := SexFemale
	valid := &Individual{IndividualID: "IND-0042", Sex: &sex}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid individual, got error: %v", err)
	}

	invalid := &Individual{}
	if err := invalid.Validate(); err == nil {
		t.Fatalf("expected error for missing individual ID")
	}

	badSex := Sex(7)
	if err := (&Individual{IndividualID: "X", Sex: &badSex}).Validate(); err == nil {
		t.Fatalf("expected error for out of range sex")
	}
}

func TestSexParsingAndDisplay(t *testing.T) {
	cases := map[string]Sex{"1": SexMale, "M": SexMale, "h": SexMale, "2": SexFemale, "f": SexFemale, "": SexUnknown}
	for in, want := range cases {
		got, ok := ParseSex(in)
		if !ok || got != want {
			t.Fatalf("ParseSex(%q) = %v,%v want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseSex("male?"); ok {
		t.Fatalf("expected parse failure")
	}
	if SexMale.Display() != "M" || SexFemale.Display() != "F" || SexUnknown.Display() != "Unknown" {
		t.Fatalf("unexpected display labels")
	}
}

func TestSampleValidate(t *testing.T) {
	if err := (&Sample{SampleID: "c0733-17"}).Validate(); err != nil {
		t.Fatalf("expected valid sample: %v", err)
	}
	if err := (&Sample{}).Validate(); err == nil {
		t.Fatalf("expected error for missing sample ID")
	}

	ind := int64(3)
	s := &Sample{SampleID: "x", IndividualID: &ind}
	if !s.IsLinked() {
		t.Fatalf("expected linked sample")
	}
}

func TestBoxValidate(t *testing.T) {
	if err := (&Box{Name: "ADN 12", BoxType: BoxStock}).Validate(); err != nil {
		t.Fatalf("expected valid box: %v", err)
	}
	if err := (&Box{BoxType: BoxStock}).Validate(); err == nil {
		t.Fatalf("expected error for missing name")
	}
	if err := (&Box{Name: "x", BoxType: "fridge"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown box type")
	}
}

func TestTubeValidate(t *testing.T) {
	valid := &Tube{Barcode: "T000123", TubeType: TubeStock, PositionRow: iptr(2), PositionCol: iptr(7)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid tube: %v", err)
	}

	if err := (&Tube{TubeType: TubeStock}).Validate(); err == nil {
		t.Fatalf("expected error for missing barcode")
	}
	if err := (&Tube{Barcode: "T1", TubeType: TubeStock, PositionRow: iptr(2)}).Validate(); err == nil {
		t.Fatalf("expected error for half a position")
	}
	if err := (&Tube{Barcode: "T1", TubeType: TubeStock, InitialVolume: fptr(-5)}).Validate(); err == nil {
		t.Fatalf("expected error for negative volume")
	}
}

func TestTubeStatus(t *testing.T) {
	cases := []struct {
		name    string
		initial *float64
		current *float64
		want    TubeStatus
	}{
		{"no volume recorded", nil, nil, StatusEmpty},
		{"zero volume", fptr(100), fptr(0), StatusEmpty},
		{"below critical", fptr(100), fptr(9.5), StatusCritical},
		{"below quarter of initial", fptr(100), fptr(20), StatusLow},
		{"exactly quarter", fptr(100), fptr(25), StatusAvailable},
		{"no initial recorded", nil, fptr(20), StatusAvailable},
		{"plenty left", fptr(100), fptr(80), StatusAvailable},
	}
	for _, c := range cases {
		tube := &Tube{Barcode: "T1", TubeType: TubeStock, InitialVolume: c.initial, CurrentVolume: c.current}
		if got := tube.Status(); got != c.want {
			t.Fatalf("%s: status = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestParseTubeStatus(t *testing.T) {
	cases := map[string]TubeStatus{
		"empty":     StatusEmpty,
		"Empty":     StatusEmpty,
		"CRITICAL":  StatusCritical,
		"Low":       StatusLow,
		"available": StatusAvailable,
		"":          "",
	}
	for in, want := range cases {
		got, ok := ParseTubeStatus(in)
		if !ok || got != want {
			t.Fatalf("ParseTubeStatus(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseTubeStatus("full"); ok {
		t.Fatalf("expected parse failure for unknown status")
	}
}

func TestTubePositionDisplay(t *testing.T) {
	tube := &Tube{Barcode: "T1", TubeType: TubeStock, PositionRow: iptr(2), PositionCol: iptr(7)}
	if got := tube.PositionDisplay(); got != "B7" {
		t.Fatalf("PositionDisplay = %q", got)
	}

	unplaced := &Tube{Barcode: "T2", TubeType: TubeStock}
	if got := unplaced.PositionDisplay(); got != "" {
		t.Fatalf("expected empty display for unplaced tube, got %q", got)
	}
	if _, ok := unplaced.Coord(); ok {
		t.Fatalf("expected no coordinate for unplaced tube")
	}
}

func TestUsageValidate(t *testing.T) {
	tid := int64(5)
	out := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	back := out.Add(48 * time.Hour)

	valid := &Usage{TubeID: &tid, DateOut: &out, DateReturn: &back, VolumeTaken: fptr(5)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid usage: %v", err)
	}

	if err := (&Usage{}).Validate(); err == nil {
		t.Fatalf("expected error for missing tube")
	}
	if err := (&Usage{TubeID: &tid, VolumeTaken: fptr(0)}).Validate(); err == nil {
		t.Fatalf("expected error for zero volume")
	}

	early := out.Add(-time.Hour)
	if err := (&Usage{TubeID: &tid, DateOut: &out, DateReturn: &early}).Validate(); err == nil {
		t.Fatalf("expected error for return before checkout")
	}

	if !valid.IsReturned() {
		t.Fatalf("expected returned usage")
	}
}
