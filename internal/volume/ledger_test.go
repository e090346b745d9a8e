package volume

import (
	"errors"
	"testing"

	"github.com/ghfc/dnastock/internal/models"
)

func fptr(v float64) *float64 { return &v }

func TestInitializeDefaults(t *testing.T) {
	onlyCurrent := &models.Tube{Barcode: "T1", CurrentVolume: fptr(40)}
	Initialize(onlyCurrent)
	if onlyCurrent.InitialVolume == nil || *onlyCurrent.InitialVolume != 40 {
		t.Fatalf("expected initial volume defaulted to 40")
	}

	onlyInitial := &models.Tube{Barcode: "T2", InitialVolume: fptr(100)}
	Initialize(onlyInitial)
	if onlyInitial.CurrentVolume == nil || *onlyInitial.CurrentVolume != 100 {
		t.Fatalf("expected current volume defaulted to 100")
	}

	neither := &models.Tube{Barcode: "T3"}
	Initialize(neither)
	if neither.InitialVolume != nil || neither.CurrentVolume != nil {
		t.Fatalf("expected unknown volumes to stay unknown")
	}
}

func TestWithdraw(t *testing.T) {
	tube := &models.Tube{Barcode: "T1", InitialVolume: fptr(100), CurrentVolume: fptr(30)}

	if err := Withdraw(tube, 10); err != nil {
		t.Fatalf("withdraw 10: %v", err)
	}
	if *tube.CurrentVolume != 20 {
		t.Fatalf("current = %.2f, want 20", *tube.CurrentVolume)
	}
}

func TestWithdrawInsufficient(t *testing.T) {
	tube := &models.Tube{Barcode: "T1", CurrentVolume: fptr(10)}

	err := Withdraw(tube, 15)
	var insufficient *InsufficientVolumeError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientVolumeError, got %v", err)
	}
	if insufficient.Available != 10 || insufficient.Requested != 15 {
		t.Fatalf("error fields = %+v", insufficient)
	}
	if *tube.CurrentVolume != 10 {
		t.Fatalf("tube must be left untouched, current = %.2f", *tube.CurrentVolume)
	}
}

func TestWithdrawInvalidAmount(t *testing.T) {
	tube := &models.Tube{Barcode: "T1", CurrentVolume: fptr(10)}

	for _, amount := range []float64{0, -3} {
		err := Withdraw(tube, amount)
		var invalid *InvalidAmountError
		if !errors.As(err, &invalid) {
			t.Fatalf("Withdraw(%v): expected InvalidAmountError, got %v", amount, err)
		}
	}
}

func TestWithdrawUnknownVolume(t *testing.T) {
	tube := &models.Tube{Barcode: "T1"}
	if err := Withdraw(tube, 25); err != nil {
		t.Fatalf("expected withdrawal from untracked tube to pass: %v", err)
	}
	if tube.CurrentVolume != nil {
		t.Fatalf("untracked tube must stay untracked")
	}
}

func TestWithdrawExact(t *testing.T) {
	tube := &models.Tube{Barcode: "T1", CurrentVolume: fptr(12.5)}
	if err := Withdraw(tube, 12.5); err != nil {
		t.Fatalf("exact withdrawal: %v", err)
	}
	if *tube.CurrentVolume != 0 {
		t.Fatalf("current = %.2f, want 0", *tube.CurrentVolume)
	}
	if tube.Status() != models.StatusEmpty {
		t.Fatalf("expected empty status after draining")
	}
}

func TestParseVolume(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"50", fptr(50)},
		{" 12,5 ", fptr(12.5)},
		{"<10", fptr(10)},
		{"< 2,5", fptr(2.5)},
		{"", nil},
		{"n/a", nil},
		{"-4", nil},
	}
	for _, c := range cases {
		got := ParseVolume(c.in)
		switch {
		case c.want == nil && got != nil:
			t.Fatalf("ParseVolume(%q) = %v, want nil", c.in, *got)
		case c.want != nil && (got == nil || *got != *c.want):
			t.Fatalf("ParseVolume(%q) = %v, want %v", c.in, got, *c.want)
		}
	}
}
