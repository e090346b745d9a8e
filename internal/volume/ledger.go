// Package volume implements the tube volume ledger: parsing of legacy
// volume notations and the withdrawal rules applied when material is
// taken out of a tube.
package volume

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ghfc/dnastock/internal/models"
)

// InvalidAmountError reports a withdrawal request that is not a positive
// quantity.
type InvalidAmountError struct {
	Requested float64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("withdrawal amount must be positive, got %.2f", e.Requested)
}

// InsufficientVolumeError reports a withdrawal larger than what the tube
// holds. The tube is left untouched.
type InsufficientVolumeError struct {
	Available float64
	Requested float64
}

func (e *InsufficientVolumeError) Error() string {
	return fmt.Sprintf("insufficient volume: %.2f uL requested, %.2f uL available", e.Requested, e.Available)
}

// Initialize fills in the volume fields of a fresh tube. When only one of
// the two volumes is known the other defaults to it.
func Initialize(t *models.Tube) {
	if t.InitialVolume == nil && t.CurrentVolume != nil {
		v := *t.CurrentVolume
		t.InitialVolume = &v
	}
	if t.CurrentVolume == nil && t.InitialVolume != nil {
		v := *t.InitialVolume
		t.CurrentVolume = &v
	}
}

// Withdraw removes amount microliters from the tube. Tubes whose current
// volume was never recorded accept any withdrawal without decrementing;
// the legacy records are full of such tubes and blocking usage on them
// would make the ledger unusable.
func Withdraw(t *models.Tube, amount float64) error {
	if amount <= 0 {
		return &InvalidAmountError{Requested: amount}
	}
	if t.CurrentVolume == nil {
		return nil
	}
	if *t.CurrentVolume < amount {
		return &InsufficientVolumeError{Available: *t.CurrentVolume, Requested: amount}
	}
	remaining := *t.CurrentVolume - amount
	t.CurrentVolume = &remaining
	return nil
}

// ParseVolume parses a volume from legacy free text. Leading "<" markers
// are dropped and comma decimals accepted. Unparseable text yields nil.
func ParseVolume(text string) *float64 {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "<")
	text = strings.ReplaceAll(text, ",", ".")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// ParseConcentration parses an ng/uL concentration, same notation rules
// as ParseVolume.
func ParseConcentration(text string) *float64 {
	return ParseVolume(text)
}
