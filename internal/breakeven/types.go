package breakeven

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Mode selects which quantity the contribution-margin equation is solved for
type Mode string

const (
	ModeStandard     Mode = "standard"      // Given price, find break-even units
	ModeFindPrice    Mode = "find_price"    // Given target units, find required price
	ModeFindUnits    Mode = "find_units"    // Given price, find required units
	ModeProfitTarget Mode = "profit_target" // Given a profit goal, find required units
)

// Modes lists every supported mode
var Modes = []Mode{ModeStandard, ModeFindPrice, ModeFindUnits, ModeProfitTarget}

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported break-even mode: %s (valid: standard, find_price, find_units, profit_target)", s)
}

// ErrInvalidTargetMargin is the cause attached when a target margin of 100%
// or more makes the optimal-price formula undefined.
var ErrInvalidTargetMargin = errors.New("target profit percentage must be below 100")

// Request carries every input a mode may need. Fields a mode does not use
// are ignored.
type Request struct {
	Mode                Mode            `json:"mode"`
	FixedCosts          decimal.Decimal `json:"fixedCosts"`
	VariableCostPerUnit decimal.Decimal `json:"variableCostPerUnit"`

	// Price per unit (standard, find_units, profit_target)
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`

	// Units: expected sales in standard mode, target volume in find_price
	Units decimal.Decimal `json:"units"`

	// Profit goal for profit_target. When TargetIsPercentage is set the
	// value is a percentage of revenue, otherwise an absolute amount.
	TargetProfit       decimal.Decimal `json:"targetProfit"`
	TargetIsPercentage bool            `json:"targetIsPercentage"`
}

// Result is the solved break-even position
type Result struct {
	Mode                    Mode            `json:"mode"`
	Units                   decimal.Decimal `json:"units"`
	UnitsRoundedUp          int64           `json:"unitsRoundedUp"`
	Price                   decimal.Decimal `json:"price"`
	ContributionMargin      decimal.Decimal `json:"contributionMargin"`
	ContributionMarginRatio decimal.Decimal `json:"contributionMarginRatio"` // percent of price
	Revenue                 decimal.Decimal `json:"revenue"`
	TotalCosts              decimal.Decimal `json:"totalCosts"`
	Profit                  decimal.Decimal `json:"profit"`

	// Standard mode only: position at the expected sales volume
	ExpectedUnits  decimal.Decimal `json:"expectedUnits,omitempty"`
	ExpectedProfit decimal.Decimal `json:"expectedProfit,omitempty"`
	MarginOfSafety decimal.Decimal `json:"marginOfSafety,omitempty"` // percent of expected units above break-even
}
