// Package ratios computes liquidity, leverage and profitability ratios from a
// single-period financial statement.
package ratios

import (
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
)

const op = "financial_ratios"

// Statement is the balance-sheet and income-statement subset the ratios need.
type Statement struct {
	CurrentAssets      decimal.Decimal `json:"currentAssets"`
	Inventory          decimal.Decimal `json:"inventory"`
	CurrentLiabilities decimal.Decimal `json:"currentLiabilities"`
	TotalAssets        decimal.Decimal `json:"totalAssets"`
	TotalLiabilities   decimal.Decimal `json:"totalLiabilities"`
	ShareholderEquity  decimal.Decimal `json:"shareholderEquity"`
	Revenue            decimal.Decimal `json:"revenue"`
	CostOfGoodsSold    decimal.Decimal `json:"costOfGoodsSold"`
	OperatingIncome    decimal.Decimal `json:"operatingIncome"`
	NetIncome          decimal.Decimal `json:"netIncome"`
	InterestExpense    decimal.Decimal `json:"interestExpense"`
}

// Ratios are plain multiples; margins and returns are percentages.
type Ratios struct {
	CurrentRatio     decimal.Decimal  `json:"currentRatio"`
	QuickRatio       decimal.Decimal  `json:"quickRatio"`
	DebtToEquity     decimal.Decimal  `json:"debtToEquity"`
	DebtRatio        decimal.Decimal  `json:"debtRatio"`
	GrossMargin      decimal.Decimal  `json:"grossMargin"`
	OperatingMargin  decimal.Decimal  `json:"operatingMargin"`
	NetMargin        decimal.Decimal  `json:"netMargin"`
	ReturnOnAssets   decimal.Decimal  `json:"returnOnAssets"`
	ReturnOnEquity   decimal.Decimal  `json:"returnOnEquity"`
	InterestCoverage *decimal.Decimal `json:"interestCoverage,omitempty"` // nil without interest expense
}

// Validate rejects zero denominators and negative balances.
func (s Statement) Validate() error {
	return domain.FirstError(
		domain.RequireNonNegative(op, "currentAssets", s.CurrentAssets),
		domain.RequireNonNegative(op, "inventory", s.Inventory),
		domain.RequirePositive(op, "currentLiabilities", s.CurrentLiabilities),
		domain.RequirePositive(op, "totalAssets", s.TotalAssets),
		domain.RequireNonNegative(op, "totalLiabilities", s.TotalLiabilities),
		domain.RequirePositive(op, "shareholderEquity", s.ShareholderEquity),
		domain.RequirePositive(op, "revenue", s.Revenue),
		domain.RequireNonNegative(op, "costOfGoodsSold", s.CostOfGoodsSold),
		domain.RequireNonNegative(op, "interestExpense", s.InterestExpense),
	)
}

// Calculate returns every ratio for s.
func Calculate(s Statement) (Ratios, error) {
	if err := s.Validate(); err != nil {
		return Ratios{}, err
	}
	if s.Inventory.GreaterThan(s.CurrentAssets) {
		return Ratios{}, domain.InvalidInput(op, "inventory", "cannot exceed current assets")
	}

	pct := func(n, den decimal.Decimal) decimal.Decimal {
		return n.Div(den).Mul(domain.Hundred())
	}

	r := Ratios{
		CurrentRatio:    s.CurrentAssets.Div(s.CurrentLiabilities),
		QuickRatio:      s.CurrentAssets.Sub(s.Inventory).Div(s.CurrentLiabilities),
		DebtToEquity:    s.TotalLiabilities.Div(s.ShareholderEquity),
		DebtRatio:       s.TotalLiabilities.Div(s.TotalAssets),
		GrossMargin:     pct(s.Revenue.Sub(s.CostOfGoodsSold), s.Revenue),
		OperatingMargin: pct(s.OperatingIncome, s.Revenue),
		NetMargin:       pct(s.NetIncome, s.Revenue),
		ReturnOnAssets:  pct(s.NetIncome, s.TotalAssets),
		ReturnOnEquity:  pct(s.NetIncome, s.ShareholderEquity),
	}
	if s.InterestExpense.IsPositive() {
		coverage := s.OperatingIncome.Div(s.InterestExpense)
		r.InterestCoverage = &coverage
	}
	return r, nil
}
