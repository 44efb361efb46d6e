package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Hundred is the percentage scale used throughout the models.
func Hundred() decimal.Decimal { return hundred }

// RequirePositive rejects zero and negative values.
func RequirePositive(op, field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return InvalidInput(op, field, "must be greater than zero, got %s", v.String())
	}
	return nil
}

// RequireNonNegative rejects negative values.
func RequireNonNegative(op, field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return InvalidInput(op, field, "cannot be negative, got %s", v.String())
	}
	return nil
}

// RequirePercent rejects values outside [0, 100].
func RequirePercent(op, field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(hundred) {
		return InvalidInput(op, field, "must be between 0 and 100, got %s", v.String())
	}
	return nil
}

// FirstError returns the first non-nil error, for chaining field checks.
func FirstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
