package valuation

import (
	"testing"

	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func testInput() Input {
	return Input{
		Revenue:            d(1000),
		EBITDA:             d(200),
		RevenueMultiple:    d(2),
		EBITDAMultiple:     d(8),
		FreeCashFlow:       d(100),
		GrowthRate:         d(10),
		DiscountRate:       d(10),
		TerminalGrowthRate: d(2),
		ProjectionYears:    2,
		NetDebt:            d(100),
	}
}

func TestCalculate_AllMethods(t *testing.T) {
	res, err := Calculate(testInput())
	require.NoError(t, err)

	assert.Equal(t, []Method{MethodRevenueMultiple, MethodEBITDAMultiple, MethodDCF}, res.Methods())
	assert.True(t, res.Values[MethodRevenueMultiple].Equal(d(2000)))
	assert.True(t, res.Values[MethodEBITDAMultiple].Equal(d(1600)))

	require.NotNil(t, res.DCF)
	require.Len(t, res.DCF.Years, 2)
	assert.True(t, res.DCF.Years[0].PresentValue.Equal(d(100)))
	assert.True(t, res.DCF.Years[1].FreeCashFlow.Equal(d(121)))
	assert.True(t, res.DCF.TerminalValue.Equal(d(1542.75)))
	assert.True(t, res.DCF.PresentValueTerminal.Equal(d(1275)))
	assert.True(t, res.DCF.EnterpriseValue.Equal(d(1475)))

	assert.Equal(t, "1691.67", res.EnterpriseValue.StringFixed(2))
	assert.Equal(t, "1591.67", res.EquityValue.StringFixed(2))
	assert.True(t, res.Range.Min.Equal(d(1475)))
	assert.True(t, res.Range.Max.Equal(d(2000)))
}

func TestCalculate_SingleMethod(t *testing.T) {
	in := Input{Revenue: d(500), RevenueMultiple: d(3)}
	res, err := Calculate(in)
	require.NoError(t, err)
	assert.Nil(t, res.DCF)
	assert.True(t, res.EnterpriseValue.Equal(d(1500)))
	assert.True(t, res.Range.Min.Equal(res.Range.Max))
}

func TestCalculate_Errors(t *testing.T) {
	_, err := Calculate(Input{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no method applies")

	in := testInput()
	in.DiscountRate = d(2)
	_, err = Calculate(in)
	assert.ErrorIs(t, err, domain.ErrArithmeticDegenerate)

	in = testInput()
	in.ProjectionYears = 0
	_, err = Calculate(in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = testInput()
	in.EBITDA = decimal.Zero
	_, err = Calculate(in)
	var calcErr *domain.CalculationError
	require.ErrorAs(t, err, &calcErr)
	assert.Equal(t, "ebitda", calcErr.Field)
}
