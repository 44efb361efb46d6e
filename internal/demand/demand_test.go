package demand

import (
	"testing"

	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestExpectedVolume_ReferenceExample(t *testing.T) {
	vol, err := ExpectedVolume(d(110), 1000, d(100), domain.ElasticityOf(d(0.5)))

	require.NoError(t, err)
	assert.Equal(t, int64(950), vol, "ten percent above reference at elasticity 0.5 loses five percent")
}

func TestExpectedVolume_AtOrBelowReferenceKeepsMarket(t *testing.T) {
	for _, price := range []float64{50, 99.99, 100} {
		vol, err := ExpectedVolume(d(price), 1000, d(100), domain.ElasticityOf(d(0.9)))
		require.NoError(t, err)
		assert.Equal(t, int64(1000), vol, "price %v", price)
	}
}

func TestExpectedVolume_ReductionCapped(t *testing.T) {
	tests := []struct {
		name       string
		elasticity domain.Elasticity
		want       int64
	}{
		{"elasticity one caps at 90%", domain.ElasticityOf(d(1)), 100},
		{"elasticity half caps at 50%", domain.ElasticityOf(d(0.5)), 500},
		{"elasticity zero never loses volume", domain.ElasticityOf(d(0)), 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vol, err := ExpectedVolume(d(1000), 1000, d(100), tt.elasticity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, vol)
		})
	}
}

func TestExpectedVolume_AbsentElasticityIsInsensitive(t *testing.T) {
	absent, err := ExpectedVolume(d(500), 1000, d(100), domain.NoElasticity())
	require.NoError(t, err)

	zero, err := ExpectedVolume(d(500), 1000, d(100), domain.ElasticityOf(decimal.Zero))
	require.NoError(t, err)

	assert.Equal(t, zero, absent)
	assert.True(t, MaxVolumeReduction(domain.NoElasticity()).Equal(d(0.1)))
}

func TestExpectedVolume_MonotonicAboveReference(t *testing.T) {
	elasticity := domain.ElasticityOf(d(0.7))
	prev := int64(1 << 62)
	for price := 100; price <= 400; price += 5 {
		vol, err := ExpectedVolume(decimal.NewFromInt(int64(price)), 12345, d(100), elasticity)
		require.NoError(t, err)
		assert.LessOrEqual(t, vol, prev, "volume rose at price %d", price)
		prev = vol
	}
}

func TestExpectedVolume_RejectsNonPositiveInputs(t *testing.T) {
	tests := []struct {
		name   string
		price  decimal.Decimal
		market int64
		ref    decimal.Decimal
		e      domain.Elasticity
		field  string
	}{
		{"zero price", decimal.Zero, 1000, d(100), domain.NoElasticity(), "price"},
		{"negative reference", d(10), 1000, d(-1), domain.NoElasticity(), "referencePrice"},
		{"zero market", d(10), 0, d(100), domain.NoElasticity(), "marketSize"},
		{"elasticity above one", d(10), 1000, d(100), domain.ElasticityOf(d(1.5)), "priceElasticity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpectedVolume(tt.price, tt.market, tt.ref, tt.e)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)

			var calcErr *domain.CalculationError
			require.ErrorAs(t, err, &calcErr)
			assert.Equal(t, tt.field, calcErr.Field)
		})
	}
}
