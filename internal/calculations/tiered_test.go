package calculations

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moneyMarketTiers() []TierDefinition {
	return []TierDefinition{
		{ThresholdAmount: dec("0"), AnnualRatePercent: dec("3")},
		{ThresholdAmount: dec("10000"), AnnualRatePercent: dec("4")},
		{ThresholdAmount: dec("50000"), AnnualRatePercent: dec("4.5")},
	}
}

func TestComputeTierInterest_Additivity(t *testing.T) {
	got, err := ComputeTierInterest(dec("60000"), moneyMarketTiers())
	require.NoError(t, err)

	twelve := decimal.NewFromInt(12)
	want := dec("10000").Mul(dec("0.03").Div(twelve)).
		Add(dec("40000").Mul(dec("0.04").Div(twelve))).
		Add(dec("10000").Mul(dec("0.045").Div(twelve)))

	assert.True(t, got.Sub(want).Abs().LessThan(dec("0.000001")), "want %s, got %s", want, got)
	assertDecimal(t, "195.83", got.Round(2))
}

func TestComputeTierInterest_Bands(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		tiers   []TierDefinition
		want    string
	}{
		{
			name:    "inside lowest tier",
			balance: "5000",
			tiers:   moneyMarketTiers(),
			want:    "12.5",
		},
		{
			name:    "exactly on threshold",
			balance: "10000",
			tiers:   moneyMarketTiers(),
			want:    "25",
		},
		{
			name:    "below lowest threshold earns nothing",
			balance: "500",
			tiers:   []TierDefinition{{ThresholdAmount: dec("1000"), AnnualRatePercent: dec("6")}},
			want:    "0",
		},
		{
			name:    "zero balance",
			balance: "0",
			tiers:   moneyMarketTiers(),
			want:    "0",
		},
		{
			name:    "only the slice above the floor",
			balance: "3000",
			tiers:   []TierDefinition{{ThresholdAmount: dec("1000"), AnnualRatePercent: dec("6")}},
			want:    "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTierInterest(dec(tt.balance), tt.tiers)
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestComputeTierInterest_OrderIndependent(t *testing.T) {
	tiers := moneyMarketTiers()
	reversed := []TierDefinition{tiers[2], tiers[0], tiers[1]}

	a, err := ComputeTierInterest(dec("75000"), tiers)
	require.NoError(t, err)
	b, err := ComputeTierInterest(dec("75000"), reversed)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	// исходный срез не переупорядочивается
	assertDecimal(t, "50000", reversed[0].ThresholdAmount)
}

func TestComputeTierInterest_SingleTierMatchesFlatRate(t *testing.T) {
	for _, rate := range []string{"0", "1.25", "3", "4.5", "12"} {
		tiers := []TierDefinition{{ThresholdAmount: decimal.Zero, AnnualRatePercent: dec(rate)}}
		flat := FlatRate(dec(rate))

		for _, balance := range []string{"0", "0.01", "999.99", "10000", "123456.78"} {
			got, err := ComputeTierInterest(dec(balance), tiers)
			require.NoError(t, err)
			want := flat(dec(balance))
			assert.True(t, got.Equal(want), "rate %s balance %s: tier %s flat %s", rate, balance, got, want)
		}
	}
}

func TestComputeTierInterest_InvalidStructure(t *testing.T) {
	tests := []struct {
		name  string
		tiers []TierDefinition
	}{
		{
			name:  "empty",
			tiers: nil,
		},
		{
			name: "duplicate thresholds",
			tiers: []TierDefinition{
				{ThresholdAmount: dec("0"), AnnualRatePercent: dec("1")},
				{ThresholdAmount: dec("5000"), AnnualRatePercent: dec("2")},
				{ThresholdAmount: dec("5000.00"), AnnualRatePercent: dec("3")},
			},
		},
		{
			name:  "negative threshold",
			tiers: []TierDefinition{{ThresholdAmount: dec("-1"), AnnualRatePercent: dec("1")}},
		},
		{
			name:  "negative rate",
			tiers: []TierDefinition{{ThresholdAmount: dec("0"), AnnualRatePercent: dec("-1")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeTierInterest(dec("1000"), tt.tiers)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTierStructure))

			var te *TierStructureError
			assert.True(t, errors.As(err, &te))
			assert.True(t, IsInputError(err))
		})
	}
}

func TestTierSchedule_BlendedRate(t *testing.T) {
	ts, err := NewTierSchedule(moneyMarketTiers())
	require.NoError(t, err)

	assertDecimal(t, "3", ts.BlendedRatePercent(dec("5000")))
	assertDecimal(t, "3.9167", ts.BlendedRatePercent(dec("60000")))
	assertDecimal(t, "0", ts.BlendedRatePercent(decimal.Zero))

	tiers := ts.Tiers()
	require.Len(t, tiers, 3)
	assertDecimal(t, "50000", tiers[0].ThresholdAmount)
	assertDecimal(t, "0", tiers[2].ThresholdAmount)
}
