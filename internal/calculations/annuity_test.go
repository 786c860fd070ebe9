package calculations

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestComputeFixedPayment(t *testing.T) {
	tests := []struct {
		name     string
		scenario LoanScenario
		want     string
	}{
		{
			name:     "30 year mortgage",
			scenario: LoanScenario{Principal: dec("200000"), AnnualRatePercent: dec("6"), TermYears: 30},
			want:     "1199.10",
		},
		{
			name:     "15 year mortgage",
			scenario: LoanScenario{Principal: dec("100000"), AnnualRatePercent: dec("5"), TermYears: 15},
			want:     "790.79",
		},
		{
			name:     "one year at 12 percent",
			scenario: LoanScenario{Principal: dec("1000000"), AnnualRatePercent: dec("12"), TermYears: 1},
			want:     "88848.79",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeFixedPayment(tt.scenario)
			require.NoError(t, err)
			assertDecimal(t, tt.want, got.Round(2))
		})
	}
}

func TestComputeFixedPayment_ZeroRate(t *testing.T) {
	s := LoanScenario{Principal: dec("100000"), AnnualRatePercent: decimal.Zero, TermYears: 7}

	got, err := ComputeFixedPayment(s)
	require.NoError(t, err)

	want := dec("100000").Div(decimal.NewFromInt(84))
	assert.True(t, got.Equal(want), "want %s, got %s", want, got)
}

func TestComputeFixedPayment_InvalidScenario(t *testing.T) {
	tests := []struct {
		name     string
		scenario LoanScenario
		field    string
	}{
		{
			name:     "zero principal",
			scenario: LoanScenario{Principal: decimal.Zero, AnnualRatePercent: dec("5"), TermYears: 10},
			field:    "principal",
		},
		{
			name:     "negative principal",
			scenario: LoanScenario{Principal: dec("-10"), AnnualRatePercent: dec("5"), TermYears: 10},
			field:    "principal",
		},
		{
			name:     "zero term",
			scenario: LoanScenario{Principal: dec("1000"), AnnualRatePercent: dec("5"), TermYears: 0},
			field:    "term_years",
		},
		{
			name:     "negative rate",
			scenario: LoanScenario{Principal: dec("1000"), AnnualRatePercent: dec("-0.5"), TermYears: 10},
			field:    "annual_rate_percent",
		},
		{
			name:     "negative extra payment",
			scenario: LoanScenario{Principal: dec("1000"), AnnualRatePercent: dec("5"), TermYears: 10, ExtraPayment: dec("-1")},
			field:    "extra_payment",
		},
		{
			name:     "rate too high for the term",
			scenario: LoanScenario{Principal: dec("300000"), AnnualRatePercent: dec("100"), TermYears: 50},
			field:    "annual_rate_percent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeFixedPayment(tt.scenario)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidScenario))

			var se *ScenarioError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.field, se.Field)

			it, err := GenerateSchedule(tt.scenario)
			assert.Nil(t, it)
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestAnnuitySchedule_HighRateStillAmortizes(t *testing.T) {
	result, err := AnnuitySchedule(LoanScenario{Principal: dec("300000"), AnnualRatePercent: dec("36"), TermYears: 30})
	require.NoError(t, err)

	require.Len(t, result.Schedule, 360)
	assert.True(t, result.Schedule[0].Principal.IsPositive())
	assert.True(t, result.Summary.FinalBalance.IsZero())

	last := result.Schedule[len(result.Schedule)-1]
	assert.True(t, last.Payment.Sub(result.Summary.MonthlyPayment).Abs().LessThanOrEqual(dec("0.05")),
		"final payment %s should match the fixed payment %s", last.Payment, result.Summary.MonthlyPayment)
}

func TestGenerateSchedule_Completeness(t *testing.T) {
	tests := []struct {
		name     string
		scenario LoanScenario
		periods  int
	}{
		{
			name:     "30 years",
			scenario: LoanScenario{Principal: dec("300000"), AnnualRatePercent: dec("6.35"), TermYears: 30},
			periods:  360,
		},
		{
			name:     "15 years",
			scenario: LoanScenario{Principal: dec("250000"), AnnualRatePercent: dec("5.875"), TermYears: 15},
			periods:  180,
		},
		{
			name:     "zero rate",
			scenario: LoanScenario{Principal: dec("120000"), AnnualRatePercent: decimal.Zero, TermYears: 10},
			periods:  120,
		},
		{
			name:     "1 year",
			scenario: LoanScenario{Principal: dec("1000000"), AnnualRatePercent: dec("12"), TermYears: 1},
			periods:  12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := GenerateSchedule(tt.scenario)
			require.NoError(t, err)

			schedule := it.Collect()
			require.Len(t, schedule, tt.periods)

			last := schedule[len(schedule)-1]
			assert.True(t, last.RemainingBalance.IsZero(), "final balance %s", last.RemainingBalance)

			for i, p := range schedule {
				assert.Equal(t, i+1, p.PeriodIndex)
				assert.True(t, p.Interest.Add(p.Principal).Equal(p.Payment),
					"period %d: %s + %s != %s", p.PeriodIndex, p.Interest, p.Principal, p.Payment)
				assert.True(t, p.ExtraPrincipal.IsZero())
				assert.False(t, p.RemainingBalance.IsNegative())
			}
		})
	}
}

func TestGenerateSchedule_PaymentColumnIsConstant(t *testing.T) {
	s := LoanScenario{Principal: dec("200000"), AnnualRatePercent: dec("6"), TermYears: 30}

	it, err := GenerateSchedule(s)
	require.NoError(t, err)
	schedule := it.Collect()

	for _, p := range schedule[:len(schedule)-1] {
		assertDecimal(t, "1199.10", p.Payment, "period %d", p.PeriodIndex)
	}
	// последний платеж выравнивает остаток
	last := schedule[len(schedule)-1]
	assert.True(t, last.Payment.Sub(dec("1199.10")).Abs().LessThanOrEqual(dec("0.05")), "last payment %s", last.Payment)
}

func TestGenerateSchedule_FirstPeriodSplit(t *testing.T) {
	s := LoanScenario{Principal: dec("200000"), AnnualRatePercent: dec("6"), TermYears: 30}

	it, err := GenerateSchedule(s)
	require.NoError(t, err)

	first, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, 1, first.PeriodIndex)
	assertDecimal(t, "1000", first.Interest)
	assertDecimal(t, "199.10", first.Principal)
	assertDecimal(t, "199800.90", first.RemainingBalance)
}

func TestGenerateSchedule_MaxPeriods(t *testing.T) {
	s := LoanScenario{Principal: dec("400000"), AnnualRatePercent: dec("5"), TermYears: 40}

	it, err := GenerateSchedule(s)
	require.NoError(t, err)
	capped := it.Collect()
	assert.Len(t, capped, DefaultMaxPeriods)
	assert.True(t, capped[len(capped)-1].RemainingBalance.IsPositive())

	it, err = GenerateSchedule(s, WithMaxPeriods(480))
	require.NoError(t, err)
	full := it.Collect()
	require.Len(t, full, 480)
	assert.True(t, full[len(full)-1].RemainingBalance.IsZero())

	it, err = GenerateSchedule(s, WithMaxPeriods(24))
	require.NoError(t, err)
	assert.Len(t, it.Collect(), 24)

	it, err = GenerateSchedule(s, WithMaxPeriods(0))
	require.NoError(t, err)
	assert.Len(t, it.Collect(), DefaultMaxPeriods)
}

func TestGenerateSchedule_IteratorIsSinglePass(t *testing.T) {
	s := LoanScenario{Principal: dec("12000"), AnnualRatePercent: dec("0"), TermYears: 1}

	it, err := GenerateSchedule(s)
	require.NoError(t, err)

	first, ok := it.Next()
	require.True(t, ok)
	assertDecimal(t, "1000", first.Payment)
	assertDecimal(t, "0", first.Interest)

	rest := it.Collect()
	assert.Len(t, rest, 11)

	_, ok = it.Next()
	assert.False(t, ok)
	assert.Empty(t, it.Collect())
}

func TestGenerateSchedule_ExtraPaymentAcceleration(t *testing.T) {
	base := LoanScenario{Principal: dec("200000"), AnnualRatePercent: dec("6"), TermYears: 30}
	withExtra := base
	withExtra.ExtraPayment = dec("200")
	withExtra.ExtraPaymentStartPeriod = 1

	it, err := GenerateSchedule(base)
	require.NoError(t, err)
	baseline := it.Collect()

	it, err = GenerateSchedule(withExtra)
	require.NoError(t, err)
	accelerated := it.Collect()

	assert.Less(t, len(accelerated), len(baseline))
	last := accelerated[len(accelerated)-1]
	assert.True(t, last.RemainingBalance.IsZero())
	assertDecimal(t, "200", accelerated[0].ExtraPrincipal)
}

func TestGenerateSchedule_ExtraPaymentStartPeriod(t *testing.T) {
	s := LoanScenario{
		Principal:               dec("100000"),
		AnnualRatePercent:       dec("4"),
		TermYears:               10,
		ExtraPayment:            dec("500"),
		ExtraPaymentStartPeriod: 13,
	}

	it, err := GenerateSchedule(s)
	require.NoError(t, err)
	schedule := it.Collect()

	for _, p := range schedule[:12] {
		assert.True(t, p.ExtraPrincipal.IsZero(), "period %d", p.PeriodIndex)
	}
	assertDecimal(t, "500", schedule[12].ExtraPrincipal)
	assert.Less(t, len(schedule), 120)
}

func TestGenerateSchedule_FinalPeriodClamp(t *testing.T) {
	s := LoanScenario{
		Principal:         dec("10000"),
		AnnualRatePercent: dec("5"),
		TermYears:         1,
		ExtraPayment:      dec("5000"),
	}

	it, err := GenerateSchedule(s)
	require.NoError(t, err)
	schedule := it.Collect()

	require.Len(t, schedule, 2)
	last := schedule[1]
	assert.True(t, last.RemainingBalance.IsZero())
	assert.True(t, last.ExtraPrincipal.LessThan(dec("5000")))
	assert.True(t, last.ExtraPrincipal.IsPositive())

	paid := decimal.Zero
	for _, p := range schedule {
		paid = paid.Add(p.Principal).Add(p.ExtraPrincipal)
	}
	assert.True(t, paid.Sub(dec("10000")).Abs().LessThanOrEqual(dec("0.02")), "principal repaid %s", paid)
}

func TestAnnuitySchedule(t *testing.T) {
	result, err := AnnuitySchedule(LoanScenario{Principal: dec("1000000"), AnnualRatePercent: dec("12"), TermYears: 1})
	require.NoError(t, err)

	require.Len(t, result.Schedule, 12)
	assertDecimal(t, "1000000", result.Summary.Principal)
	assertDecimal(t, "88848.79", result.Summary.MonthlyPayment)
	assert.Equal(t, 12, result.Summary.Periods)
	assert.True(t, result.Summary.TotalPaid.GreaterThan(result.Summary.Principal))
	assert.True(t, result.Summary.TotalPaid.Sub(result.Summary.TotalInterest).Sub(dec("1000000")).Abs().LessThanOrEqual(dec("0.05")))
	assert.True(t, result.Summary.FinalBalance.IsZero())
}

func TestCompareExtraPayments(t *testing.T) {
	s := LoanScenario{
		Principal:         dec("300000"),
		AnnualRatePercent: dec("6.35"),
		TermYears:         30,
		ExtraPayment:      dec("250"),
	}

	effect, err := CompareExtraPayments(s)
	require.NoError(t, err)

	assert.Equal(t, 360, effect.Baseline.Periods)
	assert.Greater(t, effect.PeriodsSaved, 0)
	assert.True(t, effect.InterestSaved.IsPositive())
	assert.True(t, effect.Baseline.TotalExtra.IsZero())
	assert.True(t, effect.WithExtra.TotalExtra.IsPositive())
}

func TestCompareExtraPayments_BeyondDisplayedSchedule(t *testing.T) {
	s := LoanScenario{
		Principal:         dec("500000"),
		AnnualRatePercent: dec("7"),
		TermYears:         40,
		ExtraPayment:      dec("50"),
	}

	effect, err := CompareExtraPayments(s)
	require.NoError(t, err)

	assert.Equal(t, 480, effect.Baseline.Periods)
	assert.Equal(t, 443, effect.WithExtra.Periods)
	assert.Equal(t, 37, effect.PeriodsSaved)
	assertDecimal(t, "93849.12", effect.InterestSaved)
	assert.True(t, effect.Baseline.FinalBalance.IsZero())
	assert.True(t, effect.WithExtra.FinalBalance.IsZero())
}
