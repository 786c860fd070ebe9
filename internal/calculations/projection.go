package calculations

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cloud-ru/fincalc-go/pkg/utils"
)

// InterestFunc возвращает месячные проценты для баланса
type InterestFunc func(balance decimal.Decimal) decimal.Decimal

// FlatRate начисляет проценты по единой годовой ставке: balance * pct / 100 / 12
func FlatRate(annualRatePercent decimal.Decimal) InterestFunc {
	r := utils.MonthlyRate(annualRatePercent)
	return func(balance decimal.Decimal) decimal.Decimal {
		return utils.Working(balance.Mul(r))
	}
}

// TieredRate привязывает ступенчатую сетку к InterestFunc
func TieredRate(tiers []TierDefinition) (InterestFunc, error) {
	ts, err := NewTierSchedule(tiers)
	if err != nil {
		return nil, err
	}
	return ts.MonthlyInterest, nil
}

func validateProjection(initialBalance, monthlyContribution decimal.Decimal, years int) error {
	if initialBalance.IsNegative() {
		return invalidScenario("initial_balance", "must not be negative")
	}
	if monthlyContribution.IsNegative() {
		return invalidScenario("monthly_contribution", "must not be negative")
	}
	if years < 0 {
		return invalidScenario("years", "must not be negative")
	}
	return nil
}

// RunProjection прогоняет счет на years лет вперед и возвращает снимок на конец
// каждого года, начиная с нулевого (исходное состояние).
// В каждом месяце сначала зачисляется взнос, затем начисляются проценты на
// получившийся баланс. Округление до копеек только в снимках.
func RunProjection(initialBalance, monthlyContribution decimal.Decimal, years int, interestFn InterestFunc) ([]ProjectionSnapshot, error) {
	if err := validateProjection(initialBalance, monthlyContribution, years); err != nil {
		return nil, err
	}
	if interestFn == nil {
		return nil, invalidScenario("interest", "interest function is required")
	}

	balance := initialBalance
	cumContributions := decimal.Zero
	cumInterest := decimal.Zero

	snapshots := make([]ProjectionSnapshot, 0, years+1)
	snapshots = append(snapshots, ProjectionSnapshot{
		YearIndex:                  0,
		EndingBalance:              utils.RoundCents(initialBalance),
		CumulativeContributions:    decimal.Zero,
		CumulativeInterest:         decimal.Zero,
		EffectiveAnnualRatePercent: decimal.Zero,
	})

	for year := 1; year <= years; year++ {
		for month := 0; month < 12; month++ {
			balance = balance.Add(monthlyContribution)
			cumContributions = cumContributions.Add(monthlyContribution)

			interest := interestFn(balance)
			balance = balance.Add(interest)
			cumInterest = cumInterest.Add(interest)
		}

		snapshots = append(snapshots, ProjectionSnapshot{
			YearIndex:                  year,
			EndingBalance:              utils.RoundCents(balance),
			CumulativeContributions:    utils.RoundCents(cumContributions),
			CumulativeInterest:         utils.RoundCents(cumInterest),
			EffectiveAnnualRatePercent: effectiveAnnualRate(initialBalance, balance, year),
		})
	}

	return snapshots, nil
}

// effectiveAnnualRate ((end/initial)^(1/years) - 1) * 100; 0, если ставка не определена
func effectiveAnnualRate(initial, ending decimal.Decimal, years int) decimal.Decimal {
	if years == 0 || !initial.IsPositive() {
		return decimal.Zero
	}
	ratio := ending.Div(initial).InexactFloat64()
	rate := (math.Pow(ratio, 1.0/float64(years)) - 1.0) * 100
	if !utils.IsFinite(rate) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(rate).Round(2)
}
