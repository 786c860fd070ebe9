package calculations

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cloud-ru/fincalc-go/pkg/utils"
)

// TierSchedule проверенная процентная сетка, ступени отсортированы по убыванию порога
type TierSchedule struct {
	tiers []TierDefinition
}

// NewTierSchedule проверяет сетку и готовит ее к расчетам.
// Сетка должна быть непустой, пороги уникальны и неотрицательны, ставки неотрицательны.
func NewTierSchedule(tiers []TierDefinition) (*TierSchedule, error) {
	if len(tiers) == 0 {
		return nil, invalidTiers("no tiers defined")
	}

	sorted := make([]TierDefinition, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ThresholdAmount.GreaterThan(sorted[j].ThresholdAmount)
	})

	for i, t := range sorted {
		if t.ThresholdAmount.IsNegative() {
			return nil, invalidTiers("threshold %s is negative", t.ThresholdAmount)
		}
		if t.AnnualRatePercent.IsNegative() {
			return nil, invalidTiers("rate for threshold %s is negative", t.ThresholdAmount)
		}
		if i > 0 && sorted[i-1].ThresholdAmount.Equal(t.ThresholdAmount) {
			return nil, invalidTiers("duplicate threshold %s", t.ThresholdAmount)
		}
	}

	return &TierSchedule{tiers: sorted}, nil
}

// Tiers возвращает ступени по убыванию порога
func (ts *TierSchedule) Tiers() []TierDefinition {
	out := make([]TierDefinition, len(ts.tiers))
	copy(out, ts.tiers)
	return out
}

// MonthlyInterest начисляет месячные проценты: каждая ступень получает часть
// баланса между своим порогом и порогом следующей ступени сверху.
// Результат не округляется.
func (ts *TierSchedule) MonthlyInterest(balance decimal.Decimal) decimal.Decimal {
	interest := decimal.Zero
	remaining := balance
	for _, t := range ts.tiers {
		if !remaining.GreaterThan(t.ThresholdAmount) {
			continue
		}
		slice := remaining.Sub(t.ThresholdAmount)
		interest = interest.Add(slice.Mul(utils.MonthlyRate(t.AnnualRatePercent)))
		remaining = t.ThresholdAmount
	}
	return utils.Working(interest)
}

// BlendedRatePercent эффективная годовая ставка для баланса, в процентах
func (ts *TierSchedule) BlendedRatePercent(balance decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}
	annual := ts.MonthlyInterest(balance).Mul(decimal.NewFromInt(12))
	return annual.Div(balance).Mul(hundred).Round(4)
}

// ComputeTierInterest рассчитывает месячные проценты по ступенчатой сетке
func ComputeTierInterest(balance decimal.Decimal, tiers []TierDefinition) (decimal.Decimal, error) {
	ts, err := NewTierSchedule(tiers)
	if err != nil {
		return decimal.Zero, err
	}
	return ts.MonthlyInterest(balance), nil
}
