package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/fincalc-go/pkg/utils"
)

// InvestmentResult годовые снимки проекции вместе с метриками роста
type InvestmentResult struct {
	Snapshots     []ProjectionSnapshot `json:"snapshots"`
	GrowthMetrics GrowthMetrics        `json:"growth_metrics"`
}

// InvestmentCalculator рассчитывает рост накоплений с регулярными взносами
func InvestmentCalculator(initialBalance, monthlyContribution decimal.Decimal, years int,
	interestFn InterestFunc) (*InvestmentResult, error) {

	snapshots, err := RunProjection(initialBalance, monthlyContribution, years, interestFn)
	if err != nil {
		return nil, err
	}

	return &InvestmentResult{
		Snapshots:     snapshots,
		GrowthMetrics: GrowthMetricsFor(snapshots),
	}, nil
}

// GrowthMetricsFor считает метрики по первому и последнему снимку проекции
func GrowthMetricsFor(snapshots []ProjectionSnapshot) GrowthMetrics {
	if len(snapshots) == 0 {
		return GrowthMetrics{}
	}

	initial := snapshots[0].EndingBalance
	last := snapshots[len(snapshots)-1]

	totalInvested := initial.Add(last.CumulativeContributions)
	capitalGain := last.EndingBalance.Sub(totalInvested)

	// ROI (Return on Investment) в процентах
	roi := decimal.Zero
	if totalInvested.IsPositive() {
		roi = utils.RoundCents(capitalGain.Div(totalInvested).Mul(hundred))
	}

	// доля процентов в итоговой сумме
	profit := decimal.Zero
	if last.EndingBalance.IsPositive() {
		profit = utils.RoundCents(last.CumulativeInterest.Div(last.EndingBalance).Mul(hundred))
	}

	return GrowthMetrics{
		InitialBalance: initial,
		TotalInvested:  totalInvested,
		FinalValue:     last.EndingBalance,
		CapitalGain:    capitalGain,
		ROIPercent:     roi,
		ProfitPercent:  profit,
		Years:          last.YearIndex,
	}
}
