package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/fincalc-go/pkg/utils"
)

// DifferentialSchedule рассчитывает график дифференцированного кредита:
// тело гасится равными долями, проценты начисляются на остаток.
// Досрочные погашения в этой схеме не учитываются.
func DifferentialSchedule(s LoanScenario) (*ScheduleResult, error) {
	if err := validateScenario(s); err != nil {
		return nil, err
	}

	n := s.Periods()
	r := utils.MonthlyRate(s.AnnualRatePercent)
	principalComponentRaw := utils.Working(s.Principal.Div(decimal.NewFromInt(int64(n))))
	remaining := s.Principal

	schedule := make([]AmortizationPeriod, 0, n)
	for m := 1; m <= n; m++ {
		interest := utils.Working(remaining.Mul(r))
		principalComponent := principalComponentRaw
		if m == n || principalComponent.GreaterThan(remaining) {
			principalComponent = remaining
		}
		remaining = remaining.Sub(principalComponent)

		interestOut := utils.RoundCents(interest)
		paymentOut := utils.RoundCents(interest.Add(principalComponent))
		schedule = append(schedule, AmortizationPeriod{
			PeriodIndex:      m,
			Payment:          paymentOut,
			Interest:         interestOut,
			Principal:        paymentOut.Sub(interestOut),
			ExtraPrincipal:   decimal.Zero,
			RemainingBalance: utils.RoundCents(remaining),
		})
	}

	summary := SummarizeSchedule(schedule)
	summary.Principal = utils.RoundCents(s.Principal)
	summary.AnnualRatePercent = s.AnnualRatePercent
	summary.TermYears = s.TermYears
	summary.MonthlyPayment = schedule[0].Payment

	return &ScheduleResult{
		Summary:  summary,
		Schedule: schedule,
	}, nil
}
