package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/fincalc-go/pkg/utils"
)

// Типы схем погашения в результате сравнения
const (
	LoanTypeAnnuity      = "annuity"
	LoanTypeDifferential = "differential"
	LoanTypeEqual        = "equal"
)

var hundred = decimal.NewFromInt(100)

// CompareLoans сравнивает аннуитетный и дифференцированный кредиты.
// Досрочные погашения сценария в сравнении не участвуют.
func CompareLoans(s LoanScenario) (*LoanComparison, error) {
	s = s.WithoutExtraPayment()

	annuity, err := AnnuitySchedule(s, WithMaxPeriods(s.Periods()))
	if err != nil {
		return nil, err
	}
	differential, err := DifferentialSchedule(s)
	if err != nil {
		return nil, err
	}

	totalPaidDiff := annuity.Summary.TotalPaid.Sub(differential.Summary.TotalPaid)

	result := &LoanComparison{
		Principal:         utils.RoundCents(s.Principal),
		AnnualRatePercent: s.AnnualRatePercent,
		Periods:           s.Periods(),
		Annuity:           loanSummary(s.Principal, annuity),
		Differential:      loanSummary(s.Principal, differential),
		InterestDiff:      annuity.Summary.TotalInterest.Sub(differential.Summary.TotalInterest),
	}

	switch totalPaidDiff.Sign() {
	case 1:
		result.CheaperType = LoanTypeDifferential
		result.Savings = totalPaidDiff
	case -1:
		result.CheaperType = LoanTypeAnnuity
		result.Savings = totalPaidDiff.Neg()
	default:
		result.CheaperType = LoanTypeEqual
		result.Savings = decimal.Zero
	}

	return result, nil
}

func loanSummary(principal decimal.Decimal, r *ScheduleResult) LoanSummary {
	first := r.Schedule[0]
	last := r.Schedule[len(r.Schedule)-1]
	return LoanSummary{
		MonthlyPayment:     r.Summary.MonthlyPayment,
		FirstMonthPayment:  first.Payment,
		LastMonthPayment:   last.Payment,
		TotalPaid:          r.Summary.TotalPaid,
		TotalInterest:      r.Summary.TotalInterest,
		OverpaymentPercent: utils.RoundCents(r.Summary.TotalInterest.Div(principal).Mul(hundred)),
	}
}
