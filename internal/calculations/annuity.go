package calculations

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cloud-ru/fincalc-go/pkg/utils"
)

// DefaultMaxPeriods верхняя граница длины графика (30 лет помесячно)
const DefaultMaxPeriods = 360

// maxRoundingGrowth предел суммы (1+r)^k по всем периодам срока. Пока он не
// превышен, ошибки округления до utils.WorkingPlaces в каждом периоде дают к
// концу срока меньше десятой доли копейки.
const maxRoundingGrowth = 1e7

var one = decimal.NewFromInt(1)

type scheduleOptions struct {
	maxPeriods int
}

// ScheduleOption настраивает генерацию графика
type ScheduleOption func(*scheduleOptions)

// WithMaxPeriods задает предельное число строк графика; n <= 0 оставляет значение по умолчанию
func WithMaxPeriods(n int) ScheduleOption {
	return func(o *scheduleOptions) {
		if n > 0 {
			o.maxPeriods = n
		}
	}
}

func validateScenario(s LoanScenario) error {
	if !s.Principal.IsPositive() {
		return invalidScenario("principal", "must be greater than 0")
	}
	if s.TermYears <= 0 {
		return invalidScenario("term_years", "must be greater than 0")
	}
	if s.AnnualRatePercent.IsNegative() {
		return invalidScenario("annual_rate_percent", "must not be negative")
	}
	if s.ExtraPayment.IsNegative() {
		return invalidScenario("extra_payment", "must not be negative")
	}
	if s.ExtraPaymentStartPeriod < 0 {
		return invalidScenario("extra_payment_start_period", "must not be negative")
	}
	return nil
}

// validateAnnuity дополнительно отсекает сочетания ставки и срока, при которых
// тело в ранних платежах теряется при округлении и график заканчивается
// шаровым платежом
func validateAnnuity(s LoanScenario) error {
	if err := validateScenario(s); err != nil {
		return err
	}
	r, _ := utils.MonthlyRate(s.AnnualRatePercent).Float64()
	n := float64(s.Periods())
	growth := n
	if r > 0 {
		growth = (math.Pow(1+r, n) - 1) / r
	}
	if math.IsNaN(growth) || math.IsInf(growth, 0) || growth > maxRoundingGrowth {
		return invalidScenario("annual_rate_percent", "rate is too high for the term to amortize")
	}
	return nil
}

// ComputeFixedPayment рассчитывает аннуитетный платеж: P*r*(1+r)^n / ((1+r)^n - 1),
// при нулевой ставке P/n
func ComputeFixedPayment(s LoanScenario) (decimal.Decimal, error) {
	if err := validateAnnuity(s); err != nil {
		return decimal.Zero, err
	}
	return fixedPayment(s.Principal, utils.MonthlyRate(s.AnnualRatePercent), s.Periods()), nil
}

func fixedPayment(principal, r decimal.Decimal, n int) decimal.Decimal {
	periods := decimal.NewFromInt(int64(n))
	if r.IsZero() {
		return principal.Div(periods)
	}
	factor := one.Add(r).Pow(periods)
	return principal.Mul(r).Mul(factor).Div(factor.Sub(one))
}

// ScheduleIterator ленивый однопроходный обход графика платежей
type ScheduleIterator struct {
	payment     decimal.Decimal
	rate        decimal.Decimal
	balance     decimal.Decimal
	extra       decimal.Decimal
	extraFrom   int
	termPeriods int
	limit       int
	next        int
	done        bool
}

// GenerateSchedule проверяет сценарий и возвращает итератор по графику.
// Длина графика не превышает min(срок в месяцах, MaxPeriods); график
// обрывается в первом периоде, где остаток долга доходит до нуля.
func GenerateSchedule(s LoanScenario, opts ...ScheduleOption) (*ScheduleIterator, error) {
	if err := validateAnnuity(s); err != nil {
		return nil, err
	}

	o := scheduleOptions{maxPeriods: DefaultMaxPeriods}
	for _, opt := range opts {
		opt(&o)
	}

	n := s.Periods()
	r := utils.MonthlyRate(s.AnnualRatePercent)

	extraFrom := s.ExtraPaymentStartPeriod
	if extraFrom < 1 {
		extraFrom = 1
	}

	limit := n
	if o.maxPeriods < limit {
		limit = o.maxPeriods
	}

	return &ScheduleIterator{
		payment:     utils.Working(fixedPayment(s.Principal, r, n)),
		rate:        r,
		balance:     s.Principal,
		extra:       s.ExtraPayment,
		extraFrom:   extraFrom,
		termPeriods: n,
		limit:       limit,
		next:        1,
	}, nil
}

// Next возвращает следующий период; false, когда график исчерпан
func (it *ScheduleIterator) Next() (AmortizationPeriod, bool) {
	if it.done || it.next > it.limit {
		it.done = true
		return AmortizationPeriod{}, false
	}

	idx := it.next
	it.next++

	interest := utils.Working(it.balance.Mul(it.rate))
	principal := it.payment.Sub(interest)
	payment := it.payment

	extra := decimal.Zero
	if it.extra.IsPositive() && idx >= it.extraFrom {
		extra = it.extra
	}

	switch {
	case idx == it.termPeriods || principal.GreaterThanOrEqual(it.balance):
		// последний платеж гасит остаток целиком
		principal = it.balance
		extra = decimal.Zero
		payment = interest.Add(principal)
	case principal.Add(extra).GreaterThan(it.balance):
		extra = it.balance.Sub(principal)
	}

	it.balance = it.balance.Sub(principal).Sub(extra)
	if !it.balance.IsPositive() {
		it.balance = decimal.Zero
		it.done = true
	}

	paymentOut := utils.RoundCents(payment)
	interestOut := utils.RoundCents(interest)

	return AmortizationPeriod{
		PeriodIndex:      idx,
		Payment:          paymentOut,
		Interest:         interestOut,
		Principal:        paymentOut.Sub(interestOut),
		ExtraPrincipal:   utils.RoundCents(extra),
		RemainingBalance: utils.RoundCents(it.balance),
	}, true
}

// Collect дочитывает оставшиеся периоды в срез
func (it *ScheduleIterator) Collect() []AmortizationPeriod {
	schedule := make([]AmortizationPeriod, 0, it.limit-it.next+1)
	for {
		p, ok := it.Next()
		if !ok {
			return schedule
		}
		schedule = append(schedule, p)
	}
}

// AnnuitySchedule рассчитывает полный график аннуитетного кредита со сводкой
func AnnuitySchedule(s LoanScenario, opts ...ScheduleOption) (*ScheduleResult, error) {
	payment, err := ComputeFixedPayment(s)
	if err != nil {
		return nil, err
	}
	it, err := GenerateSchedule(s, opts...)
	if err != nil {
		return nil, err
	}

	schedule := it.Collect()
	summary := SummarizeSchedule(schedule)
	summary.Principal = utils.RoundCents(s.Principal)
	summary.AnnualRatePercent = s.AnnualRatePercent
	summary.TermYears = s.TermYears
	summary.MonthlyPayment = utils.RoundCents(payment)

	return &ScheduleResult{
		Summary:  summary,
		Schedule: schedule,
	}, nil
}

// SummarizeSchedule суммирует платежи, проценты и досрочные погашения графика
func SummarizeSchedule(schedule []AmortizationPeriod) AmortizationSummary {
	var summary AmortizationSummary
	for _, p := range schedule {
		summary.TotalPaid = summary.TotalPaid.Add(p.Payment).Add(p.ExtraPrincipal)
		summary.TotalInterest = summary.TotalInterest.Add(p.Interest)
		summary.TotalExtra = summary.TotalExtra.Add(p.ExtraPrincipal)
	}
	summary.Periods = len(schedule)
	if len(schedule) > 0 {
		summary.FinalBalance = schedule[len(schedule)-1].RemainingBalance
	}
	return summary
}

// CompareExtraPayments сравнивает график с досрочными погашениями и без них.
// Оба графика считаются на полный срок, без предела длины отображаемого графика.
func CompareExtraPayments(s LoanScenario) (*ExtraPaymentEffect, error) {
	fullTerm := WithMaxPeriods(s.Periods())
	withExtra, err := AnnuitySchedule(s, fullTerm)
	if err != nil {
		return nil, err
	}
	baseline, err := AnnuitySchedule(s.WithoutExtraPayment(), fullTerm)
	if err != nil {
		return nil, err
	}

	return &ExtraPaymentEffect{
		Baseline:      baseline.Summary,
		WithExtra:     withExtra.Summary,
		PeriodsSaved:  baseline.Summary.Periods - withExtra.Summary.Periods,
		InterestSaved: baseline.Summary.TotalInterest.Sub(withExtra.Summary.TotalInterest),
	}, nil
}
