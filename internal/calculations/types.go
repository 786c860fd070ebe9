package calculations

import "github.com/shopspring/decimal"

// LoanScenario входные параметры кредита с фиксированной ставкой
type LoanScenario struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TermYears         int             `json:"term_years"`
	// ExtraPayment досрочное погашение тела в каждом периоде, начиная с ExtraPaymentStartPeriod
	ExtraPayment            decimal.Decimal `json:"extra_payment"`
	ExtraPaymentStartPeriod int             `json:"extra_payment_start_period,omitempty"`
}

// Periods возвращает полное число месячных периодов срока
func (s LoanScenario) Periods() int {
	return s.TermYears * 12
}

// HasExtraPayment сообщает, задано ли досрочное погашение
func (s LoanScenario) HasExtraPayment() bool {
	return s.ExtraPayment.IsPositive()
}

// WithoutExtraPayment возвращает копию сценария без досрочных погашений
func (s LoanScenario) WithoutExtraPayment() LoanScenario {
	s.ExtraPayment = decimal.Zero
	s.ExtraPaymentStartPeriod = 0
	return s
}

// AmortizationPeriod одна строка графика платежей; суммы округлены до копеек
type AmortizationPeriod struct {
	PeriodIndex      int             `json:"period"`
	Payment          decimal.Decimal `json:"payment"`
	Interest         decimal.Decimal `json:"interest"`
	Principal        decimal.Decimal `json:"principal_component"`
	ExtraPrincipal   decimal.Decimal `json:"extra_principal"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// AmortizationSummary сводка по графику
type AmortizationSummary struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TermYears         int             `json:"term_years"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment"`
	Periods           int             `json:"periods"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
	TotalExtra        decimal.Decimal `json:"total_extra"`
	FinalBalance      decimal.Decimal `json:"final_balance"`
}

// ScheduleResult график вместе со сводкой
type ScheduleResult struct {
	Summary  AmortizationSummary  `json:"summary"`
	Schedule []AmortizationPeriod `json:"schedule"`
}

// ExtraPaymentEffect эффект досрочных погашений по сравнению с обычным графиком
type ExtraPaymentEffect struct {
	Baseline      AmortizationSummary `json:"baseline"`
	WithExtra     AmortizationSummary `json:"with_extra"`
	PeriodsSaved  int                 `json:"periods_saved"`
	InterestSaved decimal.Decimal     `json:"interest_saved"`
}

// TierDefinition ступень процентной сетки: ставка действует на часть баланса выше порога
type TierDefinition struct {
	ThresholdAmount   decimal.Decimal `json:"threshold" yaml:"threshold"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" yaml:"annual_rate_percent"`
}

// ProjectionSnapshot состояние счета на конец года проекции
type ProjectionSnapshot struct {
	YearIndex                  int             `json:"year"`
	EndingBalance              decimal.Decimal `json:"ending_balance"`
	CumulativeContributions    decimal.Decimal `json:"cumulative_contributions"`
	CumulativeInterest         decimal.Decimal `json:"cumulative_interest"`
	EffectiveAnnualRatePercent decimal.Decimal `json:"effective_annual_rate_percent"`
}

// RankedScenario результат сравнения сеток, упорядоченный по итоговому балансу
type RankedScenario struct {
	Rank     int                `json:"rank"`
	Name     string             `json:"name"`
	Snapshot ProjectionSnapshot `json:"snapshot"`
}

// GrowthMetrics метрики роста накоплений
type GrowthMetrics struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
	TotalInvested  decimal.Decimal `json:"total_invested"`
	FinalValue     decimal.Decimal `json:"final_value"`
	CapitalGain    decimal.Decimal `json:"capital_gain"`
	ROIPercent     decimal.Decimal `json:"roi_percent"`
	ProfitPercent  decimal.Decimal `json:"profit_percent"`
	Years          int             `json:"years"`
}

// LoanSummary сводка для сравнения схем погашения
type LoanSummary struct {
	MonthlyPayment     decimal.Decimal `json:"monthly_payment"`
	FirstMonthPayment  decimal.Decimal `json:"first_month_payment"`
	LastMonthPayment   decimal.Decimal `json:"last_month_payment"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
	OverpaymentPercent decimal.Decimal `json:"overpayment_percent"`
}

// LoanComparison результат сравнения аннуитетной и дифференцированной схем
type LoanComparison struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	Periods           int             `json:"periods"`
	Annuity           LoanSummary     `json:"annuity"`
	Differential      LoanSummary     `json:"differential"`
	CheaperType       string          `json:"cheaper_type"`
	Savings           decimal.Decimal `json:"savings"`
	InterestDiff      decimal.Decimal `json:"interest_diff"`
}
