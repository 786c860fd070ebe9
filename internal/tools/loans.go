package tools

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/fincalc-go/internal/calculations"
	"github.com/cloud-ru/fincalc-go/internal/config"
	"github.com/cloud-ru/fincalc-go/internal/metrics"
	"github.com/cloud-ru/fincalc-go/internal/validators"
)

// LoanPaymentResult фиксированный ежемесячный платеж
type LoanPaymentResult struct {
	MonthlyPayment string `json:"monthly_payment"`
	Periods        int    `json:"periods"`
}

// AnnuityScheduleResult график с опциональным эффектом досрочных погашений
type AnnuityScheduleResult struct {
	*calculations.ScheduleResult
	ExtraPaymentEffect *calculations.ExtraPaymentEffect `json:"extra_payment_effect,omitempty"`
}

// LoanPaymentHandler считает фиксированный аннуитетный платеж
func LoanPaymentHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, "loan_payment")

		in, err := loanInputParams(params)
		if err != nil {
			return nil, call.fail(err)
		}
		call.span.SetAttributes(loanAttributes(in)...)

		scenario, err := validators.BuildLoanScenario(cfg, in)
		if err != nil {
			return nil, call.fail(err)
		}

		payment, err := calculations.ComputeFixedPayment(scenario)
		if err != nil {
			return nil, call.fail(err)
		}

		call.ok(attribute.String("monthly_payment", payment.String()))
		return &LoanPaymentResult{
			MonthlyPayment: payment.StringFixed(2),
			Periods:        scenario.Periods(),
		}, nil
	}
}

// LoanScheduleAnnuityHandler обрабатывает запрос на расчет аннуитетного кредита.
// При заданном extra_payment дополнительно сравнивает с графиком без досрочных погашений
// на полный срок кредита, независимо от max_periods.
func LoanScheduleAnnuityHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, "loan_schedule_annuity")

		in, err := loanInputParams(params)
		if err != nil {
			return nil, call.fail(err)
		}
		maxPeriods, err := optionalIntParam(params, "max_periods", cfg.MaxSchedulePeriods)
		if err != nil {
			return nil, call.fail(err)
		}
		if maxPeriods <= 0 {
			return nil, call.fail(invalidParam("max_periods", "должно быть больше 0"))
		}
		call.span.SetAttributes(loanAttributes(in)...)
		call.span.SetAttributes(attribute.Int("max_periods", maxPeriods))

		scenario, err := validators.BuildLoanScenario(cfg, in)
		if err != nil {
			return nil, call.fail(err)
		}

		result, err := calculations.AnnuitySchedule(scenario, calculations.WithMaxPeriods(maxPeriods))
		if err != nil {
			return nil, call.fail(err)
		}
		metrics.ScheduleLength.Observe(float64(len(result.Schedule)))

		out := &AnnuityScheduleResult{ScheduleResult: result}
		if scenario.HasExtraPayment() {
			effect, err := calculations.CompareExtraPayments(scenario)
			if err != nil {
				return nil, call.fail(err)
			}
			out.ExtraPaymentEffect = effect
		}

		call.ok(
			attribute.String("monthly_payment", result.Summary.MonthlyPayment.String()),
			attribute.String("total_paid", result.Summary.TotalPaid.String()),
			attribute.Int("periods", result.Summary.Periods),
		)
		return out, nil
	}
}

// LoanScheduleDifferentialHandler обрабатывает запрос на расчет дифференцированного кредита
func LoanScheduleDifferentialHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, "loan_schedule_differential")

		in, err := loanInputParams(params)
		if err != nil {
			return nil, call.fail(err)
		}
		if err := rejectExtraPayment(in); err != nil {
			return nil, call.fail(err)
		}
		call.span.SetAttributes(loanAttributes(in)...)

		scenario, err := validators.BuildLoanScenario(cfg, in)
		if err != nil {
			return nil, call.fail(err)
		}

		result, err := calculations.DifferentialSchedule(scenario)
		if err != nil {
			return nil, call.fail(err)
		}
		metrics.ScheduleLength.Observe(float64(len(result.Schedule)))

		call.ok(attribute.String("total_paid", result.Summary.TotalPaid.String()))
		return result, nil
	}
}

// CompareLoanSchedulesHandler обрабатывает запрос на сравнение кредитов
func CompareLoanSchedulesHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, "compare_loan_schedules")

		in, err := loanInputParams(params)
		if err != nil {
			return nil, call.fail(err)
		}
		if err := rejectExtraPayment(in); err != nil {
			return nil, call.fail(err)
		}
		call.span.SetAttributes(loanAttributes(in)...)

		scenario, err := validators.BuildLoanScenario(cfg, in)
		if err != nil {
			return nil, call.fail(err)
		}

		result, err := calculations.CompareLoans(scenario)
		if err != nil {
			return nil, call.fail(err)
		}

		call.ok(attribute.String("cheaper_type", result.CheaperType))
		return result, nil
	}
}
