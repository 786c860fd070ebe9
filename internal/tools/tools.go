package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cloud-ru/fincalc-go/internal/calculations"
	"github.com/cloud-ru/fincalc-go/internal/config"
	"github.com/cloud-ru/fincalc-go/internal/logger"
	"github.com/cloud-ru/fincalc-go/internal/metrics"
	"github.com/cloud-ru/fincalc-go/internal/validators"
)

// ToolHandler представляет обработчик инструмента
type ToolHandler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// invocation сопровождает один вызов инструмента: спан, метрики, лог
type invocation struct {
	tool  string
	span  trace.Span
	start time.Time
}

func begin(ctx context.Context, tracer trace.Tracer, tool string) (context.Context, *invocation) {
	ctx, span := tracer.Start(ctx, tool)
	return ctx, &invocation{tool: tool, span: span, start: time.Now()}
}

// fail фиксирует ошибку вызова. Ошибки ввода и ошибки движка на невалидном
// сценарии считаются validation_error, все остальное calculation.
func (c *invocation) fail(err error) error {
	defer c.end()

	if errors.Is(err, validators.ErrValidation) || calculations.IsInputError(err) {
		c.span.SetAttributes(attribute.String("error", "validation_error"))
		c.span.SetStatus(codes.Error, "validation_error")
		metrics.ToolCalls.WithLabelValues(c.tool, "validation_error").Inc()
		metrics.CalculationErrors.WithLabelValues(c.tool, "validation").Inc()
		logger.L().Warn("invalid tool input", zap.String("tool", c.tool), zap.Error(err))
		if errors.Is(err, validators.ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: %w", validators.ErrValidation, err)
	}

	c.span.RecordError(err)
	c.span.SetStatus(codes.Error, "calculation_error")
	metrics.ToolCalls.WithLabelValues(c.tool, "error").Inc()
	metrics.CalculationErrors.WithLabelValues(c.tool, "calculation").Inc()
	logger.L().Error("tool call failed", zap.String("tool", c.tool), zap.Error(err))
	return fmt.Errorf("ошибка при выполнении расчета: %w", err)
}

func (c *invocation) ok(attrs ...attribute.KeyValue) {
	defer c.end()

	c.span.SetAttributes(append(attrs, attribute.Bool("success", true))...)
	metrics.ToolCalls.WithLabelValues(c.tool, "success").Inc()
	logger.L().Debug("tool call completed",
		zap.String("tool", c.tool),
		zap.Duration("elapsed", time.Since(c.start)),
	)
}

// notFound завершает вызов, который сослался на отсутствующий объект
func (c *invocation) notFound(attrs ...attribute.KeyValue) {
	defer c.end()

	c.span.SetAttributes(append(attrs, attribute.String("error", "not_found"))...)
	metrics.ToolCalls.WithLabelValues(c.tool, "not_found").Inc()
	logger.L().Info("tool call target not found", zap.String("tool", c.tool))
}

func (c *invocation) end() {
	metrics.ToolDuration.WithLabelValues(c.tool).Observe(time.Since(c.start).Seconds())
	c.span.End()
}

func invalidParam(name, reason string) error {
	return fmt.Errorf("%w: invalid parameter: %s: %s", validators.ErrValidation, name, reason)
}

// floatParam достает обязательное число из JSON-параметров
func floatParam(params map[string]interface{}, name string) (float64, error) {
	raw, present := params[name]
	if !present || raw == nil {
		return 0, invalidParam(name, "обязательный параметр")
	}
	v, ok := raw.(float64)
	if !ok {
		return 0, invalidParam(name, "ожидается число")
	}
	return v, nil
}

func optionalFloatParam(params map[string]interface{}, name string, def float64) (float64, error) {
	if raw, present := params[name]; !present || raw == nil {
		return def, nil
	}
	return floatParam(params, name)
}

// intParam принимает только целые числа: JSON не различает int и float
func intParam(params map[string]interface{}, name string) (int, error) {
	v, err := floatParam(params, name)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, invalidParam(name, "ожидается целое число")
	}
	return int(v), nil
}

func optionalIntParam(params map[string]interface{}, name string, def int) (int, error) {
	if raw, present := params[name]; !present || raw == nil {
		return def, nil
	}
	return intParam(params, name)
}

func stringParam(params map[string]interface{}, name string) (string, error) {
	v, ok := params[name].(string)
	if !ok || v == "" {
		return "", invalidParam(name, "ожидается непустая строка")
	}
	return v, nil
}

// tiersParam разбирает список ступеней вида [{"threshold": 0, "rate": 4.5}, ...]
func tiersParam(params map[string]interface{}, name string) ([]config.TierConfig, error) {
	raw, ok := params[name].([]interface{})
	if !ok {
		return nil, invalidParam(name, "ожидается список ступеней")
	}
	tiers := make([]config.TierConfig, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, invalidParam(fmt.Sprintf("%s[%d]", name, i), "ожидается объект")
		}
		threshold, err := floatParam(m, "threshold")
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		rate, err := floatParam(m, "rate")
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		tiers = append(tiers, config.TierConfig{Threshold: threshold, Rate: rate})
	}
	return tiers, nil
}

// loanInputParams читает параметры кредита, общие для кредитных инструментов
func loanInputParams(params map[string]interface{}) (validators.LoanInput, error) {
	var (
		in  validators.LoanInput
		err error
	)
	if in.Principal, err = floatParam(params, "principal"); err != nil {
		return in, err
	}
	if in.AnnualRatePercent, err = floatParam(params, "annual_rate_percent"); err != nil {
		return in, err
	}
	if in.TermYears, err = intParam(params, "term_years"); err != nil {
		return in, err
	}
	if in.ExtraPayment, err = optionalFloatParam(params, "extra_payment", 0); err != nil {
		return in, err
	}
	if in.ExtraPaymentStartPeriod, err = optionalIntParam(params, "extra_payment_start_period", 0); err != nil {
		return in, err
	}
	return in, nil
}

// rejectExtraPayment для графиков, которые не умеют учитывать досрочные погашения
func rejectExtraPayment(in validators.LoanInput) error {
	if in.ExtraPayment != 0 {
		return invalidParam("extra_payment", "досрочные погашения поддерживаются только в loan_schedule_annuity")
	}
	if in.ExtraPaymentStartPeriod != 0 {
		return invalidParam("extra_payment_start_period", "досрочные погашения поддерживаются только в loan_schedule_annuity")
	}
	return nil
}

func loanAttributes(in validators.LoanInput) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64("principal", in.Principal),
		attribute.Float64("annual_rate_percent", in.AnnualRatePercent),
		attribute.Int("term_years", in.TermYears),
		attribute.Float64("extra_payment", in.ExtraPayment),
	}
}
