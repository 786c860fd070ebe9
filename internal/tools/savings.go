package tools

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/fincalc-go/internal/calculations"
	"github.com/cloud-ru/fincalc-go/internal/config"
	"github.com/cloud-ru/fincalc-go/internal/validators"
	"github.com/cloud-ru/fincalc-go/pkg/utils"
)

// TierInterestResult месячные проценты по ступенчатой сетке
type TierInterestResult struct {
	Balance            decimal.Decimal               `json:"balance"`
	MonthlyInterest    decimal.Decimal               `json:"monthly_interest"`
	BlendedRatePercent decimal.Decimal               `json:"blended_rate_percent"`
	Tiers              []calculations.TierDefinition `json:"tiers"`
}

// RateStructureComparison ранжированные результаты сравнения сеток
type RateStructureComparison struct {
	Years   int                           `json:"years"`
	Results []calculations.RankedScenario `json:"results"`
}

// savingsInput параметры накопительной программы
type savingsInput struct {
	initial      float64
	contribution float64
	years        int
}

func savingsInputParams(cfg *config.Config, params map[string]interface{}) (savingsInput, error) {
	var (
		in  savingsInput
		err error
	)
	if in.initial, err = floatParam(params, "initial_balance"); err != nil {
		return in, err
	}
	if in.contribution, err = optionalFloatParam(params, "monthly_contribution", 0); err != nil {
		return in, err
	}
	if in.years, err = intParam(params, "years"); err != nil {
		return in, err
	}

	if err := validators.CheckInitialAmount(cfg, in.initial); err != nil {
		return in, err
	}
	if err := validators.CheckContribution(cfg, in.contribution); err != nil {
		return in, err
	}
	if err := validators.CheckProjectionYears(cfg, in.years); err != nil {
		return in, err
	}
	return in, nil
}

func (in savingsInput) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64("initial_balance", in.initial),
		attribute.Float64("monthly_contribution", in.contribution),
		attribute.Int("years", in.years),
	}
}

// resolveTiers берет сетку из параметра tiers либо по имени rate_structure
func resolveTiers(cfg *config.Config, structures map[string][]calculations.TierDefinition,
	params map[string]interface{}) ([]calculations.TierDefinition, bool, error) {

	if _, ok := params["tiers"]; ok {
		raw, err := tiersParam(params, "tiers")
		if err != nil {
			return nil, false, err
		}
		tiers, err := validators.BuildTiers(cfg, raw)
		return tiers, true, err
	}
	if _, ok := params["rate_structure"]; ok {
		name, err := stringParam(params, "rate_structure")
		if err != nil {
			return nil, false, err
		}
		tiers, found := structures[name]
		if !found {
			return nil, false, invalidParam("rate_structure", fmt.Sprintf("неизвестная сетка %q", name))
		}
		return tiers, true, nil
	}
	return nil, false, nil
}

// TierInterestHandler считает месячные проценты по ступенчатой сетке
func TierInterestHandler(cfg *config.Config, tracer trace.Tracer,
	structures map[string][]calculations.TierDefinition) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, "tier_interest")

		balance, err := floatParam(params, "balance")
		if err != nil {
			return nil, call.fail(err)
		}
		call.span.SetAttributes(attribute.Float64("balance", balance))
		if err := validators.CheckInitialAmount(cfg, balance); err != nil {
			return nil, call.fail(err)
		}

		tiers, found, err := resolveTiers(cfg, structures, params)
		if err != nil {
			return nil, call.fail(err)
		}
		if !found {
			return nil, call.fail(invalidParam("tiers", "задайте tiers или rate_structure"))
		}

		ts, err := calculations.NewTierSchedule(tiers)
		if err != nil {
			return nil, call.fail(err)
		}

		amount := decimal.NewFromFloat(balance)
		result := &TierInterestResult{
			Balance:            utils.RoundCents(amount),
			MonthlyInterest:    utils.RoundCents(ts.MonthlyInterest(amount)),
			BlendedRatePercent: ts.BlendedRatePercent(amount),
			Tiers:              ts.Tiers(),
		}

		call.ok(attribute.String("monthly_interest", result.MonthlyInterest.String()))
		return result, nil
	}
}

// SavingsProjectionHandler прогоняет накопительный счет по плоской ставке
// annual_rate_percent либо по ступенчатой сетке.
func SavingsProjectionHandler(cfg *config.Config, tracer trace.Tracer,
	structures map[string][]calculations.TierDefinition) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, "savings_projection")

		in, err := savingsInputParams(cfg, params)
		if err != nil {
			return nil, call.fail(err)
		}
		call.span.SetAttributes(in.attributes()...)

		var interestFn calculations.InterestFunc
		tiers, found, err := resolveTiers(cfg, structures, params)
		if err != nil {
			return nil, call.fail(err)
		}
		if found {
			if interestFn, err = calculations.TieredRate(tiers); err != nil {
				return nil, call.fail(err)
			}
			call.span.SetAttributes(attribute.Int("tiers", len(tiers)))
		} else {
			rate, err := floatParam(params, "annual_rate_percent")
			if err != nil {
				return nil, call.fail(err)
			}
			if err := validators.CheckRate(cfg, rate); err != nil {
				return nil, call.fail(err)
			}
			interestFn = calculations.FlatRate(decimal.NewFromFloat(rate))
			call.span.SetAttributes(attribute.Float64("annual_rate_percent", rate))
		}

		result, err := calculations.InvestmentCalculator(
			decimal.NewFromFloat(in.initial),
			decimal.NewFromFloat(in.contribution),
			in.years,
			interestFn,
		)
		if err != nil {
			return nil, call.fail(err)
		}

		call.ok(attribute.String("final_value", result.GrowthMetrics.FinalValue.String()))
		return result, nil
	}
}

// CompareRateStructuresHandler сравнивает сетки ставок на одной программе взносов.
// Без параметра structures сравниваются сетки из конфигурации.
func CompareRateStructuresHandler(cfg *config.Config, tracer trace.Tracer,
	structures map[string][]calculations.TierDefinition) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		_, call := begin(ctx, tracer, "compare_rate_structures")

		in, err := savingsInputParams(cfg, params)
		if err != nil {
			return nil, call.fail(err)
		}
		call.span.SetAttributes(in.attributes()...)

		candidates := structures
		if _, ok := params["structures"]; ok {
			raw, err := rateStructuresParam(params)
			if err != nil {
				return nil, call.fail(err)
			}
			if candidates, err = validators.BuildRateStructures(cfg, raw); err != nil {
				return nil, call.fail(err)
			}
		}
		call.span.SetAttributes(attribute.Int("structures", len(candidates)))

		results, err := calculations.CompareScenarios(
			decimal.NewFromFloat(in.initial),
			decimal.NewFromFloat(in.contribution),
			in.years,
			candidates,
		)
		if err != nil {
			return nil, call.fail(err)
		}

		ranked := calculations.RankScenarios(results)
		if len(ranked) > 0 {
			call.ok(attribute.String("best", ranked[0].Name))
		} else {
			call.ok()
		}
		return &RateStructureComparison{Years: in.years, Results: ranked}, nil
	}
}

// rateStructuresParam разбирает [{"name": "...", "tiers": [...]}, ...]
func rateStructuresParam(params map[string]interface{}) ([]config.RateStructure, error) {
	raw, ok := params["structures"].([]interface{})
	if !ok {
		return nil, invalidParam("structures", "ожидается список сеток")
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]config.RateStructure, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, invalidParam(fmt.Sprintf("structures[%d]", i), "ожидается объект")
		}
		name, err := stringParam(m, "name")
		if err != nil {
			return nil, fmt.Errorf("structures[%d]: %w", i, err)
		}
		if _, dup := seen[name]; dup {
			return nil, invalidParam("structures", fmt.Sprintf("повторяется имя %q", name))
		}
		seen[name] = struct{}{}
		tiers, err := tiersParam(m, "tiers")
		if err != nil {
			return nil, fmt.Errorf("structures[%d]: %w", i, err)
		}
		out = append(out, config.RateStructure{Name: name, Tiers: tiers})
	}
	return out, nil
}
