package validators

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cloud-ru/fincalc-go/internal/calculations"
	"github.com/cloud-ru/fincalc-go/internal/config"
	"github.com/cloud-ru/fincalc-go/pkg/utils"
)

// ErrValidation оборачивает все ошибки проверки пользовательского ввода
var ErrValidation = errors.New("неверные параметры")

// LoanInput сырые параметры кредита из формы
type LoanInput struct {
	Principal               float64
	AnnualRatePercent       float64
	TermYears               int
	ExtraPayment            float64
	ExtraPaymentStartPeriod int
}

// ValidatePositiveNumber проверяет, что число конечно и в допустимом диапазоне
func ValidatePositiveNumber(name string, value float64, minInclusive, maxInclusive float64) error {
	if !utils.IsFinite(value) {
		return fmt.Errorf("%w: %s: значение не является конечным числом", ErrValidation, name)
	}
	if value < minInclusive {
		return fmt.Errorf("%w: %s: значение должно быть ≥ %g", ErrValidation, name, minInclusive)
	}
	if value > maxInclusive {
		return fmt.Errorf("%w: %s: значение слишком велико (>%g)", ErrValidation, name, maxInclusive)
	}
	return nil
}

// ValidateIntRange проверяет, что целое число в допустимом диапазоне
func ValidateIntRange(name string, value int, minInclusive, maxInclusive int) error {
	if value < minInclusive || value > maxInclusive {
		return fmt.Errorf("%w: %s: значение должно быть в диапазоне [%d; %d]", ErrValidation, name, minInclusive, maxInclusive)
	}
	return nil
}

// CheckPrincipal проверяет сумму кредита
func CheckPrincipal(cfg *config.Config, principal float64) error {
	if err := ValidatePositiveNumber("principal", principal, 0.0, cfg.MaxPrincipal); err != nil {
		return err
	}
	if principal <= 0 {
		return fmt.Errorf("%w: principal: значение должно быть больше 0", ErrValidation)
	}
	return nil
}

// CheckRate проверяет процентную ставку
func CheckRate(cfg *config.Config, rate float64) error {
	return ValidatePositiveNumber("annual_rate_percent", rate, 0.0, cfg.MaxRate)
}

// CheckTermYears проверяет срок кредита в годах
func CheckTermYears(cfg *config.Config, years int) error {
	return ValidateIntRange("term_years", years, 1, cfg.MaxTermYears)
}

// CheckProjectionYears проверяет горизонт проекции
func CheckProjectionYears(cfg *config.Config, years int) error {
	return ValidateIntRange("years", years, 0, cfg.MaxProjectionYears)
}

// CheckInitialAmount проверяет начальную сумму
func CheckInitialAmount(cfg *config.Config, amount float64) error {
	return ValidatePositiveNumber("initial_balance", amount, 0.0, cfg.MaxPrincipal)
}

// CheckContribution проверяет ежемесячный взнос
func CheckContribution(cfg *config.Config, contribution float64) error {
	return ValidatePositiveNumber("monthly_contribution", contribution, 0.0, cfg.MaxContribution)
}

// CheckExtraPayment проверяет досрочное погашение
func CheckExtraPayment(cfg *config.Config, extra float64) error {
	return ValidatePositiveNumber("extra_payment", extra, 0.0, cfg.MaxPrincipal)
}

// BuildLoanScenario проверяет ввод и собирает сценарий для движка
func BuildLoanScenario(cfg *config.Config, in LoanInput) (calculations.LoanScenario, error) {
	if err := CheckPrincipal(cfg, in.Principal); err != nil {
		return calculations.LoanScenario{}, err
	}
	if err := CheckRate(cfg, in.AnnualRatePercent); err != nil {
		return calculations.LoanScenario{}, err
	}
	if err := CheckTermYears(cfg, in.TermYears); err != nil {
		return calculations.LoanScenario{}, err
	}
	if err := CheckExtraPayment(cfg, in.ExtraPayment); err != nil {
		return calculations.LoanScenario{}, err
	}
	if err := ValidateIntRange("extra_payment_start_period", in.ExtraPaymentStartPeriod, 0, in.TermYears*12); err != nil {
		return calculations.LoanScenario{}, err
	}

	return calculations.LoanScenario{
		Principal:               decimal.NewFromFloat(in.Principal),
		AnnualRatePercent:       decimal.NewFromFloat(in.AnnualRatePercent),
		TermYears:               in.TermYears,
		ExtraPayment:            decimal.NewFromFloat(in.ExtraPayment),
		ExtraPaymentStartPeriod: in.ExtraPaymentStartPeriod,
	}, nil
}

// BuildTiers проверяет ступени сетки и переводит их в decimal.
// Уникальность порогов проверяет сам движок.
func BuildTiers(cfg *config.Config, tiers []config.TierConfig) ([]calculations.TierDefinition, error) {
	if err := ValidateIntRange("tiers", len(tiers), 1, cfg.MaxTiers); err != nil {
		return nil, err
	}

	out := make([]calculations.TierDefinition, 0, len(tiers))
	for i, t := range tiers {
		if err := ValidatePositiveNumber(fmt.Sprintf("tiers[%d].threshold", i), t.Threshold, 0.0, cfg.MaxPrincipal); err != nil {
			return nil, err
		}
		if err := CheckRate(cfg, t.Rate); err != nil {
			return nil, fmt.Errorf("tiers[%d]: %w", i, err)
		}
		out = append(out, calculations.TierDefinition{
			ThresholdAmount:   decimal.NewFromFloat(t.Threshold),
			AnnualRatePercent: decimal.NewFromFloat(t.Rate),
		})
	}
	return out, nil
}

// BuildRateStructures переводит именованные сетки из конфигурации
func BuildRateStructures(cfg *config.Config, structures []config.RateStructure) (map[string][]calculations.TierDefinition, error) {
	out := make(map[string][]calculations.TierDefinition, len(structures))
	for _, rs := range structures {
		tiers, err := BuildTiers(cfg, rs.Tiers)
		if err != nil {
			return nil, fmt.Errorf("rate structure %q: %w", rs.Name, err)
		}
		out[rs.Name] = tiers
	}
	return out, nil
}
