package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	hundred        = decimal.NewFromInt(100)
	monthsPerYear  = decimal.NewFromInt(12)
	percentPerYear = hundred.Mul(monthsPerYear)
)

// WorkingPlaces точность промежуточных расчетов: заметно мельче копейки,
// но не дает числу знаков расти от периода к периоду
const WorkingPlaces = 10

// RoundCents округляет сумму до 2 знаков после запятой
func RoundCents(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// Working приводит промежуточное значение к рабочей точности
func Working(value decimal.Decimal) decimal.Decimal {
	return value.Round(WorkingPlaces)
}

// MonthlyRate переводит годовую ставку в процентах в месячную долю: pct / 100 / 12
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(percentPerYear)
}

// IsFinite проверяет, является ли число конечным
func IsFinite(value float64) bool {
	return !math.IsInf(value, 0) && !math.IsNaN(value)
}
