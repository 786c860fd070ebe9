package calculations

import (
	"errors"
	"fmt"
)

// Sentinel-ошибки движка, проверяются через errors.Is
var (
	// ErrInvalidScenario входные данные кредита или проекции вне допустимой области
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrInvalidTierStructure пустая или некорректная сетка ставок
	ErrInvalidTierStructure = errors.New("invalid tier structure")
)

// ScenarioError указывает, какое поле сценария не прошло проверку
type ScenarioError struct {
	Field  string
	Reason string
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("invalid scenario: %s: %s", e.Field, e.Reason)
}

func (e *ScenarioError) Unwrap() error {
	return ErrInvalidScenario
}

// TierStructureError описывает нарушение инварианта сетки ставок
type TierStructureError struct {
	Reason string
}

func (e *TierStructureError) Error() string {
	return fmt.Sprintf("invalid tier structure: %s", e.Reason)
}

func (e *TierStructureError) Unwrap() error {
	return ErrInvalidTierStructure
}

// IsInputError возвращает true, если ошибка вызвана некорректным вводом
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidScenario) || errors.Is(err, ErrInvalidTierStructure)
}

func invalidScenario(field, reason string) error {
	return &ScenarioError{Field: field, Reason: reason}
}

func invalidTiers(format string, args ...interface{}) error {
	return &TierStructureError{Reason: fmt.Sprintf(format, args...)}
}
