package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/fincalc-go/internal/calculations"
	"github.com/cloud-ru/fincalc-go/internal/config"
	"github.com/cloud-ru/fincalc-go/internal/storage"
)

// ErrUnknownTool инструмент с таким именем не зарегистрирован
var ErrUnknownTool = errors.New("unknown tool")

// ToolInfo описание инструмента для каталога
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type registeredTool struct {
	info        ToolInfo
	handler     ToolHandler
	calculation bool
}

// Registry набор инструментов, собранных на одной конфигурации
type Registry struct {
	tools map[string]registeredTool
}

// NewRegistry регистрирует все инструменты. Без store инструменты сохранения
// сценариев не регистрируются.
func NewRegistry(cfg *config.Config, tracer trace.Tracer, store storage.ScenarioStore,
	structures map[string][]calculations.TierDefinition) *Registry {

	r := &Registry{tools: make(map[string]registeredTool)}

	r.register("loan_payment", "Фиксированный ежемесячный аннуитетный платеж", true,
		LoanPaymentHandler(cfg, tracer))
	r.register("loan_schedule_annuity", "График аннуитетного кредита с досрочными погашениями", true,
		LoanScheduleAnnuityHandler(cfg, tracer))
	r.register("loan_schedule_differential", "График дифференцированного кредита без досрочных погашений", true,
		LoanScheduleDifferentialHandler(cfg, tracer))
	r.register("compare_loan_schedules", "Сравнение аннуитетной и дифференцированной схем", true,
		CompareLoanSchedulesHandler(cfg, tracer))
	r.register("tier_interest", "Месячные проценты по ступенчатой сетке ставок", true,
		TierInterestHandler(cfg, tracer, structures))
	r.register("savings_projection", "Проекция накоплений по годам", true,
		SavingsProjectionHandler(cfg, tracer, structures))
	r.register("compare_rate_structures", "Сравнение сеток ставок на одной программе взносов", true,
		CompareRateStructuresHandler(cfg, tracer, structures))

	if store != nil {
		r.register("save_scenario", "Сохранить параметры расчета", false,
			SaveScenarioHandler(r, tracer, store))
		r.register("load_scenario", "Загрузить сохраненный расчет", false,
			LoadScenarioHandler(r, tracer, store))
		r.register("delete_scenario", "Удалить сохраненный расчет", false,
			DeleteScenarioHandler(tracer, store))
	}

	return r
}

func (r *Registry) register(name, description string, calculation bool, h ToolHandler) {
	r.tools[name] = registeredTool{
		info:        ToolInfo{Name: name, Description: description},
		handler:     h,
		calculation: calculation,
	}
}

func (r *Registry) isCalculation(name string) bool {
	t, ok := r.tools[name]
	return ok && t.calculation
}

// Get возвращает обработчик по имени
func (r *Registry) Get(name string) (ToolHandler, bool) {
	t, ok := r.tools[name]
	return t.handler, ok
}

// List возвращает каталог инструментов, отсортированный по имени
func (r *Registry) List() []ToolInfo {
	out := make([]ToolInfo, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call вызывает инструмент по имени
func (r *Registry) Call(ctx context.Context, name string, params map[string]interface{}) (interface{}, error) {
	h, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	return h(ctx, params)
}
