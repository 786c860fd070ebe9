package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cloud-ru/fincalc-go/internal/logger"
	"github.com/cloud-ru/fincalc-go/internal/storage"
)

// ErrScenarioNotFound сохраненного сценария с таким id нет
var ErrScenarioNotFound = errors.New("scenario not found")

// SavedScenario входные параметры расчета, сохраненные для повторного запуска
type SavedScenario struct {
	ID      string                 `json:"id"`
	Tool    string                 `json:"tool"`
	Params  map[string]interface{} `json:"params"`
	SavedAt time.Time              `json:"saved_at"`
}

// LoadedScenario сохраненный сценарий и, по запросу, результат его пересчета
type LoadedScenario struct {
	SavedScenario
	Result interface{} `json:"result,omitempty"`
}

// DeletedScenario ответ на удаление сохраненного сценария
type DeletedScenario struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// SaveScenarioHandler сохраняет параметры расчетного инструмента под новым uuid.
// Параметры проверяются пробным запуском инструмента до записи.
func SaveScenarioHandler(reg *Registry, tracer trace.Tracer, store storage.ScenarioStore) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		ctx, call := begin(ctx, tracer, "save_scenario")

		tool, err := stringParam(params, "tool")
		if err != nil {
			return nil, call.fail(err)
		}
		toolParams, ok := params["params"].(map[string]interface{})
		if !ok {
			return nil, call.fail(invalidParam("params", "ожидается объект"))
		}
		call.span.SetAttributes(attribute.String("target_tool", tool))

		if !reg.isCalculation(tool) {
			return nil, call.fail(invalidParam("tool", fmt.Sprintf("инструмент %q нельзя сохранить", tool)))
		}
		if _, err := reg.Call(ctx, tool, toolParams); err != nil {
			return nil, call.fail(err)
		}

		saved := SavedScenario{
			ID:      uuid.New().String(),
			Tool:    tool,
			Params:  toolParams,
			SavedAt: time.Now().UTC(),
		}
		blob, err := json.Marshal(saved)
		if err != nil {
			return nil, call.fail(fmt.Errorf("encode scenario: %w", err))
		}
		if err := store.Save(ctx, saved.ID, blob); err != nil {
			return nil, call.fail(fmt.Errorf("save scenario: %w", err))
		}

		logger.L().Info("scenario saved", zap.String("id", saved.ID), zap.String("tool", tool))
		call.ok(attribute.String("scenario_id", saved.ID))
		return &saved, nil
	}
}

// LoadScenarioHandler читает сохраненный сценарий; с run=true пересчитывает его
func LoadScenarioHandler(reg *Registry, tracer trace.Tracer, store storage.ScenarioStore) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		ctx, call := begin(ctx, tracer, "load_scenario")

		id, err := stringParam(params, "id")
		if err != nil {
			return nil, call.fail(err)
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, call.fail(invalidParam("id", "ожидается uuid"))
		}
		call.span.SetAttributes(attribute.String("scenario_id", id))

		blob, found, err := store.Load(ctx, id)
		if err != nil {
			return nil, call.fail(fmt.Errorf("load scenario: %w", err))
		}
		if !found {
			call.notFound(attribute.String("scenario_id", id))
			return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
		}

		var out LoadedScenario
		if err := json.Unmarshal(blob, &out.SavedScenario); err != nil {
			return nil, call.fail(fmt.Errorf("decode scenario %s: %w", id, err))
		}

		if run, _ := params["run"].(bool); run {
			result, err := reg.Call(ctx, out.Tool, out.Params)
			if err != nil {
				return nil, call.fail(err)
			}
			out.Result = result
		}

		call.ok(attribute.String("target_tool", out.Tool))
		return &out, nil
	}
}

// DeleteScenarioHandler удаляет сохраненный сценарий
func DeleteScenarioHandler(tracer trace.Tracer, store storage.ScenarioStore) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		ctx, call := begin(ctx, tracer, "delete_scenario")

		id, err := stringParam(params, "id")
		if err != nil {
			return nil, call.fail(err)
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, call.fail(invalidParam("id", "ожидается uuid"))
		}
		call.span.SetAttributes(attribute.String("scenario_id", id))

		_, found, err := store.Load(ctx, id)
		if err != nil {
			return nil, call.fail(fmt.Errorf("load scenario: %w", err))
		}
		if !found {
			call.notFound(attribute.String("scenario_id", id))
			return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
		}
		if err := store.Delete(ctx, id); err != nil {
			return nil, call.fail(fmt.Errorf("delete scenario: %w", err))
		}

		logger.L().Info("scenario deleted", zap.String("id", id))
		call.ok()
		return &DeletedScenario{ID: id, Deleted: true}, nil
	}
}
