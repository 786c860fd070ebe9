package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolCalls счетчик вызовов инструментов
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Общее количество вызовов инструментов",
		},
		[]string{"tool_name", "status"},
	)

	// CalculationErrors счетчик ошибок расчетов
	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculation_errors_total",
			Help: "Количество ошибок расчетов",
		},
		[]string{"tool_name", "error_type"},
	)

	// APICalls HTTP-запросы по шаблону маршрута и коду ответа
	APICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_calls_total",
			Help: "Вызовы HTTP API",
		},
		[]string{"service", "endpoint", "status"},
	)

	// ToolDuration длительность выполнения инструментов
	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tool_duration_seconds",
			Help:    "Длительность выполнения инструментов",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"tool_name"},
	)

	// ScheduleLength длина сгенерированных графиков платежей
	ScheduleLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "amortization_schedule_periods",
			Help:    "Число периодов в сгенерированных графиках",
			Buckets: []float64{12, 60, 120, 180, 240, 300, 360, 480},
		},
	)

	// StoreOperations операции с хранилищем сценариев
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenario_store_operations_total",
			Help: "Операции с хранилищем сохраненных сценариев",
		},
		[]string{"backend", "operation", "status"},
	)
)
