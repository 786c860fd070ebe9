// Package server публикует инструменты калькулятора по HTTP.
//
// Маршруты:
//
//	GET  /healthz              проверка живости
//	GET  /metrics              метрики Prometheus
//	GET  /api/tools            каталог инструментов
//	POST /api/tools/{name}     вызов инструмента, тело запроса - JSON-параметры
//	GET  /api/rate-structures  сетки ставок из конфигурации
//
// Ошибки ввода отдаются как 400, неизвестный инструмент или сценарий как 404.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloud-ru/fincalc-go/internal/calculations"
	"github.com/cloud-ru/fincalc-go/internal/config"
	"github.com/cloud-ru/fincalc-go/internal/logger"
	"github.com/cloud-ru/fincalc-go/internal/tools"
	"github.com/cloud-ru/fincalc-go/internal/validators"
)

const maxBodyBytes = 1 << 20

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RateStructureDTO именованная сетка ставок в ответе API
type RateStructureDTO struct {
	Name  string                        `json:"name"`
	Tiers []calculations.TierDefinition `json:"tiers"`
}

// Handler держит зависимости HTTP-обработчиков
type Handler struct {
	registry   *tools.Registry
	structures map[string][]calculations.TierDefinition
}

func NewHandler(registry *tools.Registry, structures map[string][]calculations.TierDefinition) *Handler {
	return &Handler{registry: registry, structures: structures}
}

// NewRouter собирает роутер со всеми маршрутами и middleware.
// limiter может быть nil.
func NewRouter(cfg *config.Config, h *Handler, limiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger.L()))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Get("/tools", h.ListTools)
		r.Post("/tools/{name}", h.CallTool)
		r.Get("/rate-structures", h.ListRateStructures)
	})

	return r
}

// NewHTTPServer оборачивает роутер в http.Server с таймаутами
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.List())
}

func (h *Handler) CallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	params := map[string]interface{}{}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	result, err := h.registry.Call(r.Context(), name, params)
	if err != nil {
		status := statusFor(err)
		writeError(w, status, http.StatusText(status), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ListRateStructures(w http.ResponseWriter, r *http.Request) {
	out := make([]RateStructureDTO, 0, len(h.structures))
	for name, tiers := range h.structures {
		out = append(out, RateStructureDTO{Name: name, Tiers: tiers})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tools.ErrUnknownTool), errors.Is(err, tools.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, validators.ErrValidation), calculations.IsInputError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
