package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/neexbeast/weather-trip-planner/internal/forecast"
	"github.com/neexbeast/weather-trip-planner/internal/planner"
)

const maxBodyBytes = 64 << 10

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	planner TripPlanner
	repo    ReportRepo
	cache   ReportCache
	log     *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(p TripPlanner, repo ReportRepo, cache ReportCache, log *slog.Logger) *Handlers {
	return &Handlers{
		planner: p,
		repo:    repo,
		cache:   cache,
		log:     log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// CreatePlan handles POST /api/v1/plans.
// Runs the planner, which stores the report, then primes the cache.
func (h *Handlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("plan failed", "cities", req.Cities, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to plan trips")
		return
	}

	if err := h.cache.SetReport(r.Context(), report); err != nil {
		h.log.Warn("cache set failed after plan", "report_id", report.ID, "err", err)
	}

	writeJSON(w, http.StatusOK, report)
}

// GetPlan handles GET /api/v1/plans/{id}.
// Cache hit → return. DB hit → cache + return. Neither → 404.
func (h *Handlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed report id")
		return
	}

	cached, err := h.cache.GetReport(r.Context(), id.String())
	if err != nil {
		h.log.Error("cache get failed", "report_id", id, "err", err)
	}
	if cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := h.repo.GetReport(r.Context(), id)
	if err != nil {
		h.log.Error("db get failed", "report_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	if err := h.cache.SetReport(r.Context(), report); err != nil {
		h.log.Warn("cache set failed after db hit", "report_id", id, "err", err)
	}

	writeJSON(w, http.StatusOK, report)
}

// ListPlans handles GET /api/v1/plans?city=<name>&limit=<n>.
func (h *Handlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	reports, err := h.repo.ListReports(r.Context(), city, limit)
	if err != nil {
		h.log.Error("db list failed", "city", city, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

func isValidationError(err error) bool {
	return errors.Is(err, forecast.ErrInvalidNights) ||
		errors.Is(err, planner.ErrInvalidMaxPrice) ||
		errors.Is(err, planner.ErrNoCities)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis connectivity.
// Returns 200 if both answer, 503 otherwise.
func HealthHandlerFunc(db, redis pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
