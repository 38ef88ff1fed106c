package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antojitos/comanda/internal/model"
	"github.com/antojitos/comanda/internal/store"
)

// ScheduleHandler serves the weekly operating schedule endpoints.
type ScheduleHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewScheduleHandler creates a ScheduleHandler.
func NewScheduleHandler(st *store.Store, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{store: st, logger: logger}
}

type scheduleEntry struct {
	Day       string  `json:"day"`
	Enabled   bool    `json:"enabled"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type scheduleDayError struct {
	Day   string `json:"day"`
	Error string `json:"error"`
}

// Upsert creates or updates a batch of weekday schedules. Per-day failures
// do not abort the batch: a fully failed batch responds 500, a partial one
// 207 with both the stored rows and the per-day errors.
// POST /schedules
func (h *ScheduleHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Schedules []scheduleEntry `json:"schedules"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Schedules) == 0 {
		writeError(w, http.StatusBadRequest, "At least one schedule is required")
		return
	}

	var (
		results   []model.Schedule
		dayErrors []scheduleDayError
	)
	for _, entry := range req.Schedules {
		if entry.Day == "" {
			dayErrors = append(dayErrors, scheduleDayError{Day: entry.Day, Error: "day is required"})
			continue
		}
		sched := model.Schedule{
			Day:       entry.Day,
			Enabled:   entry.Enabled,
			StartTime: entry.StartTime,
			EndTime:   entry.EndTime,
		}
		stored, err := h.store.UpsertSchedule(r.Context(), &sched)
		if err != nil {
			h.logger.Error("upsert schedule failed", "day", entry.Day, "error", err)
			dayErrors = append(dayErrors, scheduleDayError{Day: entry.Day, Error: err.Error()})
			continue
		}
		results = append(results, *stored)
	}

	switch {
	case len(dayErrors) > 0 && len(results) == 0:
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":   "Failed to process schedules",
			"details": dayErrors,
		})
	case len(dayErrors) > 0:
		writeJSON(w, http.StatusMultiStatus, map[string]interface{}{
			"message": "Some schedules were processed",
			"success": results,
			"errors":  dayErrors,
		})
	default:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":   "Schedules stored successfully",
			"schedules": results,
		})
	}
}

// List returns all configured schedules.
// GET /schedules
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.store.ListSchedules(r.Context())
	if err != nil {
		h.logger.Error("list schedules failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching schedules")
		return
	}
	if schedules == nil {
		schedules = []model.Schedule{}
	}
	writeJSON(w, http.StatusOK, schedules)
}

// GetByDay returns the schedule for one weekday.
// GET /schedules/{day}
func (h *ScheduleHandler) GetByDay(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	sched, err := h.store.GetScheduleByDay(r.Context(), day)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No schedule found for day "+day)
			return
		}
		h.logger.Error("get schedule failed", "day", day, "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching schedule")
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

// UpdateByDay updates the schedule for one weekday, which must already
// exist.
// PUT /schedules/{day}
func (h *ScheduleHandler) UpdateByDay(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	if _, err := h.store.GetScheduleByDay(r.Context(), day); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No schedule found for day "+day)
			return
		}
		h.logger.Error("get schedule failed", "day", day, "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching schedule")
		return
	}

	var entry scheduleEntry
	if err := readJSON(r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sched := model.Schedule{
		Day:       day,
		Enabled:   entry.Enabled,
		StartTime: entry.StartTime,
		EndTime:   entry.EndTime,
	}
	stored, err := h.store.UpsertSchedule(r.Context(), &sched)
	if err != nil {
		h.logger.Error("update schedule failed", "day", day, "error", err)
		writeError(w, http.StatusInternalServerError, "Error updating schedule")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Schedule updated successfully",
		"schedule": stored,
	})
}

// DeleteByDay removes the schedule for one weekday.
// DELETE /schedules/{day}
func (h *ScheduleHandler) DeleteByDay(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	if err := h.store.DeleteScheduleByDay(r.Context(), day); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No schedule found for day "+day)
			return
		}
		h.logger.Error("delete schedule failed", "day", day, "error", err)
		writeError(w, http.StatusInternalServerError, "Error deleting schedule")
		return
	}
	writeMessage(w, http.StatusOK, "Schedule for "+day+" deleted successfully")
}
