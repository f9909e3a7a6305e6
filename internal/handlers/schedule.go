package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hsinyuliao/salonbook/internal/auth"
	"github.com/hsinyuliao/salonbook/internal/schedule"
	"github.com/hsinyuliao/salonbook/internal/storage"
)

// DefaultConfigID is the id of the live schedule configuration row seeded
// by the initial migration.
const DefaultConfigID = "default"

type ScheduleHandler struct {
	schedules *storage.ScheduleRepository
	logger    *slog.Logger
}

func NewScheduleHandler(schedules *storage.ScheduleRepository, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, logger: logger}
}

// Get returns the shared schedule configuration; every authenticated role
// may read it.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := h.schedules.Get(r.Context(), DefaultConfigID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "schedule configuration not found", http.StatusNotFound)
			return
		}
		h.logger.Error("schedule config read failed", "err", err)
		http.Error(w, "failed to read schedule configuration", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, viewOfConfig(cfg))
}

func (h *ScheduleHandler) Patch(w http.ResponseWriter, r *http.Request) {
	configID := strings.TrimSpace(r.PathValue("id"))
	if configID == "" {
		http.Error(w, "schedule configuration id is required", http.StatusBadRequest)
		return
	}

	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authentication token", http.StatusUnauthorized)
		return
	}

	var patch schedule.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	authorized, err := schedule.Authorize(patch, id.Role)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrNoContent):
			http.Error(w, "no reserved time slots provided", http.StatusBadRequest)
		case errors.Is(err, schedule.ErrForbidden):
			http.Error(w, "you do not have permission to update the schedule", http.StatusForbidden)
		default:
			h.logger.Error("schedule patch authorization failed", "err", err)
			http.Error(w, "failed to update schedule configuration", http.StatusInternalServerError)
		}
		return
	}

	cfg, err := h.schedules.Apply(r.Context(), configID, authorized)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "schedule configuration not found", http.StatusNotFound)
			return
		}
		h.logger.Error("schedule config update failed", "err", err)
		http.Error(w, "failed to update schedule configuration", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, viewOfConfig(cfg))
}
