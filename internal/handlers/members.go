package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hsinyuliao/salonbook/internal/auth"
	"github.com/hsinyuliao/salonbook/internal/model"
	"github.com/hsinyuliao/salonbook/internal/storage"
)

type MemberHandler struct {
	members *storage.MemberRepository
	logger  *slog.Logger
}

func NewMemberHandler(members *storage.MemberRepository, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{members: members, logger: logger}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authentication token", http.StatusUnauthorized)
		return
	}
	if id.Role != model.RoleAdmin {
		http.Error(w, "you do not have permission to view members", http.StatusForbidden)
		return
	}

	members, err := h.members.List(r.Context())
	if err != nil {
		h.logger.Error("member list failed", "err", err)
		http.Error(w, "failed to list members", http.StatusInternalServerError)
		return
	}

	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, viewOfMember(m))
	}
	writeJSON(w, http.StatusOK, views)
}

type memberPatchRequest struct {
	Name     *string `json:"name"`
	Birthday *string `json:"birthday"`
	Phone    *string `json:"phone"`
	LineID   *string `json:"lineId"`
	Email    *string `json:"email"`
}

// Patch updates a member record. Only the target member or an admin may
// write, and only the listed fields are patchable; anything else in the
// body is ignored.
func (h *MemberHandler) Patch(w http.ResponseWriter, r *http.Request) {
	targetID := strings.TrimSpace(r.PathValue("id"))
	if targetID == "" {
		http.Error(w, "member id is required", http.StatusBadRequest)
		return
	}

	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authentication token", http.StatusUnauthorized)
		return
	}
	if id.Role != model.RoleAdmin && id.SubjectID != targetID {
		http.Error(w, "you may only update your own profile", http.StatusForbidden)
		return
	}

	var req memberPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		if trimmed == "" {
			http.Error(w, "email must not be empty", http.StatusBadRequest)
			return
		}
		req.Email = &trimmed
	}

	current, err := h.members.GetByID(r.Context(), targetID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		h.logger.Error("member lookup failed", "err", err)
		http.Error(w, "failed to update member", http.StatusInternalServerError)
		return
	}

	patch := storage.MemberPatch{
		Name:     req.Name,
		Birthday: req.Birthday,
		Phone:    req.Phone,
		LineID:   req.LineID,
		Email:    req.Email,
	}
	if patch.Empty() {
		writeJSON(w, http.StatusOK, viewOfMember(current))
		return
	}

	updated, err := h.members.Update(r.Context(), targetID, patch)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "email already registered", http.StatusBadRequest)
			return
		}
		h.logger.Error("member update failed", "err", err)
		http.Error(w, "failed to update member", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, viewOfMember(updated))
}
