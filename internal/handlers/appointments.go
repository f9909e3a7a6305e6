package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hsinyuliao/salonbook/internal/auth"
	"github.com/hsinyuliao/salonbook/internal/ledger"
	"github.com/hsinyuliao/salonbook/internal/model"
	"github.com/hsinyuliao/salonbook/internal/outbox"
	"github.com/hsinyuliao/salonbook/internal/slots"
	"github.com/hsinyuliao/salonbook/internal/storage"
)

// appointmentStore is the slice of the appointment repository the handler
// needs.
type appointmentStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	SlotTaken(ctx context.Context, tx pgx.Tx, date, timeSlot string) (bool, error)
	CreateTx(ctx context.Context, tx pgx.Tx, a *model.Appointment) error
	List(ctx context.Context) ([]model.Appointment, error)
}

type eventRecorder interface {
	Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) error
}

type AppointmentHandler struct {
	appts  appointmentStore
	outbox eventRecorder
	logger *slog.Logger
}

func NewAppointmentHandler(appts appointmentStore, outboxRepo eventRecorder, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{appts: appts, outbox: outboxRepo, logger: logger}
}

// ServeHTTP dispatches the /appointment collection: GET lists, POST books.
func (h *AppointmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.book(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type listResponse struct {
	Items    []appointmentView `json:"items"`
	PageInfo ledger.PageInfo   `json:"pageInfo"`
}

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authentication token", http.StatusUnauthorized)
		return
	}

	page, pageSize := parsePageParams(r)

	all, err := h.appts.List(r.Context())
	if err != nil {
		h.logger.Error("appointment list failed", "err", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	visible := ledger.VisibleTo(all, id.SubjectID, id.Role)
	ledger.SortForListing(visible)
	pageItems, info := ledger.Paginate(visible, page, pageSize)

	items := make([]appointmentView, 0, len(pageItems))
	for _, a := range pageItems {
		items = append(items, viewOfAppointment(a))
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, PageInfo: info})
}

// parsePageParams reads page/pageSize from the query. Absent or unusable
// values mean "no pagination requested"; a page without a pageSize has
// nothing to cut against and is ignored too.
func parsePageParams(r *http.Request) (page, pageSize int) {
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("pageSize")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageSize = n
		}
	}
	if pageSize == 0 {
		return 0, 0
	}
	page = 1
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	return page, pageSize
}

type bookRequest struct {
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
	BodyPart string `json:"bodyPart"`
	// Pointers distinguish an explicit false from an absent flag; both
	// flags must be present for a booking to be complete.
	NailRemoval   *bool  `json:"nailRemoval"`
	NailExtension *bool  `json:"nailExtension"`
	Name          string `json:"name"`
	Birthday      string `json:"birthday"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LineID        string `json:"lineId"`
}

func (req *bookRequest) validate() string {
	req.Date = strings.TrimSpace(req.Date)
	req.TimeSlot = strings.TrimSpace(req.TimeSlot)
	req.BodyPart = strings.TrimSpace(req.BodyPart)
	req.Name = strings.TrimSpace(req.Name)
	req.Birthday = strings.TrimSpace(req.Birthday)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.LineID = strings.TrimSpace(req.LineID)

	if req.Date == "" || req.TimeSlot == "" || req.BodyPart == "" ||
		req.Name == "" || req.Birthday == "" || req.Email == "" ||
		req.Phone == "" || req.LineID == "" ||
		req.NailRemoval == nil || req.NailExtension == nil {
		return "incomplete booking request (date, time slot, service, contact details and add-on flags are required)"
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return "date must be formatted YYYY-MM-DD"
	}
	if !slots.IsCanonical(req.TimeSlot) {
		return "unknown time slot (expected one of " + strings.Join(slots.Canonical(), ", ") + ")"
	}
	return ""
}

func (h *AppointmentHandler) book(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authentication token", http.StatusUnauthorized)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	appt := model.Appointment{
		ID:            uuid.NewString(),
		OwnerID:       id.SubjectID,
		Date:          req.Date,
		TimeSlot:      req.TimeSlot,
		BodyPart:      req.BodyPart,
		NailRemoval:   *req.NailRemoval,
		NailExtension: *req.NailExtension,
		Name:          req.Name,
		Birthday:      req.Birthday,
		Email:         req.Email,
		Phone:         req.Phone,
		LineID:        req.LineID,
	}

	ctx := r.Context()
	tx, err := h.appts.Begin(ctx)
	if err != nil {
		h.logger.Error("begin failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	taken, err := h.appts.SlotTaken(ctx, tx, appt.Date, appt.TimeSlot)
	if err != nil {
		h.logger.Error("slot check failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}
	if taken {
		http.Error(w, "time slot already booked", http.StatusConflict)
		return
	}

	if err := h.appts.CreateTx(ctx, tx, &appt); err != nil {
		// A concurrent booker can still win between the check and this
		// insert; the unique index reports it as a conflict.
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		h.logger.Error("appointment insert failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"owner_id":       appt.OwnerID,
		"date":           appt.Date,
		"time_slot":      appt.TimeSlot,
		"email":          appt.Email,
		"phone":          appt.Phone,
		"line_id":        appt.LineID,
	})
	if err != nil {
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}
	if err := h.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentBooked,
		Payload:       payload,
	}); err != nil {
		h.logger.Error("outbox insert failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("commit failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"appointment": viewOfAppointment(appt)})
}
