// Package handlers wires the transport boundary: JSON request/response
// shapes, the status-code contract, and the calls into storage.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hsinyuliao/salonbook/internal/model"
)

// memberView is the client-facing member shape; it never carries the
// password credential.
type memberView struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday"`
	LineID   string `json:"lineId"`
}

func viewOfMember(m model.Member) memberView {
	return memberView{
		ID:       m.ID,
		Role:     string(m.Role),
		Name:     m.Name,
		Email:    m.Email,
		Phone:    m.Phone,
		Birthday: m.Birthday,
		LineID:   m.LineID,
	}
}

type appointmentView struct {
	ID            string `json:"id"`
	OwnerID       string `json:"ownerId"`
	Date          string `json:"date"`
	TimeSlot      string `json:"timeSlot"`
	BodyPart      string `json:"bodyPart"`
	NailRemoval   bool   `json:"nailRemoval"`
	NailExtension bool   `json:"nailExtension"`
	Name          string `json:"name"`
	Birthday      string `json:"birthday"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LineID        string `json:"lineId"`
	CreatedAt     string `json:"createdAt"`
}

func viewOfAppointment(a model.Appointment) appointmentView {
	return appointmentView{
		ID:            a.ID,
		OwnerID:       a.OwnerID,
		Date:          a.Date,
		TimeSlot:      a.TimeSlot,
		BodyPart:      a.BodyPart,
		NailRemoval:   a.NailRemoval,
		NailExtension: a.NailExtension,
		Name:          a.Name,
		Birthday:      a.Birthday,
		Email:         a.Email,
		Phone:         a.Phone,
		LineID:        a.LineID,
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type scheduleConfigView struct {
	ID                   string          `json:"id"`
	UnavailableTimeSlots json.RawMessage `json:"unavailableTimeSlots"`
	LastBookableDate     string          `json:"lastBookableDate"`
	ReservedTimeSlots    json.RawMessage `json:"reservedTimeSlots"`
	UpdatedAt            string          `json:"updatedAt"`
}

func viewOfConfig(cfg model.ScheduleConfig) scheduleConfigView {
	return scheduleConfigView{
		ID:                   cfg.ID,
		UnavailableTimeSlots: cfg.UnavailableTimeSlots,
		LastBookableDate:     cfg.LastBookableDate,
		ReservedTimeSlots:    cfg.ReservedTimeSlots,
		UpdatedAt:            cfg.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
