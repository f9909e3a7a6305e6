package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hsinyuliao/salonbook/internal/auth"
	"github.com/hsinyuliao/salonbook/internal/model"
	"github.com/hsinyuliao/salonbook/internal/outbox"
	"github.com/hsinyuliao/salonbook/internal/token"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolptr(b bool) *bool { return &b }

func completeBookRequest() bookRequest {
	return bookRequest{
		Date:          "2025-06-01",
		TimeSlot:      "10:00～11:00",
		BodyPart:      "hands",
		NailRemoval:   boolptr(false),
		NailExtension: boolptr(true),
		Name:          "Mei Lin",
		Birthday:      "1995-03-12",
		Email:         "mei@example.com",
		Phone:         "0911222333",
		LineID:        "mei_lin",
	}
}

func TestBookRequestValidate(t *testing.T) {
	req := completeBookRequest()
	if msg := req.validate(); msg != "" {
		t.Fatalf("complete request rejected: %s", msg)
	}

	mutations := map[string]func(*bookRequest){
		"missing date":            func(r *bookRequest) { r.Date = "" },
		"whitespace date":         func(r *bookRequest) { r.Date = "   " },
		"missing time slot":       func(r *bookRequest) { r.TimeSlot = "" },
		"missing body part":       func(r *bookRequest) { r.BodyPart = "" },
		"missing name":            func(r *bookRequest) { r.Name = "" },
		"missing birthday":        func(r *bookRequest) { r.Birthday = "" },
		"missing email":           func(r *bookRequest) { r.Email = "" },
		"missing phone":           func(r *bookRequest) { r.Phone = "" },
		"missing line id":         func(r *bookRequest) { r.LineID = "" },
		"absent removal flag":     func(r *bookRequest) { r.NailRemoval = nil },
		"absent extension flag":   func(r *bookRequest) { r.NailExtension = nil },
		"malformed date":          func(r *bookRequest) { r.Date = "06/01/2025" },
		"non-canonical time slot": func(r *bookRequest) { r.TimeSlot = "10:00-11:00" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			r := completeBookRequest()
			mutate(&r)
			if msg := r.validate(); msg == "" {
				t.Fatal("expected validation failure")
			}
		})
	}
}

func TestBookRequestExplicitFalseFlagsAreValid(t *testing.T) {
	req := completeBookRequest()
	req.NailRemoval = boolptr(false)
	req.NailExtension = boolptr(false)
	if msg := req.validate(); msg != "" {
		t.Fatalf("explicit false flags rejected: %s", msg)
	}
}

// nopTx satisfies the transaction surface the booking path touches;
// everything else panics through the nil embedded interface.
type nopTx struct{ pgx.Tx }

func (nopTx) Commit(context.Context) error   { return nil }
func (nopTx) Rollback(context.Context) error { return nil }

// memoryAppointmentStore enforces the same slot uniqueness the database
// index does, keyed by (date, time slot).
type memoryAppointmentStore struct {
	booked map[string]model.Appointment
	// blindPreCheck makes SlotTaken report free slots unconditionally,
	// simulating a concurrent booker winning between check and insert.
	blindPreCheck bool
}

func slotKey(date, timeSlot string) string { return date + "|" + timeSlot }

func (s *memoryAppointmentStore) Begin(context.Context) (pgx.Tx, error) { return nopTx{}, nil }

func (s *memoryAppointmentStore) SlotTaken(_ context.Context, _ pgx.Tx, date, timeSlot string) (bool, error) {
	if s.blindPreCheck {
		return false, nil
	}
	_, taken := s.booked[slotKey(date, timeSlot)]
	return taken, nil
}

func (s *memoryAppointmentStore) CreateTx(_ context.Context, _ pgx.Tx, a *model.Appointment) error {
	key := slotKey(a.Date, a.TimeSlot)
	if _, taken := s.booked[key]; taken {
		return &pgconn.PgError{Code: "23505"}
	}
	a.CreatedAt = time.Now()
	s.booked[key] = *a
	return nil
}

func (s *memoryAppointmentStore) List(context.Context) ([]model.Appointment, error) {
	out := make([]model.Appointment, 0, len(s.booked))
	for _, a := range s.booked {
		out = append(out, a)
	}
	return out, nil
}

type recordingOutbox struct {
	events []outbox.Event
}

func (o *recordingOutbox) Insert(_ context.Context, _ pgx.Tx, evt outbox.Event) error {
	o.events = append(o.events, evt)
	return nil
}

func bookVia(t *testing.T, h http.Handler, bearer string, req bookRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, "/appointment", bytes.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+bearer)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestBookRejectsTakenSlot(t *testing.T) {
	codec := token.NewCodec("test-secret")
	store := &memoryAppointmentStore{booked: map[string]model.Appointment{}}
	events := &recordingOutbox{}
	h := auth.RequireAuth(codec, testLogger())(NewAppointmentHandler(store, events, testLogger()))

	first, err := codec.Issue("m-1", model.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := codec.Issue("m-2", model.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if rec := bookVia(t, h, first, completeBookRequest()); rec.Code != http.StatusCreated {
		t.Fatalf("first booking: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec := bookVia(t, h, second, completeBookRequest()); rec.Code != http.StatusConflict {
		t.Fatalf("second booking of same slot: expected 409, got %d", rec.Code)
	}

	// A different slot on the same day is still free.
	other := completeBookRequest()
	other.TimeSlot = "11:00～12:00"
	if rec := bookVia(t, h, second, other); rec.Code != http.StatusCreated {
		t.Fatalf("different slot: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Only the successful bookings queued an integration event.
	if len(events.events) != 2 {
		t.Fatalf("expected 2 outbox events, got %d", len(events.events))
	}
	for _, evt := range events.events {
		if evt.EventType != outbox.EventAppointmentBooked {
			t.Fatalf("unexpected event type %q", evt.EventType)
		}
	}
}

func TestBookConflictSurvivesPreCheckRace(t *testing.T) {
	codec := token.NewCodec("test-secret")
	store := &memoryAppointmentStore{booked: map[string]model.Appointment{}, blindPreCheck: true}
	h := auth.RequireAuth(codec, testLogger())(NewAppointmentHandler(store, &recordingOutbox{}, testLogger()))

	bearer, err := codec.Issue("m-1", model.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if rec := bookVia(t, h, bearer, completeBookRequest()); rec.Code != http.StatusCreated {
		t.Fatalf("first booking: expected 201, got %d", rec.Code)
	}
	// The pre-check saw the slot as free; the store's uniqueness check must
	// still turn the insert into a conflict.
	if rec := bookVia(t, h, bearer, completeBookRequest()); rec.Code != http.StatusConflict {
		t.Fatalf("raced booking: expected 409, got %d", rec.Code)
	}
}

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"", 0, 0},
		{"page=2", 0, 0}, // page without pageSize is meaningless
		{"pageSize=10", 1, 10},
		{"page=3&pageSize=10", 3, 10},
		{"page=0&pageSize=10", 1, 10},
		{"page=-1&pageSize=10", 1, 10},
		{"page=abc&pageSize=10", 1, 10},
		{"pageSize=abc", 0, 0},
		{"pageSize=0", 0, 0},
		{"pageSize=-5", 0, 0},
	}
	for _, tc := range tests {
		r := httptest.NewRequest("GET", "/appointment?"+tc.query, nil)
		page, pageSize := parsePageParams(r)
		if page != tc.wantPage || pageSize != tc.wantPageSize {
			t.Fatalf("query %q: got (%d,%d), want (%d,%d)",
				tc.query, page, pageSize, tc.wantPage, tc.wantPageSize)
		}
	}
}
