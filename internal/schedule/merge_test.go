package schedule

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hsinyuliao/salonbook/internal/model"
)

func strptr(s string) *string { return &s }

func TestAuthorizeAdmin(t *testing.T) {
	p := Patch{
		UnavailableTimeSlots: json.RawMessage(`[{"date":"2025-06-01"}]`),
		LastBookableDate:     strptr("2025-12-31"),
		ReservedTimeSlots:    json.RawMessage(`["sneaky"]`),
	}
	got, err := Authorize(p, model.RoleAdmin)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if string(got.UnavailableTimeSlots) != `[{"date":"2025-06-01"}]` {
		t.Fatalf("unavailable slots not kept: %s", got.UnavailableTimeSlots)
	}
	if got.LastBookableDate == nil || *got.LastBookableDate != "2025-12-31" {
		t.Fatalf("last bookable date not kept: %v", got.LastBookableDate)
	}
	if got.ReservedTimeSlots != nil {
		t.Fatal("admin patch must drop reserved slots")
	}
}

func TestAuthorizeAdminPartialPatch(t *testing.T) {
	got, err := Authorize(Patch{LastBookableDate: strptr("2026-01-31")}, model.RoleAdmin)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if got.UnavailableTimeSlots != nil {
		t.Fatal("absent field must stay absent")
	}
	if got.LastBookableDate == nil || *got.LastBookableDate != "2026-01-31" {
		t.Fatalf("last bookable date not kept: %v", got.LastBookableDate)
	}
}

func TestAuthorizeUser(t *testing.T) {
	p := Patch{
		UnavailableTimeSlots: json.RawMessage(`["blocked"]`),
		ReservedTimeSlots:    json.RawMessage(`[{"date":"2025-06-01","timeSlot":"10:00～11:00"}]`),
	}
	got, err := Authorize(p, model.RoleUser)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if got.UnavailableTimeSlots != nil || got.LastBookableDate != nil {
		t.Fatal("user patch must drop admin-owned fields")
	}
	if string(got.ReservedTimeSlots) != `[{"date":"2025-06-01","timeSlot":"10:00～11:00"}]` {
		t.Fatalf("reserved slots not kept: %s", got.ReservedTimeSlots)
	}
}

func TestAuthorizeUserNoContent(t *testing.T) {
	// Admin-only fields alone leave a user patch empty: NoContent, and the
	// stored admin fields must remain untouched (nothing is authorized).
	cases := []Patch{
		{},
		{ReservedTimeSlots: json.RawMessage(`null`)},
		{UnavailableTimeSlots: json.RawMessage(`["2025-06-01"]`)},
		{LastBookableDate: strptr("2025-12-31")},
	}
	for i, p := range cases {
		if _, err := Authorize(p, model.RoleUser); !errors.Is(err, ErrNoContent) {
			t.Fatalf("case %d: expected ErrNoContent, got %v", i, err)
		}
	}
}

func TestAuthorizeUnknownRole(t *testing.T) {
	p := Patch{ReservedTimeSlots: json.RawMessage(`[]`)}
	if _, err := Authorize(p, model.Role("staff")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMergePreservesUnownedFields(t *testing.T) {
	current := model.ScheduleConfig{
		ID:                   "default",
		UnavailableTimeSlots: json.RawMessage(`["2025-06-05"]`),
		LastBookableDate:     "2025-11-30",
		ReservedTimeSlots:    json.RawMessage(`[]`),
	}

	// Admin sets the horizon while a user writes holds; applying both
	// patches in either order keeps both changes.
	adminPatch, err := Authorize(Patch{LastBookableDate: strptr("2025-12-31")}, model.RoleAdmin)
	if err != nil {
		t.Fatalf("admin Authorize: %v", err)
	}
	userPatch, err := Authorize(Patch{ReservedTimeSlots: json.RawMessage(`["held"]`)}, model.RoleUser)
	if err != nil {
		t.Fatalf("user Authorize: %v", err)
	}

	afterA := Merge(Merge(current, adminPatch), userPatch)
	afterB := Merge(Merge(current, userPatch), adminPatch)

	for _, got := range []model.ScheduleConfig{afterA, afterB} {
		if got.LastBookableDate != "2025-12-31" {
			t.Fatalf("admin write lost: %+v", got)
		}
		if string(got.ReservedTimeSlots) != `["held"]` {
			t.Fatalf("user write lost: %+v", got)
		}
		if string(got.UnavailableTimeSlots) != `["2025-06-05"]` {
			t.Fatalf("untouched field changed: %+v", got)
		}
	}
}
