package ledger

import (
	"testing"

	"github.com/hsinyuliao/salonbook/internal/model"
)

func appt(id, owner, date, slot string) model.Appointment {
	return model.Appointment{ID: id, OwnerID: owner, Date: date, TimeSlot: slot}
}

func TestVisibleTo(t *testing.T) {
	all := []model.Appointment{
		appt("a1", "u1", "2025-06-01", "10:00～11:00"),
		appt("a2", "u2", "2025-06-01", "11:00～12:00"),
		appt("a3", "u1", "2025-06-02", "10:00～11:00"),
	}

	mine := VisibleTo(all, "u1", model.RoleUser)
	if len(mine) != 2 {
		t.Fatalf("user: expected 2 appointments, got %d", len(mine))
	}
	for _, a := range mine {
		if a.OwnerID != "u1" {
			t.Fatalf("user sees foreign appointment %q", a.ID)
		}
	}

	if got := VisibleTo(all, "u1", model.RoleAdmin); len(got) != len(all) {
		t.Fatalf("admin: expected %d appointments, got %d", len(all), len(got))
	}

	if got := VisibleTo(all, "u3", model.RoleUser); len(got) != 0 {
		t.Fatalf("stranger: expected empty listing, got %d", len(got))
	}
}

func TestSortForListing(t *testing.T) {
	appts := []model.Appointment{
		appt("a1", "u1", "2025-06-01", "10:00～11:00"),
		appt("a2", "u1", "2025-06-02", "11:00～12:00"),
		appt("a3", "u1", "2025-06-02", "10:00～11:00"),
		appt("a4", "u1", "2025-06-03", "15:00～16:00"),
	}

	SortForListing(appts)

	want := []string{"a4", "a3", "a2", "a1"}
	for i, id := range want {
		if appts[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s (order %v)", i, id, appts[i].ID, ids(appts))
		}
	}
}

func ids(appts []model.Appointment) []string {
	out := make([]string, len(appts))
	for i, a := range appts {
		out[i] = a.ID
	}
	return out
}

func TestPaginate(t *testing.T) {
	five := make([]model.Appointment, 5)
	for i := range five {
		five[i].ID = string(rune('a' + i))
	}

	tests := []struct {
		name      string
		page      int
		pageSize  int
		wantLen   int
		wantInfo  PageInfo
		wantFirst string
	}{
		{"no pagination", 0, 0, 5, PageInfo{1, 1, 5}, "a"},
		{"first page", 1, 2, 2, PageInfo{1, 3, 5}, "a"},
		{"middle page", 2, 2, 2, PageInfo{2, 3, 5}, "c"},
		{"short last page", 3, 2, 1, PageInfo{3, 3, 5}, "e"},
		{"out of range", 3, 10, 0, PageInfo{3, 1, 5}, ""},
		{"zero page clamps", 0, 2, 2, PageInfo{1, 3, 5}, "a"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, info := Paginate(five, tc.page, tc.pageSize)
			if len(items) != tc.wantLen {
				t.Fatalf("expected %d items, got %d", tc.wantLen, len(items))
			}
			if items == nil {
				t.Fatal("items must not be nil")
			}
			if info != tc.wantInfo {
				t.Fatalf("expected info %+v, got %+v", tc.wantInfo, info)
			}
			if tc.wantFirst != "" && items[0].ID != tc.wantFirst {
				t.Fatalf("expected first item %q, got %q", tc.wantFirst, items[0].ID)
			}
		})
	}
}

func TestPaginateEmptyLedger(t *testing.T) {
	items, info := Paginate(nil, 1, 10)
	if len(items) != 0 || info.TotalItems != 0 || info.TotalPages != 0 {
		t.Fatalf("unexpected result: items=%v info=%+v", items, info)
	}
}
