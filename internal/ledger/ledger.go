// Package ledger holds the listing semantics of the appointment ledger:
// who sees which appointments, in what order, and how pages are cut.
package ledger

import (
	"sort"

	"github.com/hsinyuliao/salonbook/internal/model"
	"github.com/hsinyuliao/salonbook/internal/slots"
)

// VisibleTo filters the ledger for a requester. Admins see everything,
// users only their own bookings.
func VisibleTo(appts []model.Appointment, subjectID string, role model.Role) []model.Appointment {
	if role == model.RoleAdmin {
		return appts
	}
	out := make([]model.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.OwnerID == subjectID {
			out = append(out, a)
		}
	}
	return out
}

// SortForListing orders newest date first; within a date, slots sort by
// their end marker ascending. Both keys are zero-padded strings, so plain
// string comparison is chronological.
func SortForListing(appts []model.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date > appts[j].Date
		}
		return slots.EndMarker(appts[i].TimeSlot) < slots.EndMarker(appts[j].TimeSlot)
	})
}

type PageInfo struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
}

// Paginate cuts one page out of an already filtered and sorted listing.
// pageSize <= 0 means pagination was not requested: the whole listing comes
// back as a single page. An out-of-range page yields an empty (non-nil)
// items slice, not an error.
func Paginate(appts []model.Appointment, page, pageSize int) ([]model.Appointment, PageInfo) {
	total := len(appts)
	if pageSize <= 0 {
		return appts, PageInfo{CurrentPage: 1, TotalPages: 1, TotalItems: total}
	}

	info := PageInfo{
		CurrentPage: page,
		TotalPages:  (total + pageSize - 1) / pageSize,
		TotalItems:  total,
	}
	if page < 1 {
		info.CurrentPage = 1
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []model.Appointment{}, info
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return appts[start:end], info
}
