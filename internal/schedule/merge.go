// Package schedule implements the role-partitioned update rule for the
// shared schedule configuration. Two roles write disjoint field subsets of
// one record; a patch only ever touches the fields its role owns and
// actually submitted, so concurrent writers cannot clobber each other.
package schedule

import (
	"encoding/json"
	"errors"

	"github.com/hsinyuliao/salonbook/internal/model"
)

var (
	// ErrNoContent: a user patch carried none of the fields users own.
	ErrNoContent = errors.New("no reserved time slots submitted")
	// ErrForbidden: the requester role owns no schedule configuration field.
	ErrForbidden = errors.New("role may not update schedule configuration")
)

// Patch is the wire shape of a schedule configuration update. A nil (or
// JSON null) field was not submitted. Slot structures pass through opaquely.
type Patch struct {
	UnavailableTimeSlots json.RawMessage `json:"unavailableTimeSlots,omitempty"`
	LastBookableDate     *string         `json:"lastBookableDate,omitempty"`
	ReservedTimeSlots    json.RawMessage `json:"reservedTimeSlots,omitempty"`
}

func submitted(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// Authorize reduces a patch to the fields the role owns and submitted.
// Fields the role does not own are dropped rather than rejected. A user
// patch with nothing left to apply fails with ErrNoContent, and an unknown
// role always fails with ErrForbidden.
func Authorize(p Patch, role model.Role) (Patch, error) {
	switch role {
	case model.RoleAdmin:
		out := Patch{}
		if role.CanWriteConfigField(model.FieldUnavailableTimeSlots) && submitted(p.UnavailableTimeSlots) {
			out.UnavailableTimeSlots = p.UnavailableTimeSlots
		}
		if role.CanWriteConfigField(model.FieldLastBookableDate) && p.LastBookableDate != nil {
			out.LastBookableDate = p.LastBookableDate
		}
		return out, nil
	case model.RoleUser:
		if !submitted(p.ReservedTimeSlots) {
			return Patch{}, ErrNoContent
		}
		return Patch{ReservedTimeSlots: p.ReservedTimeSlots}, nil
	default:
		return Patch{}, ErrForbidden
	}
}

// Merge overlays an authorized patch onto the current record, leaving every
// unsubmitted field untouched. The store applies the same overlay as a
// column-scoped UPDATE; this in-memory form defines the semantics.
func Merge(current model.ScheduleConfig, p Patch) model.ScheduleConfig {
	if submitted(p.UnavailableTimeSlots) {
		current.UnavailableTimeSlots = p.UnavailableTimeSlots
	}
	if p.LastBookableDate != nil {
		current.LastBookableDate = *p.LastBookableDate
	}
	if submitted(p.ReservedTimeSlots) {
		current.ReservedTimeSlots = p.ReservedTimeSlots
	}
	return current
}
