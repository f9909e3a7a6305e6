package model

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Known() bool {
	return r == RoleAdmin || r == RoleUser
}

// ConfigField names a writable field of the schedule configuration. Each
// role owns a disjoint subset; ownership is checked once, not per endpoint.
type ConfigField string

const (
	FieldUnavailableTimeSlots ConfigField = "unavailableTimeSlots"
	FieldLastBookableDate     ConfigField = "lastBookableDate"
	FieldReservedTimeSlots    ConfigField = "reservedTimeSlots"
)

// CanWriteConfigField reports whether the role owns the given schedule
// configuration field. Admins own the blackout slots and the booking
// horizon; users own only their provisional holds.
func (r Role) CanWriteConfigField(f ConfigField) bool {
	switch r {
	case RoleAdmin:
		return f == FieldUnavailableTimeSlots || f == FieldLastBookableDate
	case RoleUser:
		return f == FieldReservedTimeSlots
	default:
		return false
	}
}

type Member struct {
	ID           string
	Role         Role
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Birthday     string
	LineID       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Appointment is immutable once stored. The contact fields are a snapshot
// taken at booking time, not a reference into the member record.
type Appointment struct {
	ID            string
	OwnerID       string
	Date          string // YYYY-MM-DD
	TimeSlot      string // e.g. "10:00～11:00"
	BodyPart      string
	NailRemoval   bool
	NailExtension bool
	Name          string
	Birthday      string
	Email         string
	Phone         string
	LineID        string
	CreatedAt     time.Time
}

// ScheduleConfig is the single shared schedule record. The slot-hold
// structures are stored opaquely; this service authorizes and merges the
// fields but does not interpret their contents.
type ScheduleConfig struct {
	ID                   string
	UnavailableTimeSlots json.RawMessage
	LastBookableDate     string
	ReservedTimeSlots    json.RawMessage
	UpdatedAt            time.Time
}
