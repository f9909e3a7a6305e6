// Package slots defines the daily time-slot grid the salon books against:
// one-hour slots between opening and closing, rendered as
// "HH:MM～HH:MM" labels with a full-width tilde separator.
package slots

import "strings"

const Separator = "～"

const (
	openingHour = 10
	closingHour = 18
)

var canonical = buildCanonical()

func buildCanonical() []string {
	out := make([]string, 0, closingHour-openingHour)
	for h := openingHour; h < closingHour; h++ {
		out = append(out, label(h)+Separator+label(h+1))
	}
	return out
}

func label(hour int) string {
	return string([]byte{byte('0' + hour/10), byte('0' + hour%10)}) + ":00"
}

// Canonical returns the full bookable slot set in day order.
func Canonical() []string {
	out := make([]string, len(canonical))
	copy(out, canonical)
	return out
}

func IsCanonical(slot string) bool {
	for _, s := range canonical {
		if s == slot {
			return true
		}
	}
	return false
}

// EndMarker returns the end-time label of a slot. Labels are zero-padded, so
// lexicographic order on the result matches chronological order.
func EndMarker(slot string) string {
	if _, end, ok := strings.Cut(slot, Separator); ok {
		return end
	}
	return slot
}
