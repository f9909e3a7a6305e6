package outbox

// Event is an integration event queued in the same transaction as the state
// change it describes.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const (
	EventAppointmentBooked = "salonbook.appointment.booked.v1"
	EventMemberRegistered  = "salonbook.member.registered.v1"
)
