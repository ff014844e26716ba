package core

// Event kinds.
const EventTaskCreated = "task.created"

// Event is a notification of something that happened in the application,
// carrying the host identifiers observers care about.
type Event struct {
	Kind      string
	ProjectID int
	ContextID int
	TaskID    int
	GroupID   int
}

// EventSink receives application events. Delivery is fire-and-forget:
// a sink must never fail the operation that emitted the event.
type EventSink interface {
	Emit(Event)
}
