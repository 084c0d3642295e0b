package engine

import "time"

// EventType identifies what happened to an order
type EventType string

const (
	EventOrderCreated  EventType = "ORDER_CREATED"
	EventStatusChanged EventType = "STATUS_CHANGED"
	EventOrderRemoved  EventType = "ORDER_REMOVED"
)

// Event describes a committed change to a single order. Events are
// published best-effort on the store's event channel; a slow or absent
// consumer never blocks a mutation.
type Event struct {
	Type       EventType
	Order      Order
	FromStatus Status
	ToStatus   Status
	At         time.Time
}
