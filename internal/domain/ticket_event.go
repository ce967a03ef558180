package domain

import "time"

// TicketEventType enumerates audit event identifiers.
type TicketEventType string

const (
	EventCreated         TicketEventType = "CREATED"
	EventStatusChanged   TicketEventType = "STATUS_CHANGED"
	EventAssigned        TicketEventType = "ASSIGNED"
	EventUnassigned      TicketEventType = "UNASSIGNED"
	EventPriorityChanged TicketEventType = "PRIORITY_CHANGED"
	EventCanceled        TicketEventType = "CANCELED"
	EventResolved        TicketEventType = "RESOLVED"
	EventReopened        TicketEventType = "REOPENED"
	EventMessageAdded    TicketEventType = "MESSAGE_ADDED"
)

// Visibility markers recorded in MESSAGE_ADDED events.
const (
	MessageVisibilityInternal = "INTERNAL"
	MessageVisibilityPublic   = "PUBLIC"
)

// TicketEvent is an immutable audit record of one state-changing
// action on a ticket. Events are append-only and ordered by creation
// time; together they form the full replayable history of the ticket.
type TicketEvent struct {
	ID          string
	TicketID    string
	EventType   TicketEventType
	FromValue   string
	ToValue     string
	TriggeredBy string
	CreatedAt   time.Time
}
