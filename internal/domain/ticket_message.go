package domain

import "time"

// TicketMessage captures one entry of the conversation on a ticket.
// Messages are immutable once created; internal messages are hidden
// from the ticket owner.
type TicketMessage struct {
	ID         string
	TicketID   string
	AuthorID   string
	Message    string
	IsInternal bool
	CreatedAt  time.Time
}
