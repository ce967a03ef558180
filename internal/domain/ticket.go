package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen        TicketStatus = "OPEN"
	TicketStatusInProgress  TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingUser TicketStatus = "WAITING_USER"
	TicketStatusResolved    TicketStatus = "RESOLVED"
	TicketStatusCanceled    TicketStatus = "CANCELED"
)

// Valid reports whether the status is a known value.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingUser,
		TicketStatusResolved, TicketStatusCanceled:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// TicketCategory enumerates ticket subject areas.
type TicketCategory string

const (
	TicketCategoryGeneral   TicketCategory = "GENERAL"
	TicketCategoryTechnical TicketCategory = "TECHNICAL"
	TicketCategoryBilling   TicketCategory = "BILLING"
	TicketCategoryAccess    TicketCategory = "ACCESS"
	TicketCategoryBug       TicketCategory = "BUG"
	TicketCategoryFeature   TicketCategory = "FEATURE"
	TicketCategoryOther     TicketCategory = "OTHER"
)

// Valid reports whether the category is a known value.
func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryGeneral, TicketCategoryTechnical, TicketCategoryBilling,
		TicketCategoryAccess, TicketCategoryBug, TicketCategoryFeature, TicketCategoryOther:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
//
// Lifecycle rules:
//   - created with status OPEN
//   - CANCELED is terminal; canceled_at set exactly once, only from OPEN
//   - RESOLVED sets closed_at; leaving RESOLVED clears it
//   - created_by never changes after creation
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Category    TicketCategory
	CreatedBy   string
	AssignedTo  *string
	CanceledAt  *time.Time
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOpen reports whether the ticket is still in its initial state.
func (t *Ticket) IsOpen() bool {
	return t.Status == TicketStatusOpen
}

// IsClosed reports whether the ticket reached a closed state.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusResolved || t.Status == TicketStatusCanceled
}

// CanBeCanceled reports whether the cancel operation applies.
func (t *Ticket) CanBeCanceled() bool {
	return t.Status == TicketStatusOpen
}
