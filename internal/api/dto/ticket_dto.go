package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    domain.TicketCategory `json:"category"`
}

// AssignTicketRequest payload. A null assigned_to unassigns.
type AssignTicketRequest struct {
	AssignedTo *string `json:"assigned_to"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// ChangePriorityRequest payload.
type ChangePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AddMessageRequest payload.
type AddMessageRequest struct {
	Message    string `json:"message"`
	IsInternal bool   `json:"is_internal"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    domain.TicketCategory `json:"category"`
	CreatedBy   string                `json:"created_by"`
	AssignedTo  *string               `json:"assigned_to"`
	CanceledAt  *time.Time            `json:"canceled_at"`
	ClosedAt    *time.Time            `json:"closed_at"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketMessageResponse is the wire shape of a conversation message.
type TicketMessageResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AuthorID   string    `json:"author_id"`
	Message    string    `json:"message"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// TicketEventResponse is the wire shape of an audit event.
type TicketEventResponse struct {
	ID          string                 `json:"id"`
	TicketID    string                 `json:"ticket_id"`
	EventType   domain.TicketEventType `json:"event_type"`
	FromValue   string                 `json:"from_value"`
	ToValue     string                 `json:"to_value"`
	TriggeredBy string                 `json:"triggered_by"`
	CreatedAt   time.Time              `json:"created_at"`
}

// NewTicketResponse maps the domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Category:    t.Category,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		CanceledAt:  t.CanceledAt,
		ClosedAt:    t.ClosedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTicketListResponse maps a slice of tickets.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// NewTicketMessageResponse maps the domain message.
func NewTicketMessageResponse(m *domain.TicketMessage) TicketMessageResponse {
	return TicketMessageResponse{
		ID:         m.ID,
		TicketID:   m.TicketID,
		AuthorID:   m.AuthorID,
		Message:    m.Message,
		IsInternal: m.IsInternal,
		CreatedAt:  m.CreatedAt,
	}
}

// NewTicketMessageListResponse maps a slice of messages.
func NewTicketMessageListResponse(msgs []domain.TicketMessage) []TicketMessageResponse {
	items := make([]TicketMessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, NewTicketMessageResponse(&msgs[i]))
	}
	return items
}

// NewTicketEventListResponse maps a slice of events.
func NewTicketEventListResponse(events []domain.TicketEvent) []TicketEventResponse {
	items := make([]TicketEventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, TicketEventResponse{
			ID:          e.ID,
			TicketID:    e.TicketID,
			EventType:   e.EventType,
			FromValue:   e.FromValue,
			ToValue:     e.ToValue,
			TriggeredBy: e.TriggeredBy,
			CreatedAt:   e.CreatedAt,
		})
	}
	return items
}
