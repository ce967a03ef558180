package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/notify"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService owns the ticket lifecycle: every mutation runs inside
// one transaction covering the ticket write and its audit event, with
// notifications deferred until the transaction commits.
type TicketService struct {
	tickets  repository.TicketRepository
	messages repository.TicketMessageRepository
	events   repository.TicketEventRepository
	users    repository.UserRepository
	tx       repository.TxManager
	gateway  notify.Gateway
	logger   *zap.Logger
	now      func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.TicketMessageRepository
	EventRepo   repository.TicketEventRepository
	UserRepo    repository.UserRepository
	TxManager   repository.TxManager
	Gateway     notify.Gateway
	Logger      *zap.Logger
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.TicketCategory
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Categories  []domain.TicketCategory
	AssignedTo  *string
	Unassigned  bool
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:  deps.TicketRepo,
		messages: deps.MessageRepo,
		events:   deps.EventRepo,
		users:    deps.UserRepo,
		tx:       deps.TxManager,
		gateway:  deps.Gateway,
		logger:   logger,
		now:      time.Now,
	}
}

// Create opens a new ticket for the actor, records the CREATED event
// and notifies the creator.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input CreateTicketInput) (*domain.Ticket, error) {
	if !authz.CanCreateTicket(actor) {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	category := input.Category
	if category == "" {
		category = domain.TicketCategoryGeneral
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	if !category.Valid() {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": category})
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Category:    category,
		CreatedBy:   actor.ID,
	}

	outbox := notify.NewOutbox()
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		if err := s.appendEvent(ctx, ticket.ID, domain.EventCreated, "", string(domain.TicketStatusOpen), actor.ID); err != nil {
			return err
		}
		outbox.Add(
			fmt.Sprintf("[HelpDesk] New ticket opened: %s", ticket.Title),
			fmt.Sprintf("A new ticket has been created.\n\nID: %s\nTitle: %s\nPriority: %s\nCategory: %s\nStatus: %s\n",
				ticket.ID, ticket.Title, ticket.Priority, ticket.Category, ticket.Status),
			[]string{actor.Email},
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	outbox.Flush(ctx, s.gateway, s.logger)
	return ticket, nil
}

// Get returns one ticket visible to the actor.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("you do not have access to this ticket")
	}
	return ticket, nil
}

// List returns tickets visible to the actor. Non-staff callers only
// ever see their own tickets regardless of the filter.
func (s *TicketService) List(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		AssignedTo:  filter.AssignedTo,
		Unassigned:  filter.Unassigned,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		Categories:  filter.Categories,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if !authz.IsModeratorOrAdmin(actor) {
		repoFilter.CreatedBy = &actor.ID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Assign sets or clears the ticket assignee. Only active moderators
// and admins are assignable; a nil assignee unassigns.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	if !authz.CanAssignTicket(actor) {
		return nil, apperrors.NewForbidden("only moderators and admins can assign tickets")
	}
	if _, err := s.fetchTicket(ctx, ticketID); err != nil {
		return nil, err
	}

	var assignee *domain.User
	if assigneeID != nil {
		var err error
		assignee, err = s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("assignee not found", map[string]any{"assigned_to": *assigneeID})
			}
			return nil, apperrors.MapError(err)
		}
		if !authz.CanBeAssignee(assignee) {
			return nil, apperrors.NewValidationError("assignee must be an active moderator or admin", map[string]any{"assigned_to": *assigneeID})
		}
	}

	var ticket *domain.Ticket
	outbox := notify.NewOutbox()
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return apperrors.MapError(err)
		}

		previousID := ticket.AssignedTo
		ticket.AssignedTo = assigneeID
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}

		eventType := domain.EventUnassigned
		toValue := ""
		if assigneeID != nil {
			eventType = domain.EventAssigned
			toValue = *assigneeID
		}
		fromValue := ""
		if previousID != nil {
			fromValue = *previousID
		}
		if err := s.appendEvent(ctx, ticket.ID, eventType, fromValue, toValue, actor.ID); err != nil {
			return err
		}

		previousEmail := s.lookupEmail(ctx, previousID)
		assigneeEmail := ""
		if assignee != nil {
			assigneeEmail = assignee.Email
		}
		outbox.Add(
			fmt.Sprintf("[HelpDesk] Ticket updated: assignment (%s)", ticket.Title),
			fmt.Sprintf("Ticket %s had its assignment changed.\nPrevious: %s\nCurrent: %s\n",
				ticket.ID, emailOrUnassigned(previousEmail), emailOrUnassigned(assigneeEmail)),
			[]string{s.lookupEmail(ctx, &ticket.CreatedBy), previousEmail, assigneeEmail},
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	outbox.Flush(ctx, s.gateway, s.logger)
	return ticket, nil
}

// ChangeStatus moves the ticket to a new lifecycle state. CANCELED is
// unreachable from here; canceled tickets are terminal. Changing to
// the current status is a silent no-op with no event or notification.
func (s *TicketService) ChangeStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !authz.CanChangeStatus(actor) {
		return nil, apperrors.NewForbidden("only moderators and admins can change ticket status")
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}
	if _, err := s.fetchTicket(ctx, ticketID); err != nil {
		return nil, err
	}

	var ticket *domain.Ticket
	outbox := notify.NewOutbox()
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return apperrors.MapError(err)
		}

		if ticket.Status == domain.TicketStatusCanceled {
			return apperrors.NewInvalidTransition("a canceled ticket cannot change status", map[string]any{
				"status": ticket.Status,
			})
		}
		if newStatus == domain.TicketStatusCanceled {
			return apperrors.NewInvalidTransition("use the cancel operation to cancel a ticket", nil)
		}

		previous := ticket.Status
		if previous == newStatus {
			return nil
		}

		ticket.Status = newStatus
		switch {
		case newStatus == domain.TicketStatusResolved:
			now := s.now()
			ticket.ClosedAt = &now
		case previous == domain.TicketStatusResolved:
			ticket.ClosedAt = nil
		}
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}

		eventType := domain.EventStatusChanged
		switch {
		case newStatus == domain.TicketStatusResolved:
			eventType = domain.EventResolved
		case previous == domain.TicketStatusResolved:
			eventType = domain.EventReopened
		}
		if err := s.appendEvent(ctx, ticket.ID, eventType, string(previous), string(newStatus), actor.ID); err != nil {
			return err
		}

		outbox.Add(
			fmt.Sprintf("[HelpDesk] Ticket updated: status (%s)", ticket.Title),
			fmt.Sprintf("Ticket %s had its status changed.\nPrevious: %s\nCurrent: %s\n",
				ticket.ID, previous, newStatus),
			[]string{s.lookupEmail(ctx, &ticket.CreatedBy), s.lookupEmail(ctx, ticket.AssignedTo)},
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	outbox.Flush(ctx, s.gateway, s.logger)
	return ticket, nil
}

// UpdatePriority changes the ticket priority, recording one
// PRIORITY_CHANGED event. Unchanged priority is a silent no-op.
func (s *TicketService) UpdatePriority(ctx context.Context, actor *domain.User, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !authz.CanChangePriority(actor) {
		return nil, apperrors.NewForbidden("only moderators and admins can change ticket priority")
	}
	if !newPriority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": newPriority})
	}
	if _, err := s.fetchTicket(ctx, ticketID); err != nil {
		return nil, err
	}

	var ticket *domain.Ticket
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return apperrors.MapError(err)
		}

		previous := ticket.Priority
		if previous == newPriority {
			return nil
		}
		ticket.Priority = newPriority
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		return s.appendEvent(ctx, ticket.ID, domain.EventPriorityChanged, string(previous), string(newPriority), actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// Cancel terminates an OPEN ticket. Cancellation is the only path to
// CANCELED and sets canceled_at exactly once.
func (s *TicketService) Cancel(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	existing, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanCancelTicket(actor, existing) {
		return nil, apperrors.NewForbidden("you do not have access to this ticket")
	}

	var ticket *domain.Ticket
	outbox := notify.NewOutbox()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return apperrors.MapError(err)
		}

		if !ticket.CanBeCanceled() {
			return apperrors.NewInvalidTransition("only OPEN tickets can be canceled", map[string]any{
				"status": ticket.Status,
			})
		}

		ticket.Status = domain.TicketStatusCanceled
		now := s.now()
		ticket.CanceledAt = &now
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		if err := s.appendEvent(ctx, ticket.ID, domain.EventCanceled,
			string(domain.TicketStatusOpen), string(domain.TicketStatusCanceled), actor.ID); err != nil {
			return err
		}

		outbox.Add(
			fmt.Sprintf("[HelpDesk] Ticket canceled: %s", ticket.Title),
			fmt.Sprintf("Ticket %s has been canceled.\n", ticket.ID),
			[]string{s.lookupEmail(ctx, &ticket.CreatedBy), s.lookupEmail(ctx, ticket.AssignedTo)},
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	outbox.Flush(ctx, s.gateway, s.logger)
	return ticket, nil
}

// AddMessage appends one message to the ticket conversation. Internal
// messages notify staff without alerting the ticket owner.
func (s *TicketService) AddMessage(ctx context.Context, actor *domain.User, ticketID, message string, isInternal bool) (*domain.TicketMessage, error) {
	existing, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAddMessage(actor, existing, isInternal) {
		if isInternal && authz.Owns(actor, existing) {
			return nil, apperrors.NewForbidden("internal messages are restricted to moderators and admins")
		}
		return nil, apperrors.NewForbidden("you do not have access to this ticket")
	}
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}

	msg := &domain.TicketMessage{
		TicketID:   existing.ID,
		AuthorID:   actor.ID,
		Message:    message,
		IsInternal: isInternal,
	}

	outbox := notify.NewOutbox()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ticket, err := s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if err := s.messages.Create(ctx, msg); err != nil {
			return apperrors.MapError(err)
		}

		visibility := domain.MessageVisibilityPublic
		if isInternal {
			visibility = domain.MessageVisibilityInternal
		}
		if err := s.appendEvent(ctx, ticket.ID, domain.EventMessageAdded, "", visibility, actor.ID); err != nil {
			return err
		}

		// Owner is alerted for public messages only; the author is
		// looped in on internal notes instead.
		ownerEmail := ""
		if !isInternal {
			ownerEmail = s.lookupEmail(ctx, &ticket.CreatedBy)
		}
		authorEmail := ""
		if isInternal {
			authorEmail = actor.Email
		}
		kind := "public"
		if isInternal {
			kind = "internal"
		}
		outbox.Add(
			fmt.Sprintf("[HelpDesk] New message on ticket: %s", ticket.Title),
			fmt.Sprintf("New message on %s.\nAuthor: %s\nType: %s\nContent: %s\n",
				ticket.ID, actor.Email, kind, message),
			[]string{ownerEmail, s.lookupEmail(ctx, ticket.AssignedTo), authorEmail},
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	outbox.Flush(ctx, s.gateway, s.logger)
	return msg, nil
}

// ListMessages returns the ticket conversation. Internal messages are
// included for staff only.
func (s *TicketService) ListMessages(ctx context.Context, actor *domain.User, ticketID string) ([]domain.TicketMessage, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("you do not have access to this ticket")
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID, authz.IsModeratorOrAdmin(actor))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// GetMessage returns one message, applying the author-or-owner-or-staff
// gate with the internal-message carve-out.
func (s *TicketService) GetMessage(ctx context.Context, actor *domain.User, messageID string) (*domain.TicketMessage, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("message", map[string]any{"message_id": messageID})
		}
		return nil, apperrors.MapError(err)
	}
	ticket, err := s.fetchTicket(ctx, msg.TicketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewMessage(actor, ticket, msg) {
		return nil, apperrors.NewForbidden("you do not have access to this message")
	}
	return msg, nil
}

// ListEvents exposes the audit trail to the ticket owner and staff,
// ordered ascending by creation time.
func (s *TicketService) ListEvents(ctx context.Context, actor *domain.User, ticketID string) ([]domain.TicketEvent, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewEvents(actor, ticket) {
		return nil, apperrors.NewForbidden("you do not have access to this ticket")
	}
	events, err := s.events.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return events, nil
}

func (s *TicketService) fetchTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) appendEvent(ctx context.Context, ticketID string, eventType domain.TicketEventType, fromValue, toValue, triggeredBy string) error {
	event := &domain.TicketEvent{
		TicketID:    ticketID,
		EventType:   eventType,
		FromValue:   fromValue,
		ToValue:     toValue,
		TriggeredBy: triggeredBy,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) lookupEmail(ctx context.Context, userID *string) string {
	if userID == nil {
		return ""
	}
	user, err := s.users.GetByID(ctx, *userID)
	if err != nil {
		s.logger.Warn("failed to resolve notification recipient", zap.String("user_id", *userID), zap.Error(err))
		return ""
	}
	return user.Email
}

func emailOrUnassigned(email string) string {
	if email == "" {
		return "Unassigned"
	}
	return email
}
