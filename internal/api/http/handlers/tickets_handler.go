package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler serves the ticket lifecycle endpoints. Visibility and
// role checks live in the service; the handler only shapes requests.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.UserContext(), actor, service.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter, err := parseTicketListQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketListResponse(tickets)})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Cancel POST /tickets/:id/cancel.
func (h *TicketsHandler) Cancel(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.service.Cancel(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Assign(c.UserContext(), actor, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.ChangeStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ChangePriority POST /tickets/:id/priority.
func (h *TicketsHandler) ChangePriority(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdatePriority(c.UserContext(), actor, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AddMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.service.AddMessage(c.UserContext(), actor, c.Params("id"), req.Message, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketMessageResponse(msg)})
}

// ListMessages GET /tickets/:id/messages.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	msgs, err := h.service.ListMessages(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketMessageListResponse(msgs)})
}

// GetMessage GET /tickets/messages/:messageId.
func (h *TicketsHandler) GetMessage(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	msg, err := h.service.GetMessage(c.UserContext(), actor, c.Params("messageId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketMessageResponse(msg)})
}

// ListEvents GET /tickets/:id/events.
func (h *TicketsHandler) ListEvents(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	events, err := h.service.ListEvents(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketEventListResponse(events)})
}

func parseTicketListQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}

	for _, raw := range splitQuery(c.Query("status")) {
		status := domain.TicketStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, raw := range splitQuery(c.Query("priority")) {
		priority := domain.TicketPriority(strings.ToUpper(raw))
		if !priority.Valid() {
			return filter, apperrors.NewValidationError("invalid priority filter", map[string]any{"priority": raw})
		}
		filter.Priorities = append(filter.Priorities, priority)
	}
	for _, raw := range splitQuery(c.Query("category")) {
		category := domain.TicketCategory(strings.ToUpper(raw))
		if !category.Valid() {
			return filter, apperrors.NewValidationError("invalid category filter", map[string]any{"category": raw})
		}
		filter.Categories = append(filter.Categories, category)
	}

	if assignee := strings.TrimSpace(c.Query("assigned_to")); assignee != "" {
		if assignee == "none" {
			filter.Unassigned = true
		} else {
			filter.AssignedTo = &assignee
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}

	var err error
	if filter.CreatedFrom, err = parseTimeQuery(c, "created_from"); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = parseTimeQuery(c, "created_to"); err != nil {
		return filter, err
	}
	return filter, nil
}

func splitQuery(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date, expected RFC3339 or YYYY-MM-DD", map[string]any{key: raw})
	}
	return &parsed, nil
}
