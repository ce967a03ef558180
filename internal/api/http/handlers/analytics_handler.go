package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AnalyticsHandler serves the staff reporting endpoints.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// TicketsByDay GET /analytics/tickets/daily.
func (h *AnalyticsHandler) TicketsByDay(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return err
	}

	window, rows, err := h.service.TicketsByDay(c.UserContext(), actor, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"window":  dto.NewReportWindowResponse(window),
		"buckets": dto.NewDailyCountListResponse(rows),
	}})
}

// TicketsByStatus GET /analytics/tickets/status.
func (h *AnalyticsHandler) TicketsByStatus(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return err
	}

	window, rows, err := h.service.TicketsByStatus(c.UserContext(), actor, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"window": dto.NewReportWindowResponse(window),
		"rows":   dto.NewStatusCountListResponse(rows),
	}})
}

// TicketsByModerator GET /analytics/tickets/moderators.
func (h *AnalyticsHandler) TicketsByModerator(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return err
	}

	window, rows, err := h.service.TicketsByModerator(c.UserContext(), actor, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"window": dto.NewReportWindowResponse(window),
		"rows":   dto.NewModeratorCountListResponse(rows),
	}})
}

// ResponseTime GET /analytics/tickets/response-time.
func (h *AnalyticsHandler) ResponseTime(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return err
	}

	report, err := h.service.ResponseTime(c.UserContext(), actor, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ResponseTimeResponse{
		Window:            dto.NewReportWindowResponse(report.Window),
		AverageSeconds:    report.AverageSeconds,
		TicketsWithReply:  report.TicketsWithReply,
		TicketsConsidered: report.TicketsConsidered,
	}})
}

// ResolutionTime GET /analytics/tickets/resolution-time.
func (h *AnalyticsHandler) ResolutionTime(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return err
	}

	report, err := h.service.ResolutionTime(c.UserContext(), actor, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ResolutionTimeResponse{
		Window:          dto.NewReportWindowResponse(report.Window),
		AverageSeconds:  report.AverageSeconds,
		TicketsResolved: report.TicketsResolved,
	}})
}
