package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ReportWindowResponse echoes the resolved date range of a report.
type ReportWindowResponse struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DailyCountResponse is one bucket of the tickets-by-day report.
type DailyCountResponse struct {
	Day   time.Time `json:"day"`
	Total int       `json:"total"`
}

// StatusCountResponse is one row of the tickets-by-status report.
type StatusCountResponse struct {
	Status domain.TicketStatus `json:"status"`
	Total  int                 `json:"total"`
}

// ModeratorCountResponse is one row of the tickets-by-moderator report.
type ModeratorCountResponse struct {
	ModeratorID   string `json:"moderator_id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	TotalAssigned int    `json:"total_assigned"`
	TotalResolved int    `json:"total_resolved"`
}

// ResponseTimeResponse summarizes first-response delay.
type ResponseTimeResponse struct {
	Window            ReportWindowResponse `json:"window"`
	AverageSeconds    *float64             `json:"average_seconds"`
	TicketsWithReply  int                  `json:"tickets_with_reply"`
	TicketsConsidered int                  `json:"tickets_considered"`
}

// ResolutionTimeResponse summarizes time to resolution.
type ResolutionTimeResponse struct {
	Window          ReportWindowResponse `json:"window"`
	AverageSeconds  *float64             `json:"average_seconds"`
	TicketsResolved int                  `json:"tickets_resolved"`
}

// NewReportWindowResponse maps the resolved window.
func NewReportWindowResponse(w service.ReportWindow) ReportWindowResponse {
	return ReportWindowResponse{From: w.From, To: w.To}
}

// NewDailyCountListResponse maps daily report rows.
func NewDailyCountListResponse(rows []repository.DailyTicketCount) []DailyCountResponse {
	items := make([]DailyCountResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, DailyCountResponse{Day: row.Day, Total: row.Total})
	}
	return items
}

// NewStatusCountListResponse maps status report rows.
func NewStatusCountListResponse(rows []repository.StatusTicketCount) []StatusCountResponse {
	items := make([]StatusCountResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, StatusCountResponse{Status: row.Status, Total: row.Total})
	}
	return items
}

// NewModeratorCountListResponse maps moderator report rows.
func NewModeratorCountListResponse(rows []repository.ModeratorTicketCount) []ModeratorCountResponse {
	items := make([]ModeratorCountResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, ModeratorCountResponse{
			ModeratorID:   row.ModeratorID,
			Email:         row.Email,
			FirstName:     row.FirstName,
			LastName:      row.LastName,
			TotalAssigned: row.TotalAssigned,
			TotalResolved: row.TotalResolved,
		})
	}
	return items
}
