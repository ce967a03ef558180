package service

import (
	"context"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// defaultReportWindow is applied when the caller supplies no dates.
const defaultReportWindow = 30 * 24 * time.Hour

// AnalyticsService exposes aggregate reporting to staff.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	now       func() time.Time
}

// ReportWindow is the resolved date range a report covers.
type ReportWindow struct {
	From time.Time
	To   time.Time
}

// ResponseTimeReport summarizes first staff response delay.
type ResponseTimeReport struct {
	Window            ReportWindow
	AverageSeconds    *float64
	TicketsWithReply  int
	TicketsConsidered int
}

// ResolutionTimeReport summarizes time to resolution.
type ResolutionTimeReport struct {
	Window          ReportWindow
	AverageSeconds  *float64
	TicketsResolved int
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(analytics repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analytics: analytics, now: time.Now}
}

// ResolveWindow validates the requested range and fills defaults: a
// missing window covers the last 30 days, a missing bound anchors to
// the other one.
func (s *AnalyticsService) ResolveWindow(from, to *time.Time) (ReportWindow, error) {
	end := s.now()
	if to != nil {
		end = *to
	}
	start := end.Add(-defaultReportWindow)
	if from != nil {
		start = *from
	}
	if start.After(end) {
		return ReportWindow{}, apperrors.NewValidationError("from must not be after to", map[string]any{
			"from": start,
			"to":   end,
		})
	}
	return ReportWindow{From: start, To: end}, nil
}

// TicketsByDay reports daily ticket creation counts.
func (s *AnalyticsService) TicketsByDay(ctx context.Context, actor *domain.User, from, to *time.Time) (ReportWindow, []repository.DailyTicketCount, error) {
	window, err := s.authorizeWindow(actor, from, to)
	if err != nil {
		return ReportWindow{}, nil, err
	}
	rows, err := s.analytics.TicketsByDay(ctx, window.From, window.To)
	if err != nil {
		return ReportWindow{}, nil, apperrors.MapError(err)
	}
	return window, rows, nil
}

// TicketsByStatus reports the status distribution of tickets created in
// the window.
func (s *AnalyticsService) TicketsByStatus(ctx context.Context, actor *domain.User, from, to *time.Time) (ReportWindow, []repository.StatusTicketCount, error) {
	window, err := s.authorizeWindow(actor, from, to)
	if err != nil {
		return ReportWindow{}, nil, err
	}
	rows, err := s.analytics.TicketsByStatus(ctx, window.From, window.To)
	if err != nil {
		return ReportWindow{}, nil, apperrors.MapError(err)
	}
	return window, rows, nil
}

// TicketsByModerator reports per-assignee workload and resolution counts.
func (s *AnalyticsService) TicketsByModerator(ctx context.Context, actor *domain.User, from, to *time.Time) (ReportWindow, []repository.ModeratorTicketCount, error) {
	window, err := s.authorizeWindow(actor, from, to)
	if err != nil {
		return ReportWindow{}, nil, err
	}
	rows, err := s.analytics.TicketsByModerator(ctx, window.From, window.To)
	if err != nil {
		return ReportWindow{}, nil, apperrors.MapError(err)
	}
	return window, rows, nil
}

// ResponseTime reports the average delay until the first staff message.
func (s *AnalyticsService) ResponseTime(ctx context.Context, actor *domain.User, from, to *time.Time) (*ResponseTimeReport, error) {
	window, err := s.authorizeWindow(actor, from, to)
	if err != nil {
		return nil, err
	}
	avg, withReply, considered, err := s.analytics.AverageResponseSeconds(ctx, window.From, window.To)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &ResponseTimeReport{
		Window:            window,
		AverageSeconds:    avg,
		TicketsWithReply:  withReply,
		TicketsConsidered: considered,
	}, nil
}

// ResolutionTime reports the average time from creation to resolution.
func (s *AnalyticsService) ResolutionTime(ctx context.Context, actor *domain.User, from, to *time.Time) (*ResolutionTimeReport, error) {
	window, err := s.authorizeWindow(actor, from, to)
	if err != nil {
		return nil, err
	}
	avg, resolved, err := s.analytics.AverageResolutionSeconds(ctx, window.From, window.To)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &ResolutionTimeReport{
		Window:          window,
		AverageSeconds:  avg,
		TicketsResolved: resolved,
	}, nil
}

func (s *AnalyticsService) authorizeWindow(actor *domain.User, from, to *time.Time) (ReportWindow, error) {
	if !authz.CanViewAnalytics(actor) {
		return ReportWindow{}, apperrors.NewForbidden("only moderators and admins can view analytics")
	}
	return s.ResolveWindow(from, to)
}
