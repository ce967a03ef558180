package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// DailyTicketCount is one bucket of the tickets-by-period report.
type DailyTicketCount struct {
	Day   time.Time
	Total int
}

// StatusTicketCount is one row of the tickets-by-status report.
type StatusTicketCount struct {
	Status domain.TicketStatus
	Total  int
}

// ModeratorTicketCount aggregates assigned/resolved counts per moderator.
type ModeratorTicketCount struct {
	ModeratorID   string
	Email         string
	FirstName     string
	LastName      string
	TotalAssigned int
	TotalResolved int
}

// AnalyticsRepository exposes the aggregate read side. It consumes the
// ticket data model but carries no invariants of its own.
type AnalyticsRepository interface {
	TicketsByDay(ctx context.Context, from, to time.Time) ([]DailyTicketCount, error)
	TicketsByStatus(ctx context.Context, from, to time.Time) ([]StatusTicketCount, error)
	TicketsByModerator(ctx context.Context, from, to time.Time) ([]ModeratorTicketCount, error)
	// AverageResponseSeconds averages the delay between ticket creation
	// and the first staff message; the second return value is the
	// number of tickets that received a first response.
	AverageResponseSeconds(ctx context.Context, from, to time.Time) (*float64, int, int, error)
	// AverageResolutionSeconds averages closed_at - created_at over
	// RESOLVED tickets; the second return value counts them.
	AverageResolutionSeconds(ctx context.Context, from, to time.Time) (*float64, int, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository builds repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) TicketsByDay(ctx context.Context, from, to time.Time) ([]DailyTicketCount, error) {
	const query = `
        SELECT DATE_TRUNC('day', created_at) AS day, COUNT(*) AS total
        FROM tickets
        WHERE created_at BETWEEN $1 AND $2
        GROUP BY day
        ORDER BY day`
	rows, err := querier(ctx, r.pool).Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DailyTicketCount
	for rows.Next() {
		var row DailyTicketCount
		if err := rows.Scan(&row.Day, &row.Total); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) TicketsByStatus(ctx context.Context, from, to time.Time) ([]StatusTicketCount, error) {
	const query = `
        SELECT status, COUNT(*) AS total
        FROM tickets
        WHERE created_at BETWEEN $1 AND $2
        GROUP BY status
        ORDER BY status`
	rows, err := querier(ctx, r.pool).Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusTicketCount
	for rows.Next() {
		var row StatusTicketCount
		if err := rows.Scan(&row.Status, &row.Total); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) TicketsByModerator(ctx context.Context, from, to time.Time) ([]ModeratorTicketCount, error) {
	const query = `
        SELECT u.id, u.email, u.first_name, u.last_name,
               COUNT(t.id) AS total_assigned,
               COUNT(t.id) FILTER (WHERE t.status = 'RESOLVED') AS total_resolved
        FROM tickets t
        JOIN users u ON u.id = t.assigned_to
        WHERE t.created_at BETWEEN $1 AND $2
        GROUP BY u.id, u.email, u.first_name, u.last_name
        ORDER BY total_assigned DESC, u.email`
	rows, err := querier(ctx, r.pool).Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ModeratorTicketCount
	for rows.Next() {
		var row ModeratorTicketCount
		if err := rows.Scan(
			&row.ModeratorID,
			&row.Email,
			&row.FirstName,
			&row.LastName,
			&row.TotalAssigned,
			&row.TotalResolved,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) AverageResponseSeconds(ctx context.Context, from, to time.Time) (*float64, int, int, error) {
	const considered = `SELECT COUNT(*) FROM tickets WHERE created_at BETWEEN $1 AND $2`
	var ticketsConsidered int
	if err := querier(ctx, r.pool).QueryRow(ctx, considered, from, to).Scan(&ticketsConsidered); err != nil {
		return nil, 0, 0, err
	}

	const query = `
        SELECT COUNT(*), AVG(EXTRACT(EPOCH FROM first_response_at - created_at))
        FROM (
            SELECT t.created_at, MIN(m.created_at) AS first_response_at
            FROM tickets t
            JOIN ticket_messages m ON m.ticket_id = t.id
            JOIN users u ON u.id = m.author_id
            WHERE t.created_at BETWEEN $1 AND $2
              AND u.role IN ('MODERATOR', 'ADMIN')
            GROUP BY t.id, t.created_at
        ) responded`
	var withResponse int
	var avg *float64
	if err := querier(ctx, r.pool).QueryRow(ctx, query, from, to).Scan(&withResponse, &avg); err != nil {
		return nil, 0, 0, err
	}
	return avg, withResponse, ticketsConsidered, nil
}

func (r *analyticsRepository) AverageResolutionSeconds(ctx context.Context, from, to time.Time) (*float64, int, error) {
	const query = `
        SELECT COUNT(*), AVG(EXTRACT(EPOCH FROM closed_at - created_at))
        FROM tickets
        WHERE created_at BETWEEN $1 AND $2
          AND status = 'RESOLVED'
          AND closed_at IS NOT NULL`
	var resolved int
	var avg *float64
	if err := querier(ctx, r.pool).QueryRow(ctx, query, from, to).Scan(&resolved, &avg); err != nil {
		return nil, 0, err
	}
	return avg, resolved, nil
}
