package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketEventRepository stores the append-only audit trail. Events are
// never updated or deleted; listing is ordered ascending by creation
// time so the trail replays in order.
type TicketEventRepository interface {
	Create(ctx context.Context, event *domain.TicketEvent) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error)
	CountByTicket(ctx context.Context, ticketID string) (int, error)
}

type ticketEventRepository struct {
	pool *pgxpool.Pool
}

// NewTicketEventRepository builds repository.
func NewTicketEventRepository(pool *pgxpool.Pool) TicketEventRepository {
	return &ticketEventRepository{pool: pool}
}

func (r *ticketEventRepository) Create(ctx context.Context, event *domain.TicketEvent) error {
	const query = `
        INSERT INTO ticket_events (ticket_id, event_type, from_value, to_value, triggered_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		event.TicketID,
		event.EventType,
		event.FromValue,
		event.ToValue,
		event.TriggeredBy,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *ticketEventRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error) {
	const query = `
        SELECT id, ticket_id, event_type, from_value, to_value, triggered_by, created_at
        FROM ticket_events WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketEvent
	for rows.Next() {
		var event domain.TicketEvent
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.EventType,
			&event.FromValue,
			&event.ToValue,
			&event.TriggeredBy,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

func (r *ticketEventRepository) CountByTicket(ctx context.Context, ticketID string) (int, error) {
	const query = `SELECT COUNT(*) FROM ticket_events WHERE ticket_id=$1`
	var count int
	if err := querier(ctx, r.pool).QueryRow(ctx, query, ticketID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
