package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketMessageRepository manages ticket thread messages.
type TicketMessageRepository interface {
	Create(ctx context.Context, msg *domain.TicketMessage) error
	GetByID(ctx context.Context, id string) (*domain.TicketMessage, error)
	// ListByTicket returns messages ordered ascending by creation time.
	// When includeInternal is false, internal notes are filtered out.
	ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketMessage, error)
}

type ticketMessageRepository struct {
	pool *pgxpool.Pool
}

// NewTicketMessageRepository builds repository.
func NewTicketMessageRepository(pool *pgxpool.Pool) TicketMessageRepository {
	return &ticketMessageRepository{pool: pool}
}

func (r *ticketMessageRepository) Create(ctx context.Context, msg *domain.TicketMessage) error {
	const query = `
        INSERT INTO ticket_messages (ticket_id, author_id, message, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		msg.TicketID,
		msg.AuthorID,
		msg.Message,
		msg.IsInternal,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *ticketMessageRepository) GetByID(ctx context.Context, id string) (*domain.TicketMessage, error) {
	const query = `
        SELECT id, ticket_id, author_id, message, is_internal, created_at
        FROM ticket_messages WHERE id=$1`
	var msg domain.TicketMessage
	if err := querier(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&msg.ID,
		&msg.TicketID,
		&msg.AuthorID,
		&msg.Message,
		&msg.IsInternal,
		&msg.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *ticketMessageRepository) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketMessage, error) {
	query := `
        SELECT id, ticket_id, author_id, message, is_internal, created_at
        FROM ticket_messages WHERE ticket_id=$1`
	if !includeInternal {
		query += ` AND is_internal=FALSE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := querier(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketMessage
	for rows.Next() {
		var msg domain.TicketMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.AuthorID,
			&msg.Message,
			&msg.IsInternal,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
