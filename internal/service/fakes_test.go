package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]domain.Ticket
	failOn  string
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	if r.failOn == "create" {
		return fmt.Errorf("create failed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if r.failOn == "update" {
		return fmt.Errorf("update failed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.CreatedBy != nil && ticket.CreatedBy != *filter.CreatedBy {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	seq      int
	messages map[string]domain.TicketMessage
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string]domain.TicketMessage)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *domain.TicketMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	msg.ID = fmt.Sprintf("msg-%d", r.seq)
	msg.CreatedAt = time.Now()
	r.messages[msg.ID] = *msg
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id string) (*domain.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.messages[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := msg
	return &copied, nil
}

func (r *fakeMessageRepo) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketMessage
	for _, msg := range r.messages {
		if msg.TicketID != ticketID {
			continue
		}
		if msg.IsInternal && !includeInternal {
			continue
		}
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	seq    int
	events []domain.TicketEvent
	failOn domain.TicketEventType
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{}
}

func (r *fakeEventRepo) Create(ctx context.Context, event *domain.TicketEvent) error {
	if r.failOn != "" && event.EventType == r.failOn {
		return fmt.Errorf("event insert failed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	event.ID = fmt.Sprintf("event-%d", r.seq)
	event.CreatedAt = time.Now()
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEventRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketEvent
	for _, event := range r.events {
		if event.TicketID == ticketID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) CountByTicket(ctx context.Context, ticketID string) (int, error) {
	events, _ := r.ListByTicket(ctx, ticketID)
	return len(events), nil
}

func (r *fakeEventRepo) forTicket(ticketID string) []domain.TicketEvent {
	events, _ := r.ListByTicket(context.Background(), ticketID)
	return events
}

func (r *fakeEventRepo) last(ticketID string) *domain.TicketEvent {
	events := r.forTicket(ticketID)
	if len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (r *fakeUserRepo) add(user domain.User) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		r.seq++
		user.ID = fmt.Sprintf("user-%d", r.seq)
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	*user = r.add(*user)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && user.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeTxManager invokes fn directly; the fakes have no transactional
// state to roll back, so tests assert on observable effects instead.
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type sentEmail struct {
	Subject    string
	Recipients []string
}

type fakeGateway struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

// Enqueue mirrors the Redis gateway contract: recipients are
// normalized and an empty set enqueues nothing.
func (g *fakeGateway) Enqueue(ctx context.Context, subject, body string, recipients []string) error {
	if g.err != nil {
		return g.err
	}
	normalized := normalizeForTest(recipients)
	if len(normalized) == 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentEmail{Subject: subject, Recipients: normalized})
	return nil
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

func (g *fakeGateway) lastRecipients() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.sent) == 0 {
		return nil
	}
	return g.sent[len(g.sent)-1].Recipients
}

func normalizeForTest(recipients []string) []string {
	seen := make(map[string]struct{}, len(recipients))
	out := make([]string, 0, len(recipients))
	for _, addr := range recipients {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
