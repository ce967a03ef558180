package authz

import (
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func user(id string, role domain.UserRole) *domain.User {
	return &domain.User{ID: id, Role: role, IsActive: true}
}

func ticketOwnedBy(userID string) *domain.Ticket {
	return &domain.Ticket{ID: "t1", CreatedBy: userID, Status: domain.TicketStatusOpen}
}

func TestOwnershipGates(t *testing.T) {
	owner := user("u1", domain.RoleUser)
	stranger := user("u2", domain.RoleUser)
	mod := user("m1", domain.RoleModerator)
	admin := user("a1", domain.RoleAdmin)
	ticket := ticketOwnedBy(owner.ID)

	tests := []struct {
		name  string
		actor *domain.User
		check func(*domain.User) bool
		want  bool
	}{
		{"owner views own ticket", owner, func(a *domain.User) bool { return CanViewTicket(a, ticket) }, true},
		{"stranger blocked", stranger, func(a *domain.User) bool { return CanViewTicket(a, ticket) }, false},
		{"moderator views any", mod, func(a *domain.User) bool { return CanViewTicket(a, ticket) }, true},
		{"admin views any", admin, func(a *domain.User) bool { return CanViewTicket(a, ticket) }, true},
		{"nil actor blocked", nil, func(a *domain.User) bool { return CanViewTicket(a, ticket) }, false},

		{"owner can cancel", owner, func(a *domain.User) bool { return CanCancelTicket(a, ticket) }, true},
		{"stranger cannot cancel", stranger, func(a *domain.User) bool { return CanCancelTicket(a, ticket) }, false},
		{"staff can cancel", mod, func(a *domain.User) bool { return CanCancelTicket(a, ticket) }, true},

		{"owner cannot assign", owner, CanAssignTicket, false},
		{"moderator can assign", mod, CanAssignTicket, true},
		{"owner cannot change status", owner, CanChangeStatus, false},
		{"admin can change status", admin, CanChangeStatus, true},

		{"moderator cannot manage users", mod, CanManageUsers, false},
		{"admin manages users", admin, CanManageUsers, true},
		{"user no analytics", owner, CanViewAnalytics, false},
		{"moderator analytics", mod, CanViewAnalytics, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.check(tc.actor); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanAddMessage(t *testing.T) {
	owner := user("u1", domain.RoleUser)
	stranger := user("u2", domain.RoleUser)
	mod := user("m1", domain.RoleModerator)
	ticket := ticketOwnedBy(owner.ID)

	tests := []struct {
		name     string
		actor    *domain.User
		internal bool
		want     bool
	}{
		{"owner public", owner, false, true},
		{"owner internal", owner, true, false},
		{"moderator public", mod, false, true},
		{"moderator internal", mod, true, true},
		{"stranger public", stranger, false, false},
		{"stranger internal", stranger, true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanAddMessage(tc.actor, ticket, tc.internal); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanViewMessage(t *testing.T) {
	owner := user("u1", domain.RoleUser)
	mod := user("m1", domain.RoleModerator)
	ticket := ticketOwnedBy(owner.ID)

	public := &domain.TicketMessage{ID: "msg1", TicketID: ticket.ID, AuthorID: owner.ID}
	internal := &domain.TicketMessage{ID: "msg2", TicketID: ticket.ID, AuthorID: mod.ID, IsInternal: true}

	if !CanViewMessage(owner, ticket, public) {
		t.Error("owner blocked from own public message")
	}
	if CanViewMessage(owner, ticket, internal) {
		t.Error("owner allowed to read internal note")
	}
	if !CanViewMessage(mod, ticket, internal) {
		t.Error("staff blocked from internal note")
	}
	if !CanViewMessage(mod, ticket, public) {
		t.Error("staff blocked from public message")
	}
}

func TestCanBeAssignee(t *testing.T) {
	tests := []struct {
		name string
		u    *domain.User
		want bool
	}{
		{"active moderator", &domain.User{Role: domain.RoleModerator, IsActive: true}, true},
		{"active admin", &domain.User{Role: domain.RoleAdmin, IsActive: true}, true},
		{"inactive moderator", &domain.User{Role: domain.RoleModerator, IsActive: false}, false},
		{"active regular user", &domain.User{Role: domain.RoleUser, IsActive: true}, false},
		{"nil", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanBeAssignee(tc.u); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
