// Package authz holds the role/ownership predicates gating every ticket
// action. Each gate is a pure function over (actor, resource); callers
// check the gate before attempting any state mutation so denials never
// leave partial writes behind.
package authz

import "github.com/spec-kit/helpdesk-service/internal/domain"

// IsModeratorOrAdmin reports whether the actor holds a staff role.
func IsModeratorOrAdmin(actor *domain.User) bool {
	return actor != nil && actor.IsModeratorOrAdmin()
}

// Owns reports whether the actor created the ticket.
func Owns(actor *domain.User, ticket *domain.Ticket) bool {
	return actor != nil && ticket != nil && ticket.CreatedBy == actor.ID
}

// CanCreateTicket allows any authenticated user.
func CanCreateTicket(actor *domain.User) bool {
	return actor != nil
}

// CanViewTicket allows the owner or moderator/admin.
func CanViewTicket(actor *domain.User, ticket *domain.Ticket) bool {
	return Owns(actor, ticket) || IsModeratorOrAdmin(actor)
}

// CanAssignTicket allows moderator/admin only.
func CanAssignTicket(actor *domain.User) bool {
	return IsModeratorOrAdmin(actor)
}

// CanChangeStatus allows moderator/admin only.
func CanChangeStatus(actor *domain.User) bool {
	return IsModeratorOrAdmin(actor)
}

// CanChangePriority allows moderator/admin only.
func CanChangePriority(actor *domain.User) bool {
	return IsModeratorOrAdmin(actor)
}

// CanCancelTicket allows the owner or moderator/admin. The OPEN-only
// restriction is a lifecycle rule, enforced by the service as an
// invalid transition rather than a permission denial.
func CanCancelTicket(actor *domain.User, ticket *domain.Ticket) bool {
	return Owns(actor, ticket) || IsModeratorOrAdmin(actor)
}

// CanAddMessage allows the owner to post public messages and staff to
// post public or internal ones.
func CanAddMessage(actor *domain.User, ticket *domain.Ticket, internal bool) bool {
	if IsModeratorOrAdmin(actor) {
		return true
	}
	return Owns(actor, ticket) && !internal
}

// CanViewMessage allows the message author, staff, or the ticket owner
// when the message is not internal.
func CanViewMessage(actor *domain.User, ticket *domain.Ticket, msg *domain.TicketMessage) bool {
	if actor == nil || msg == nil {
		return false
	}
	if msg.AuthorID == actor.ID || IsModeratorOrAdmin(actor) {
		return true
	}
	return Owns(actor, ticket) && !msg.IsInternal
}

// CanViewEvents allows the ticket owner or moderator/admin.
func CanViewEvents(actor *domain.User, ticket *domain.Ticket) bool {
	return Owns(actor, ticket) || IsModeratorOrAdmin(actor)
}

// CanViewAnalytics allows moderator/admin only.
func CanViewAnalytics(actor *domain.User) bool {
	return IsModeratorOrAdmin(actor)
}

// CanManageUsers allows admin only.
func CanManageUsers(actor *domain.User) bool {
	return actor != nil && actor.IsAdmin()
}

// CanBeAssignee reports whether the user may appear in assigned_to:
// active moderators and admins only.
func CanBeAssignee(user *domain.User) bool {
	return user != nil && user.IsActive && user.IsModeratorOrAdmin()
}
