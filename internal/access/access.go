// Package access decides whether a principal may run an operation. Every
// check returns nil or an *errs.AppErr with status 403.
package access

import (
	"context"

	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/models"
)

// Named permissions bound to operations.
const (
	PermAddBook    = "catalog.can_add_book"
	PermChangeBook = "catalog.can_change_book"
	PermDeleteBook = "catalog.can_delete_book"

	PermShelfView   = "bookshelf.can_view"
	PermShelfCreate = "bookshelf.can_create"
	PermShelfEdit   = "bookshelf.can_edit"
	PermShelfDelete = "bookshelf.can_delete"
)

// Known lists every permission codename that may be granted.
var Known = []string{
	PermAddBook, PermChangeBook, PermDeleteBook,
	PermShelfView, PermShelfCreate, PermShelfEdit, PermShelfDelete,
}

func IsKnown(perm string) bool {
	for _, k := range Known {
		if k == perm {
			return true
		}
	}
	return false
}

// Principal is the acting caller for one request. The zero value is anonymous.
type Principal struct {
	UserID    int64
	Username  string
	Superuser bool
	role      models.Role
	hasRole   bool
	perms     map[string]struct{}
}

func Anonymous() Principal { return Principal{} }

// NewPrincipal builds a principal from a stored user and its permission grants.
func NewPrincipal(u models.User, perms []string) Principal {
	p := Principal{
		UserID:    u.ID,
		Username:  u.Username,
		Superuser: u.IsSuperuser,
		perms:     make(map[string]struct{}, len(perms)),
	}
	p.role, p.hasRole = u.RoleOf()
	for _, perm := range perms {
		p.perms[perm] = struct{}{}
	}
	return p
}

func (p Principal) Authenticated() bool { return p.UserID != 0 }

// Role is the typed profile role; ok is false without a profile.
func (p Principal) Role() (models.Role, bool) { return p.role, p.hasRole }

// HasPerm reports a grant. Superusers hold every permission.
func (p Principal) HasPerm(perm string) bool {
	if !p.Authenticated() {
		return false
	}
	if p.Superuser {
		return true
	}
	_, ok := p.perms[perm]
	return ok
}

func RequireAuthenticated(p Principal) error {
	if !p.Authenticated() {
		return errs.Forbidden("authentication credentials were not provided")
	}
	return nil
}

func RequirePermission(p Principal, perm string) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.HasPerm(perm) {
		return errs.Forbidden("missing permission " + perm)
	}
	return nil
}

// RequireRole passes when the principal's profile role is one of roles.
func RequireRole(p Principal, roles ...models.Role) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	role, ok := p.Role()
	if !ok {
		return errs.Forbidden("user has no profile")
	}
	for _, r := range roles {
		if role == r {
			return nil
		}
	}
	return errs.Forbidden("role " + string(role) + " may not access this resource")
}

// RequireOwner passes only for the record's author.
func RequireOwner(p Principal, ownerID int64) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if p.UserID != ownerID {
		return errs.Forbidden("only the author may modify this record")
	}
	return nil
}

func RequireSuperuser(p Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.Superuser {
		return errs.Forbidden("superuser required")
	}
	return nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the request principal, anonymous when none was set.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Anonymous()
}
