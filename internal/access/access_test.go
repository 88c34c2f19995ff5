package access

import (
	"context"
	"testing"

	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/models"
	"github.com/stretchr/testify/assert"
)

func member(id int64, perms ...string) Principal {
	return NewPrincipal(models.User{
		ID:       id,
		Username: "member",
		Profile:  &models.UserProfile{UserID: id, Role: models.RoleMember},
	}, perms)
}

func TestAnonymousIsForbiddenEverywhere(t *testing.T) {
	p := Anonymous()
	for _, err := range []error{
		RequireAuthenticated(p),
		RequirePermission(p, PermAddBook),
		RequireRole(p, models.RoleMember),
		RequireOwner(p, 0),
		RequireSuperuser(p),
	} {
		assert.True(t, errs.IsForbidden(err))
	}
}

func TestRequirePermission(t *testing.T) {
	assert.NoError(t, RequirePermission(member(1, PermAddBook), PermAddBook))
	assert.True(t, errs.IsForbidden(RequirePermission(member(1), PermAddBook)))

	super := NewPrincipal(models.User{ID: 2, IsSuperuser: true}, nil)
	assert.NoError(t, RequirePermission(super, PermShelfDelete))
}

func TestRequireRoleUsesTypedLookup(t *testing.T) {
	p := member(1)
	role, ok := p.Role()
	assert.True(t, ok)
	assert.Equal(t, models.RoleMember, role)

	assert.NoError(t, RequireRole(p, models.RoleMember))
	assert.NoError(t, RequireRole(p, models.RoleAdmin, models.RoleMember))
	assert.True(t, errs.IsForbidden(RequireRole(p, models.RoleAdmin)))

	noProfile := NewPrincipal(models.User{ID: 3}, nil)
	_, ok = noProfile.Role()
	assert.False(t, ok)
	assert.True(t, errs.IsForbidden(RequireRole(noProfile, models.RoleMember)))

	// Superusers do not bypass role views.
	super := NewPrincipal(models.User{ID: 4, IsSuperuser: true, Profile: &models.UserProfile{Role: models.RoleMember}}, nil)
	assert.True(t, errs.IsForbidden(RequireRole(super, models.RoleAdmin)))
}

func TestRequireOwner(t *testing.T) {
	assert.NoError(t, RequireOwner(member(7), 7))
	assert.True(t, errs.IsForbidden(RequireOwner(member(8), 7)))
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, FromContext(ctx).Authenticated())

	ctx = WithPrincipal(ctx, member(5))
	assert.Equal(t, int64(5), FromContext(ctx).UserID)
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown(PermShelfView))
	assert.False(t, IsKnown("bookshelf.can_fly"))
}
