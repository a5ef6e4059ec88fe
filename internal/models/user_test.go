package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePredicates(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleModerator, RoleAdmin} {
		for _, superuser := range []bool{false, true} {
			u := &User{Role: role, IsSuperuser: superuser}
			assert.Equal(t, role == RoleAdmin || superuser, u.IsAdmin(), "%s superuser=%v", role, superuser)
			assert.Equal(t, role == RoleModerator, u.IsModerator(), "%s superuser=%v", role, superuser)
			assert.Equal(t, u.IsAdmin() || u.IsModerator(), u.IsStaff(), "%s superuser=%v", role, superuser)
		}
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleModerator.Valid())
	assert.False(t, Role("owner").Valid())
	assert.False(t, Role("").Valid())
}

func TestOwnerID(t *testing.T) {
	assert.Equal(t, uint(3), (&User{ID: 3}).OwnerID())
	assert.Equal(t, uint(7), (&Review{ID: 1, AuthorID: 7}).OwnerID())
	assert.Equal(t, uint(8), (&Comment{ID: 2, AuthorID: 8}).OwnerID())
}
