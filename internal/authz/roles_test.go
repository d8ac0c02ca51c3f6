package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleSet(t *testing.T) {
	s := NewRoleSet("sales", "audit")
	assert.True(t, s.Has(RoleSales))
	assert.True(t, s.Has(RoleAudit))
	assert.False(t, s.Has(RoleManager))
	assert.ElementsMatch(t, []string{"sales", "audit"}, s.Tags())
}

func TestPrincipalChecks(t *testing.T) {
	sales := Principal{UserID: 1, Roles: NewRoleSet("sales")}
	manager := Principal{UserID: 2, Roles: NewRoleSet("manager")}
	exec := Principal{UserID: 3, Roles: NewRoleSet("executive")}
	audit := Principal{UserID: 4, Roles: NewRoleSet("audit")}
	auditSales := Principal{UserID: 5, Roles: NewRoleSet("audit", "sales")}

	assert.False(t, sales.IsElevated())
	assert.True(t, manager.IsElevated())
	assert.True(t, exec.IsElevated())
	assert.False(t, audit.IsElevated())

	assert.True(t, exec.IsExecutive())
	assert.False(t, manager.IsExecutive())

	assert.True(t, audit.IsReadOnly())
	assert.False(t, auditSales.IsReadOnly(), "audit plus a working role writes as that role")

	assert.True(t, sales.CanTouchDeal(1), "owner")
	assert.False(t, sales.CanTouchDeal(2), "stranger")
	assert.True(t, manager.CanTouchDeal(1), "elevated role touches any deal")
}
