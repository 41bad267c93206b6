package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-pos/internal/application/auth"
)

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"super_admin", "anything.at.all", true},
		{"admin", "users.read", true},
		{"admin", "users.delete", false},
		{"admin", "purchases.receive", true},
		{"admin", "audit.read", false},
		{"inventory_manager", "inventory.adjust", true},
		{"inventory_manager", "reports.inventory", true},
		{"inventory_manager", "reports.sales", false},
		{"cashier", "sales.create", true},
		{"cashier", "sales.refund", false},
		{"auditor", "audit.export", true},
		{"viewer", "reports.read", true},
		{"viewer", "reports.sales", false},
		{"ghost", "reports.read", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, auth.HasPermission(tc.role, tc.perm), "%s / %s", tc.role, tc.perm)
	}
}

func TestRolePermissions_Copia(t *testing.T) {
	perms := auth.RolePermissions("viewer")
	perms[0] = "hack.*"
	assert.False(t, auth.HasPermission("viewer", "hack.x"))
	assert.Empty(t, auth.RolePermissions("ghost"))
	assert.Contains(t, auth.Roles(), "super_admin")
}

func TestCanGrant(t *testing.T) {
	assert.True(t, auth.CanGrant("super_admin", "super_admin"))
	assert.True(t, auth.CanGrant("admin", "admin"))
	assert.True(t, auth.CanGrant("admin", "cashier"))
	assert.True(t, auth.CanGrant("admin", "viewer"))
	assert.False(t, auth.CanGrant("admin", "super_admin"))
	assert.False(t, auth.CanGrant("admin", "auditor"))
	assert.False(t, auth.CanGrant("cashier", "sales_manager"))
	assert.False(t, auth.CanGrant("super_admin", "root"))
	assert.False(t, auth.CanGrant("", "viewer"))
}
