package auth

import (
	"sort"
	"strings"

	"github.com/jhoicas/erp-pos/internal/domain/entity"
)

// Wildcard permiso total.
const Wildcard = "*"

// rolePermissions permisos por rol. "x.*" concede todo lo que empiece por "x.".
var rolePermissions = map[string][]string{
	entity.RoleSuperAdmin:       {Wildcard},
	entity.RoleAdmin:            {"users.read", "users.create", "users.update", "inventory.*", "sales.*", "purchases.*", "reports.*"},
	entity.RoleFinanceManager:   {"sales.read", "purchases.read", "reports.*"},
	entity.RoleInventoryManager: {"inventory.*", "purchases.read", "reports.inventory"},
	entity.RoleSalesManager:     {"sales.*", "inventory.read", "reports.sales"},
	entity.RoleCashier:          {"sales.create", "sales.read_own", "inventory.read"},
	entity.RoleAuditor:          {"reports.*", "audit.*"},
	entity.RoleViewer:           {"reports.read"},
}

// RolePermissions permisos declarados para el rol (vacío si el rol no existe).
func RolePermissions(role string) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// ValidRole indica si el rol está definido.
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// Roles lista ordenada de roles definidos.
func Roles() []string {
	out := make([]string, 0, len(rolePermissions))
	for r := range rolePermissions {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// HasPermission true si el rol concede perm de forma exacta, por "*" o por prefijo "x.*".
func HasPermission(role, perm string) bool {
	for _, p := range rolePermissions[role] {
		if p == Wildcard || p == perm {
			return true
		}
		if prefix, ok := strings.CutSuffix(p, "*"); ok && strings.HasPrefix(perm, prefix) {
			return true
		}
	}
	return false
}

// CanGrant true si actorRole ya tiene todos los permisos de role. Un usuario no puede
// crear ni administrar cuentas con más permisos que los suyos.
func CanGrant(actorRole, role string) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if !HasPermission(actorRole, p) {
			return false
		}
	}
	return true
}
