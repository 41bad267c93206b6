package entity

// Roles válidos para User.
const (
	RoleSuperAdmin       = "super_admin"
	RoleAdmin            = "admin"
	RoleFinanceManager   = "finance_manager"
	RoleInventoryManager = "inventory_manager"
	RoleSalesManager     = "sales_manager"
	RoleCashier          = "cashier"
	RoleAuditor          = "auditor"
	RoleViewer           = "viewer"
)

// Estados de User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema (almacén users).
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"` // bcrypt, nunca se devuelve por la API
	Role         string `json:"role"`
	Fullname     string `json:"fullname"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}
