package entity

// Acciones registradas en auditoría.
const (
	AuditCreate = "CREATE"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
	AuditImport = "IMPORT"
)

// AuditLog entrada del registro de auditoría (almacén audit_logs).
type AuditLog struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	Resource  string `json:"resource"`
	OldValue  any    `json:"old_value"`
	NewValue  any    `json:"new_value"`
	Timestamp string `json:"timestamp"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
	CreatedAt string `json:"created_at,omitempty"`
}
