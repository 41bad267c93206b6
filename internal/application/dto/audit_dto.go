package dto

// AuditFilter filtros del registro de auditoría. From/To en formato YYYY-MM-DD (inclusive).
type AuditFilter struct {
	UserID   string `query:"user_id"`
	Action   string `query:"action"`
	Resource string `query:"resource"`
	From     string `query:"from"`
	To       string `query:"to"`
}

// AuditExportRow entrada enriquecida con datos del usuario.
type AuditExportRow struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserRole  string `json:"user_role"`
	Action    string `json:"action"`
	Resource  string `json:"resource"`
	OldValue  any    `json:"old_value"`
	NewValue  any    `json:"new_value"`
	Timestamp string `json:"timestamp"`
	IP        string `json:"ip"`
}
