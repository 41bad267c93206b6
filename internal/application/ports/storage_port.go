package ports

import (
	"context"

	"github.com/jhoicas/erp-pos/internal/domain/record"
)

// RecordStore puerto de persistencia que usan los casos de uso de negocio. Lo implementa
// *storage.Manager; los servicios no conocen el sustrato elegido.
type RecordStore interface {
	Save(ctx context.Context, store record.Store, rec record.Record) (record.Record, error)
	SaveMany(ctx context.Context, store record.Store, recs []record.Record) ([]record.Record, error)
	Get(ctx context.Context, store record.Store, id string) (record.Record, error)
	GetAll(ctx context.Context, store record.Store) ([]record.Record, error)
	Delete(ctx context.Context, store record.Store, id string) (bool, error)
	// Atomic aplica las operaciones todo-o-nada si el sustrato lo permite.
	Atomic(ctx context.Context, ops []record.Operation) ([]any, error)
}

// Auditor registra cambios en audit_logs. Los fallos se registran en el log, no se devuelven.
type Auditor interface {
	Record(ctx context.Context, userID, action, resource string, oldValue, newValue any)
}
