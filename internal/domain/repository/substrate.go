package repository

import (
	"context"

	"github.com/jhoicas/erp-pos/internal/domain/record"
)

// Substrate define el puerto de persistencia física (DIP). Hay dos variantes:
// sustrato indexado (PostgreSQL / SQLite) y sustrato clave-valor de respaldo.
// Ambas deben ser indistinguibles para el llamador salvo por las restricciones de unicidad.
type Substrate interface {
	// Kind identifica la variante (postgres, sqlite, local) para logs y métricas.
	Kind() string
	// Put inserta o fusiona (merge superficial por id) los registros en una sola
	// unidad nativa del sustrato y devuelve lo que quedó persistido.
	Put(ctx context.Context, store record.Store, recs []record.Record) ([]record.Record, error)
	// Get devuelve (nil, nil) si el id no existe.
	Get(ctx context.Context, store record.Store, id string) (record.Record, error)
	// GetAll devuelve todos los registros en el orden nativo del sustrato; nunca nil.
	GetAll(ctx context.Context, store record.Store) ([]record.Record, error)
	// Delete es idempotente: borrar un id inexistente no es error.
	Delete(ctx context.Context, store record.Store, id string) error
	Close() error
}

// AtomicSubstrate sustrato con transacciones nativas que abarcan varias operaciones.
// fn recibe un Substrate atado a la transacción; si devuelve error se hace Rollback.
type AtomicSubstrate interface {
	Substrate
	RunAtomic(ctx context.Context, fn func(tx Substrate) error) error
}
