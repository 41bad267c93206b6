package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/internal/domain/repository"
)

// Transaction ejecuta las operaciones estrictamente en orden y se detiene en la primera
// que falle o cuyo tipo no sea save/get/delete.
//
// No hay rollback: las operaciones aplicadas antes del fallo quedan aplicadas. Para
// todo-o-nada usar Atomic. Devuelve los resultados de las operaciones completadas
// (también cuando hay error).
func (m *Manager) Transaction(ctx context.Context, ops []record.Operation) ([]any, error) {
	return m.run(ctx, m.substrate, ops)
}

// Atomic ejecuta las operaciones dentro de una única transacción nativa del sustrato
// cuando éste la soporta (PostgreSQL, SQLite): si una falla no queda ninguna aplicada.
// Con el sustrato de respaldo se degrada a Transaction y lo registra como advertencia.
func (m *Manager) Atomic(ctx context.Context, ops []record.Operation) ([]any, error) {
	atomic, ok := m.substrate.(repository.AtomicSubstrate)
	if !ok {
		m.log.Warn().Str("substrate", m.substrate.Kind()).Int("ops", len(ops)).
			Msg("sustrato sin transacciones nativas: ejecución secuencial sin rollback")
		return m.Transaction(ctx, ops)
	}
	var results []any
	err := atomic.RunAtomic(ctx, func(tx repository.Substrate) error {
		var err error
		results, err = m.run(ctx, tx, ops)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (m *Manager) run(ctx context.Context, sub repository.Substrate, ops []record.Operation) ([]any, error) {
	results := make([]any, 0, len(ops))
	for i, op := range ops {
		res, err := m.apply(ctx, sub, op)
		if err != nil {
			return results, fmt.Errorf("operación %d (%s %s): %w", i, op.Kind, op.Store, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (m *Manager) apply(ctx context.Context, sub repository.Substrate, op record.Operation) (any, error) {
	switch op.Kind {
	case record.KindSave:
		if !op.Many && len(op.Data) != 1 {
			return nil, fmt.Errorf("save sin datos: %w", domain.ErrInvalidInput)
		}
		out, err := m.save(ctx, sub, op.Store, op.Data)
		if err != nil {
			return nil, err
		}
		if op.Many {
			return out, nil
		}
		return out[0], nil
	case record.KindGet:
		return m.lookup(ctx, sub, op.Store, op.ID)
	case record.KindDelete:
		return m.delete(ctx, sub, op.Store, op.ID)
	default:
		return nil, &domain.UnknownOperationError{Kind: string(op.Kind)}
	}
}
