package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/erp-pos/internal/domain/record"
)

// SchemaVersion versión del esquema que se declara en cada exportación.
const SchemaVersion = 1

// Claves reservadas del formato de exportación.
const (
	snapshotExportedAt = "exported_at"
	snapshotVersion    = "version"
)

// Snapshot volcado completo: {<store>: Record[], exported_at, version}.
type Snapshot struct {
	Stores     map[record.Store][]record.Record
	ExportedAt string
	Version    int
}

// MarshalJSON aplana los almacenes al primer nivel junto a exported_at y version.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Stores)+2)
	for store, recs := range s.Stores {
		if recs == nil {
			recs = []record.Record{}
		}
		out[string(store)] = recs
	}
	out[snapshotExportedAt] = s.ExportedAt
	out[snapshotVersion] = s.Version
	return json.Marshal(out)
}

// UnmarshalJSON trata toda clave distinta de exported_at/version como lista de registros.
// Los nombres de almacén no se validan aquí; Import los rechaza al guardar.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	*s = Snapshot{Stores: make(map[record.Store][]record.Record, len(raw))}
	for key, val := range raw {
		switch key {
		case snapshotExportedAt:
			if err := json.Unmarshal(val, &s.ExportedAt); err != nil {
				return fmt.Errorf("snapshot exported_at: %w", err)
			}
		case snapshotVersion:
			if err := json.Unmarshal(val, &s.Version); err != nil {
				return fmt.Errorf("snapshot version: %w", err)
			}
		default:
			var recs []record.Record
			if err := json.Unmarshal(val, &recs); err != nil {
				return fmt.Errorf("snapshot %s: %w", key, err)
			}
			s.Stores[record.Store(key)] = recs
		}
	}
	return nil
}

// Export lee todos los almacenes de la lista fija y arma el snapshot.
func (m *Manager) Export(ctx context.Context) (*Snapshot, error) {
	started := time.Now()
	snap := &Snapshot{Stores: make(map[record.Store][]record.Record, len(record.Stores))}
	for _, store := range record.Stores {
		recs, err := m.GetAll(ctx, store)
		if err != nil {
			m.observe("export", "", started, err)
			return nil, fmt.Errorf("export %s: %w", store, err)
		}
		snap.Stores[store] = recs
	}
	snap.ExportedAt = record.Timestamp(m.now())
	snap.Version = SchemaVersion
	m.observe("export", "", started, nil)
	return snap, nil
}

// Import guarda cada registro del snapshot con una operación save por registro a través
// del ejecutor de transacciones. Es aditivo: fusiona con lo existente, no borra nada.
// Devuelve cuántos registros se guardaron antes de terminar o fallar.
func (m *Manager) Import(ctx context.Context, snap *Snapshot) (int, error) {
	if snap == nil {
		return 0, nil
	}
	started := time.Now()
	var ops []record.Operation
	for _, store := range importOrder(snap) {
		for _, rec := range snap.Stores[store] {
			ops = append(ops, record.SaveOp(store, rec))
		}
	}
	results, err := m.Transaction(ctx, ops)
	m.observe("import", "", started, err)
	if err != nil {
		return len(results), fmt.Errorf("import: %w", err)
	}
	m.log.Info().Int("records", len(results)).Str("exported_at", snap.ExportedAt).
		Int("version", snap.Version).Msg("snapshot importado")
	return len(results), nil
}

// importOrder recorre primero los almacenes conocidos en su orden fijo y luego,
// ordenados, los nombres desconocidos (que fallarán con ErrUnknownStore).
func importOrder(snap *Snapshot) []record.Store {
	order := make([]record.Store, 0, len(snap.Stores))
	for _, store := range record.Stores {
		if _, ok := snap.Stores[store]; ok {
			order = append(order, store)
		}
	}
	var unknown []string
	for store := range snap.Stores {
		if !store.Valid() {
			unknown = append(unknown, string(store))
		}
	}
	sort.Strings(unknown)
	for _, s := range unknown {
		order = append(order, record.Store(s))
	}
	return order
}
