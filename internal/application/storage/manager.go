// Package storage contiene el StorageManager: acceso CRUD uniforme a los almacenes con
// independencia del sustrato físico elegido al arrancar, el ejecutor de transacciones,
// la exportación/importación de snapshots y la carga de datos iniciales.
package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/internal/domain/repository"
	"github.com/jhoicas/erp-pos/pkg/logger"
	"github.com/jhoicas/erp-pos/pkg/metrics"
)

// Options dependencias opcionales del Manager.
type Options struct {
	Logger  *logger.Logger
	Metrics *metrics.StorageMetrics
	Now     func() time.Time // reloj inyectable (tests)
	NewID   func() string    // generador de ids (por defecto UUIDv4)
}

// Manager fachada de persistencia. Se construye una vez con el sustrato elegido y se
// inyecta en los casos de uso; no existe instancia global.
type Manager struct {
	substrate repository.Substrate
	log       *logger.Logger
	metrics   *metrics.StorageMetrics
	now       func() time.Time
	newID     func() string
}

// NewManager construye el Manager sobre el sustrato indicado.
func NewManager(substrate repository.Substrate, opts Options) *Manager {
	m := &Manager{
		substrate: substrate,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if m.log == nil {
		m.log = logger.Nop()
	}
	m.log = m.log.Component("storage")
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m
}

// SubstrateKind indica qué sustrato quedó activo (postgres, sqlite, local).
func (m *Manager) SubstrateKind() string {
	return m.substrate.Kind()
}

// Save guarda un registro. Si falta id se genera; created_at se fija solo si falta;
// updated_at se refresca siempre. Un registro existente con el mismo id se fusiona
// campo a campo. Devuelve el mismo mapa recibido, ya mutado.
func (m *Manager) Save(ctx context.Context, store record.Store, rec record.Record) (record.Record, error) {
	out, err := m.save(ctx, m.substrate, store, []record.Record{rec})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// SaveMany guarda una secuencia de registros en una sola llamada al sustrato.
func (m *Manager) SaveMany(ctx context.Context, store record.Store, recs []record.Record) ([]record.Record, error) {
	return m.save(ctx, m.substrate, store, recs)
}

// Get devuelve el registro con ese id o (nil, nil) si no existe.
func (m *Manager) Get(ctx context.Context, store record.Store, id string) (record.Record, error) {
	return m.get(ctx, m.substrate, store, id)
}

// GetAll devuelve todos los registros del almacén. El orden depende del sustrato:
// quien necesite orden debe ordenar explícitamente.
func (m *Manager) GetAll(ctx context.Context, store record.Store) ([]record.Record, error) {
	return m.getAll(ctx, m.substrate, store)
}

// Lookup es la forma de get con id opcional: con id devuelve record.Record (o nil);
// sin id devuelve []record.Record como GetAll.
func (m *Manager) Lookup(ctx context.Context, store record.Store, id string) (any, error) {
	return m.lookup(ctx, m.substrate, store, id)
}

// Delete elimina el registro. Es idempotente: devuelve true aunque no existiera.
func (m *Manager) Delete(ctx context.Context, store record.Store, id string) (bool, error) {
	return m.delete(ctx, m.substrate, store, id)
}

func (m *Manager) save(ctx context.Context, sub repository.Substrate, store record.Store, recs []record.Record) ([]record.Record, error) {
	started := time.Now()
	out, err := m.doSave(ctx, sub, store, recs)
	m.observe("save", store, started, err)
	return out, err
}

func (m *Manager) doSave(ctx context.Context, sub repository.Substrate, store record.Store, recs []record.Record) ([]record.Record, error) {
	if err := checkStore(store); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return recs, nil
	}
	now := record.Timestamp(m.now())
	for i, rec := range recs {
		if rec == nil {
			return nil, fmt.Errorf("registro %d nulo: %w", i, domain.ErrInvalidInput)
		}
		rec[record.FieldID] = m.normalizeID(rec[record.FieldID])
		if v, ok := rec[record.FieldCreatedAt]; !ok || v == nil || v == "" {
			rec[record.FieldCreatedAt] = now
		}
		rec[record.FieldUpdatedAt] = now
	}
	stored, err := sub.Put(ctx, store, recs)
	if err != nil {
		m.log.Error().Err(err).Str("op", "save").Str("store", string(store)).
			Str("substrate", sub.Kind()).Int("records", len(recs)).Msg("el sustrato rechazó la escritura")
		return nil, err
	}
	// El sustrato conserva el created_at original al fusionar; reflejarlo en lo devuelto.
	for i := range recs {
		if i < len(stored) && stored[i] != nil {
			if created, ok := stored[i][record.FieldCreatedAt]; ok {
				recs[i][record.FieldCreatedAt] = created
			}
		}
	}
	return recs, nil
}

func (m *Manager) get(ctx context.Context, sub repository.Substrate, store record.Store, id string) (record.Record, error) {
	started := time.Now()
	rec, err := m.doGet(ctx, sub, store, id)
	m.observe("get", store, started, err)
	return rec, err
}

func (m *Manager) doGet(ctx context.Context, sub repository.Substrate, store record.Store, id string) (record.Record, error) {
	if err := checkStore(store); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("get %s: id vacío: %w", store, domain.ErrInvalidInput)
	}
	rec, err := sub.Get(ctx, store, id)
	if err != nil {
		m.logFailure(err, "get", store, sub)
		return nil, err
	}
	return rec, nil
}

func (m *Manager) getAll(ctx context.Context, sub repository.Substrate, store record.Store) ([]record.Record, error) {
	started := time.Now()
	recs, err := m.doGetAll(ctx, sub, store)
	m.observe("get_all", store, started, err)
	return recs, err
}

func (m *Manager) doGetAll(ctx context.Context, sub repository.Substrate, store record.Store) ([]record.Record, error) {
	if err := checkStore(store); err != nil {
		return nil, err
	}
	recs, err := sub.GetAll(ctx, store)
	if err != nil {
		m.logFailure(err, "get_all", store, sub)
		return nil, err
	}
	if recs == nil {
		recs = []record.Record{}
	}
	return recs, nil
}

func (m *Manager) lookup(ctx context.Context, sub repository.Substrate, store record.Store, id string) (any, error) {
	if id == "" {
		return m.getAll(ctx, sub, store)
	}
	rec, err := m.get(ctx, sub, store, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return rec, nil
}

func (m *Manager) delete(ctx context.Context, sub repository.Substrate, store record.Store, id string) (bool, error) {
	started := time.Now()
	err := m.doDelete(ctx, sub, store, id)
	m.observe("delete", store, started, err)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) doDelete(ctx context.Context, sub repository.Substrate, store record.Store, id string) error {
	if err := checkStore(store); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("delete %s: id vacío: %w", store, domain.ErrInvalidInput)
	}
	if err := sub.Delete(ctx, store, id); err != nil {
		m.logFailure(err, "delete", store, sub)
		return err
	}
	return nil
}

// normalizeID conserva ids string no vacíos, convierte ids numéricos y genera uno nuevo en otro caso.
func (m *Manager) normalizeID(v any) string {
	switch id := v.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	}
	return m.newID()
}

func (m *Manager) logFailure(err error, op string, store record.Store, sub repository.Substrate) {
	m.log.Error().Err(err).Str("op", op).Str("store", string(store)).
		Str("substrate", sub.Kind()).Msg("fallo del sustrato")
}

func (m *Manager) observe(op string, store record.Store, started time.Time, err error) {
	m.metrics.Observe(op, string(store), started, err)
}

func checkStore(store record.Store) error {
	if !store.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStore, string(store))
	}
	return nil
}
