package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/internal/domain/repository"
)

// Kind nombre del sustrato de respaldo en logs y métricas.
const Kind = "local"

var _ repository.Substrate = (*Substrate)(nil)

// Substrate guarda cada almacén como arreglo JSON en orden de inserción. No aplica
// restricciones de unicidad más allá del id. Cada escritura es leer-modificar-escribir
// completo del arreglo, serializado por un mutex.
type Substrate struct {
	kv     KeyValue
	dbName string
	mu     sync.Mutex
}

func NewSubstrate(kv KeyValue, dbName string) *Substrate {
	return &Substrate{kv: kv, dbName: dbName}
}

func (s *Substrate) Kind() string { return Kind }

// Key clave bajo la que se persiste el almacén.
func (s *Substrate) Key(store record.Store) string {
	return s.dbName + "_" + string(store)
}

func (s *Substrate) Put(ctx context.Context, store record.Store, recs []record.Record) ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx, store, "put")
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(all))
	for i, r := range all {
		index[r.ID()] = i
	}
	out := make([]record.Record, len(recs))
	for i, rec := range recs {
		id := rec.ID()
		if pos, ok := index[id]; ok {
			all[pos] = record.Merge(all[pos], rec)
			out[i] = all[pos].Clone()
			continue
		}
		stored := rec.Clone()
		index[id] = len(all)
		all = append(all, stored)
		out[i] = stored.Clone()
	}
	if err := s.persist(ctx, store, all); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Substrate) Get(ctx context.Context, store record.Store, id string) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load(ctx, store, "get")
	if err != nil {
		return nil, err
	}
	for _, r := range all {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, nil
}

func (s *Substrate) GetAll(ctx context.Context, store record.Store) ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, store, "get_all")
}

func (s *Substrate) Delete(ctx context.Context, store record.Store, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load(ctx, store, "delete")
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, r := range all {
		if r.ID() != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	return s.persist(ctx, store, kept)
}

func (s *Substrate) Close() error {
	return s.kv.Close()
}

func (s *Substrate) load(ctx context.Context, store record.Store, op string) ([]record.Record, error) {
	raw, ok, err := s.kv.GetItem(ctx, s.Key(store))
	if err != nil {
		return nil, s.fail(op, store, err)
	}
	all := []record.Record{}
	if !ok || raw == "" {
		return all, nil
	}
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, s.fail(op, store, fmt.Errorf("contenido corrupto: %w", err))
	}
	if all == nil {
		all = []record.Record{}
	}
	return all, nil
}

func (s *Substrate) persist(ctx context.Context, store record.Store, all []record.Record) error {
	b, err := json.Marshal(all)
	if err != nil {
		return s.fail("put", store, err)
	}
	if err := s.kv.SetItem(ctx, s.Key(store), string(b)); err != nil {
		return s.fail("put", store, err)
	}
	return nil
}

func (s *Substrate) fail(op string, store record.Store, err error) error {
	return &domain.SubstrateError{Substrate: Kind, Op: op, Store: string(store), Err: err}
}
