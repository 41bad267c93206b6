package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/internal/domain/repository"
	"github.com/jhoicas/erp-pos/internal/infrastructure/schema"
)

// Kind nombre del sustrato en logs y métricas.
const Kind = "postgres"

var _ repository.AtomicSubstrate = (*Substrate)(nil)

// Substrate sustrato indexado sobre PostgreSQL. Cada almacén es una tabla con el
// registro completo en data (JSONB) y columnas extraídas para los índices.
type Substrate struct {
	q    Querier
	pool *pgxpool.Pool // nil cuando está atado a una transacción
}

// NewSubstrate construye el sustrato sobre el pool. Llamar EnsureSchema antes de usarlo.
func NewSubstrate(pool *pgxpool.Pool) *Substrate {
	return &Substrate{q: pool, pool: pool}
}

func (s *Substrate) Kind() string { return Kind }

// EnsureSchema crea tablas e índices si no existen. Es idempotente.
func (s *Substrate) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements() {
		if _, err := s.q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func schemaStatements() []string {
	var stmts []string
	for _, t := range schema.Tables() {
		table := ident(t.Name())
		cols := []string{"id TEXT PRIMARY KEY", "data JSONB NOT NULL", "created_at TEXT", "updated_at TEXT"}
		for _, c := range t.Columns {
			cols = append(cols, ident(c.Name)+" TEXT")
		}
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(cols, ", ")))
		for _, c := range t.Columns {
			unique := ""
			if c.Unique {
				unique = "UNIQUE "
			}
			stmts = append(stmts, fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
				unique, ident(t.IndexName(c.Name)), table, ident(c.Name)))
		}
		if t.IndexCreatedAt {
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (created_at)",
				ident(t.IndexName("created_at")), table))
		}
	}
	return stmts
}

// Put fusiona y escribe los registros en una sola transacción (o savepoint si ya hay una).
func (s *Substrate) Put(ctx context.Context, store record.Store, recs []record.Record) ([]record.Record, error) {
	tx, err := s.q.Begin(ctx)
	if err != nil {
		return nil, s.fail("put", store, fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t := schema.For(store)
	out := make([]record.Record, len(recs))
	for i, rec := range recs {
		old, err := getRecord(ctx, tx, t, rec.ID(), true)
		if err != nil {
			return nil, s.fail("put", store, err)
		}
		merged := record.Merge(old, rec)
		if err := upsert(ctx, tx, t, merged); err != nil {
			return nil, s.fail("put", store, err)
		}
		out[i] = merged
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, s.fail("put", store, fmt.Errorf("commit transaction: %w", err))
	}
	return out, nil
}

func (s *Substrate) Get(ctx context.Context, store record.Store, id string) (record.Record, error) {
	rec, err := getRecord(ctx, s.q, schema.For(store), id, false)
	if err != nil {
		return nil, s.fail("get", store, err)
	}
	return rec, nil
}

// GetAll devuelve los registros ordenados por clave primaria.
func (s *Substrate) GetAll(ctx context.Context, store record.Store) ([]record.Record, error) {
	query := fmt.Sprintf("SELECT data FROM %s ORDER BY id", ident(string(store)))
	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, s.fail("get_all", store, fmt.Errorf("list records: %w", err))
	}
	defer rows.Close()
	out := []record.Record{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, s.fail("get_all", store, fmt.Errorf("scan record: %w", err))
		}
		rec, err := decode(data)
		if err != nil {
			return nil, s.fail("get_all", store, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("get_all", store, fmt.Errorf("list records: %w", err))
	}
	return out, nil
}

func (s *Substrate) Delete(ctx context.Context, store record.Store, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", ident(string(store)))
	if _, err := s.q.Exec(ctx, query, id); err != nil {
		return s.fail("delete", store, fmt.Errorf("delete record: %w", err))
	}
	return nil
}

// RunAtomic ejecuta fn con un sustrato atado a una transacción; Commit si fn no falla.
func (s *Substrate) RunAtomic(ctx context.Context, fn func(tx repository.Substrate) error) error {
	tx, err := s.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Substrate{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Substrate) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func getRecord(ctx context.Context, q Querier, t schema.Table, id string, forUpdate bool) (record.Record, error) {
	query := fmt.Sprintf("SELECT data FROM %s WHERE id = $1", ident(t.Name()))
	if forUpdate {
		query += " FOR UPDATE"
	}
	var data []byte
	err := q.QueryRow(ctx, query, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return decode(data)
}

func upsert(ctx context.Context, q Querier, t schema.Table, rec record.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	cols := append([]string{"id", "data", "created_at", "updated_at"}, t.ColumnNames()...)
	args := append([]any{rec.ID(), string(data), rec.String(record.FieldCreatedAt), rec.String(record.FieldUpdatedAt)}, t.Values(rec)...)

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	var updates []string
	for i, c := range cols {
		quoted[i] = ident(c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if c == "data" {
			placeholders[i] += "::jsonb"
		}
		if c != "id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", quoted[i], quoted[i]))
		}
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		ident(t.Name()), strings.Join(quoted, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))
	if _, err := q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func decode(data []byte) (record.Record, error) {
	var rec record.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (s *Substrate) fail(op string, store record.Store, err error) error {
	return &domain.SubstrateError{Substrate: Kind, Op: op, Store: string(store), Err: err}
}
