package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/internal/domain/repository"
	"github.com/jhoicas/erp-pos/internal/infrastructure/schema"
)

// Kind nombre del sustrato en logs y métricas.
const Kind = "sqlite"

var _ repository.AtomicSubstrate = (*Substrate)(nil)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Substrate sustrato indexado embebido. Con tx != nil está atado a una transacción de RunAtomic.
type Substrate struct {
	q  querier
	db *sql.DB
	tx *sql.Tx
}

func (s *Substrate) Kind() string { return Kind }

// EnsureSchema crea tablas e índices si no existen.
func (s *Substrate) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements() {
		if _, err := s.q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func schemaStatements() []string {
	var stmts []string
	for _, t := range schema.Tables() {
		cols := []string{"id TEXT PRIMARY KEY", "data TEXT NOT NULL", "created_at TEXT", "updated_at TEXT"}
		for _, c := range t.Columns {
			cols = append(cols, quote(c.Name)+" TEXT")
		}
		table := quote(t.Name())
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(cols, ", ")))
		for _, c := range t.Columns {
			unique := ""
			if c.Unique {
				unique = "UNIQUE "
			}
			stmts = append(stmts, fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
				unique, quote(t.IndexName(c.Name)), table, quote(c.Name)))
		}
		if t.IndexCreatedAt {
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (created_at)",
				quote(t.IndexName("created_at")), table))
		}
	}
	return stmts
}

// Put fusiona y escribe los registros como una unidad: transacción propia o, dentro
// de RunAtomic, un savepoint.
func (s *Substrate) Put(ctx context.Context, store record.Store, recs []record.Record) ([]record.Record, error) {
	var out []record.Record
	err := s.unit(ctx, func(q querier) error {
		var err error
		out, err = putAll(ctx, q, schema.For(store), recs)
		return err
	})
	if err != nil {
		return nil, s.fail("put", store, err)
	}
	return out, nil
}

func putAll(ctx context.Context, q querier, t schema.Table, recs []record.Record) ([]record.Record, error) {
	out := make([]record.Record, len(recs))
	for i, rec := range recs {
		old, err := getRecord(ctx, q, t, rec.ID())
		if err != nil {
			return nil, err
		}
		merged := record.Merge(old, rec)
		if err := upsert(ctx, q, t, merged); err != nil {
			return nil, err
		}
		out[i] = merged
	}
	return out, nil
}

func (s *Substrate) unit(ctx context.Context, fn func(q querier) error) error {
	if s.tx != nil {
		if _, err := s.tx.ExecContext(ctx, "SAVEPOINT put_unit"); err != nil {
			return fmt.Errorf("savepoint: %w", err)
		}
		if err := fn(s.tx); err != nil {
			_, _ = s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT put_unit")
			_, _ = s.tx.ExecContext(ctx, "RELEASE SAVEPOINT put_unit")
			return err
		}
		if _, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT put_unit"); err != nil {
			return fmt.Errorf("release savepoint: %w", err)
		}
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Substrate) Get(ctx context.Context, store record.Store, id string) (record.Record, error) {
	rec, err := getRecord(ctx, s.q, schema.For(store), id)
	if err != nil {
		return nil, s.fail("get", store, err)
	}
	return rec, nil
}

// GetAll devuelve los registros ordenados por clave primaria.
func (s *Substrate) GetAll(ctx context.Context, store record.Store) ([]record.Record, error) {
	rows, err := s.q.QueryContext(ctx, fmt.Sprintf("SELECT data FROM %s ORDER BY id", quote(string(store))))
	if err != nil {
		return nil, s.fail("get_all", store, fmt.Errorf("list records: %w", err))
	}
	defer rows.Close()
	out := []record.Record{}
	for rows.Next() {
		var data string
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
	if _, err := s.q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", quote(string(store))), id); err != nil {
		return s.fail("delete", store, fmt.Errorf("delete record: %w", err))
	}
	return nil
}

// RunAtomic ejecuta fn dentro de una transacción; Rollback si fn devuelve error.
func (s *Substrate) RunAtomic(ctx context.Context, fn func(tx repository.Substrate) error) error {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Substrate{q: tx, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Substrate) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func getRecord(ctx context.Context, q querier, t schema.Table, id string) (record.Record, error) {
	var data string
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT data FROM %s WHERE id = ?", quote(t.Name())), id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return decode(data)
}

func upsert(ctx context.Context, q querier, t schema.Table, rec record.Record) error {
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
		quoted[i] = quote(c)
		placeholders[i] = "?"
		if c != "id" {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", quoted[i], quoted[i]))
		}
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		quote(t.Name()), strings.Join(quoted, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// isUniqueViolation reconoce el mensaje de SQLite para índices UNIQUE.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func decode(data string) (record.Record, error) {
	var rec record.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *Substrate) fail(op string, store record.Store, err error) error {
	return &domain.SubstrateError{Substrate: Kind, Op: op, Store: string(store), Err: err}
}
