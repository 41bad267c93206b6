// Package schema describe la disposición física común a los sustratos indexados
// (PostgreSQL y SQLite): una tabla por almacén con el registro completo serializado
// y columnas extraídas solo para los índices.
package schema

import (
	"fmt"

	"github.com/jhoicas/erp-pos/internal/domain/record"
)

// Column columna indexada extraída del registro.
type Column struct {
	Name   string
	Unique bool
}

// Table disposición de un almacén.
type Table struct {
	Store          record.Store
	Columns        []Column
	IndexCreatedAt bool
}

// Name nombre de la tabla (coincide con el del almacén).
func (t Table) Name() string { return string(t.Store) }

// IndexName nombre estable del índice de una columna.
func (t Table) IndexName(column string) string {
	return fmt.Sprintf("idx_%s_%s", t.Store, column)
}

// ColumnNames nombres de las columnas indexadas en orden.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Values valores de las columnas indexadas para rec. Un campo ausente, vacío o no
// string se guarda como NULL, así no choca con el índice único.
func (t Table) Values(rec record.Record) []any {
	out := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		if s := rec.String(c.Name); s != "" {
			out[i] = s
		}
	}
	return out
}

var layouts = map[record.Store]Table{
	record.Products: {
		Store:   record.Products,
		Columns: []Column{{Name: "sku", Unique: true}, {Name: "barcode"}},
	},
	record.Sales: {
		Store:          record.Sales,
		Columns:        []Column{{Name: "customer_id"}},
		IndexCreatedAt: true,
	},
}

// For devuelve la disposición del almacén; los que no tienen índices secundarios
// solo llevan la clave primaria.
func For(store record.Store) Table {
	if t, ok := layouts[store]; ok {
		return t
	}
	return Table{Store: store}
}

// Tables disposición de todos los almacenes conocidos.
func Tables() []Table {
	out := make([]Table, 0, len(record.Stores))
	for _, s := range record.Stores {
		out = append(out, For(s))
	}
	return out
}
