package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/internal/infrastructure/schema"
)

func TestFor_Products(t *testing.T) {
	tbl := schema.For(record.Products)
	assert.Equal(t, "products", tbl.Name())
	assert.Equal(t, []string{"sku", "barcode"}, tbl.ColumnNames())
	assert.True(t, tbl.Columns[0].Unique)
	assert.Equal(t, "idx_products_sku", tbl.IndexName("sku"))
}

func TestValues_VaciosComoNull(t *testing.T) {
	tbl := schema.For(record.Products)
	vals := tbl.Values(record.Record{"sku": "SKU-1", "barcode": ""})
	assert.Equal(t, []any{"SKU-1", nil}, vals)
}

func TestTables_CubreTodosLosAlmacenes(t *testing.T) {
	tables := schema.Tables()
	assert.Len(t, tables, len(record.Stores))
	assert.Empty(t, schema.For(record.Users).Columns)
	assert.True(t, schema.For(record.Sales).IndexCreatedAt)
}
