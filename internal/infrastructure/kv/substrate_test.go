package kv_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/internal/infrastructure/kv"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sustrato sobre MemoryStore
// ──────────────────────────────────────────────────────────────────────────────

func TestSubstrate_PutYGet(t *testing.T) {
	ctx := context.Background()
	sub := kv.NewSubstrate(kv.NewMemoryStore(), "erp_pos_system")

	out, err := sub.Put(ctx, record.Products, []record.Record{{"id": "p1", "sku": "SKU-1", "created_at": "t0"}})
	require.NoError(t, err)
	require.Len(t, out, 1)

	got, err := sub.Get(ctx, record.Products, "p1")
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", got["sku"])

	missing, err := sub.Get(ctx, record.Products, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSubstrate_MergeConservaCamposYCreatedAt(t *testing.T) {
	ctx := context.Background()
	sub := kv.NewSubstrate(kv.NewMemoryStore(), "erp_pos_system")

	_, err := sub.Put(ctx, record.Products, []record.Record{{"id": "p1", "a": 1.0, "b": 2.0, "created_at": "t0"}})
	require.NoError(t, err)
	out, err := sub.Put(ctx, record.Products, []record.Record{{"id": "p1", "b": 3.0, "c": 4.0, "created_at": "t1"}})
	require.NoError(t, err)
	assert.Equal(t, "t0", out[0]["created_at"])

	got, err := sub.Get(ctx, record.Products, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got["a"])
	assert.Equal(t, 3.0, got["b"])
	assert.Equal(t, 4.0, got["c"])
	assert.Equal(t, "t0", got["created_at"])
}

func TestSubstrate_GetAllOrdenDeInsercion(t *testing.T) {
	ctx := context.Background()
	sub := kv.NewSubstrate(kv.NewMemoryStore(), "erp_pos_system")

	empty, err := sub.GetAll(ctx, record.Purchases)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = sub.Put(ctx, record.Sales, []record.Record{{"id": "z"}, {"id": "a"}})
	require.NoError(t, err)
	_, err = sub.Put(ctx, record.Sales, []record.Record{{"id": "m"}})
	require.NoError(t, err)

	all, err := sub.GetAll(ctx, record.Sales)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
}

func TestSubstrate_DeleteIdempotente(t *testing.T) {
	ctx := context.Background()
	sub := kv.NewSubstrate(kv.NewMemoryStore(), "erp_pos_system")

	_, err := sub.Put(ctx, record.Customers, []record.Record{{"id": "c1"}, {"id": "c2"}})
	require.NoError(t, err)

	require.NoError(t, sub.Delete(ctx, record.Customers, "c1"))
	require.NoError(t, sub.Delete(ctx, record.Customers, "c1"))
	require.NoError(t, sub.Delete(ctx, record.Customers, "ghost"))

	all, err := sub.GetAll(ctx, record.Customers)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "c2", all[0].ID())
}

func TestSubstrate_SinUnicidadDeSKU(t *testing.T) {
	ctx := context.Background()
	sub := kv.NewSubstrate(kv.NewMemoryStore(), "erp_pos_system")

	_, err := sub.Put(ctx, record.Products, []record.Record{{"id": "p1", "sku": "SKU-1"}})
	require.NoError(t, err)
	_, err = sub.Put(ctx, record.Products, []record.Record{{"id": "p2", "sku": "SKU-1"}})
	require.NoError(t, err)

	all, err := sub.GetAll(ctx, record.Products)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSubstrate_LayoutPersistido(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	sub := kv.NewSubstrate(mem, "erp_pos_system")

	_, err := sub.Put(ctx, record.Products, []record.Record{{"id": "p1", "sku": "SKU-1"}})
	require.NoError(t, err)
	assert.Equal(t, "erp_pos_system_products", sub.Key(record.Products))

	raw, ok, err := mem.GetItem(ctx, "erp_pos_system_products")
	require.NoError(t, err)
	require.True(t, ok)
	var arr []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &arr))
	require.Len(t, arr, 1)
	assert.Equal(t, "SKU-1", arr[0]["sku"])
}

func TestSubstrate_ContenidoCorrupto(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	require.NoError(t, mem.SetItem(ctx, "erp_pos_system_sales", "{no es json"))
	sub := kv.NewSubstrate(mem, "erp_pos_system")

	_, err := sub.GetAll(ctx, record.Sales)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSubstrate))
	var se *domain.SubstrateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "local", se.Substrate)
	assert.Equal(t, "sales", se.Store)
}

// ──────────────────────────────────────────────────────────────────────────────
// FileStore
// ──────────────────────────────────────────────────────────────────────────────

func TestFileStore_Ciclo(t *testing.T) {
	ctx := context.Background()
	fs, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := fs.GetItem(ctx, "erp_pos_system_users")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fs.SetItem(ctx, "erp_pos_system_users", `[{"id":"u1"}]`))
	v, ok, err := fs.GetItem(ctx, "erp_pos_system_users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"u1"}]`, v)

	require.NoError(t, fs.RemoveItem(ctx, "erp_pos_system_users"))
	require.NoError(t, fs.RemoveItem(ctx, "erp_pos_system_users"))
	_, ok, err = fs.GetItem(ctx, "erp_pos_system_users")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_ClaveInvalida(t *testing.T) {
	fs, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)
	err = fs.SetItem(context.Background(), "../fuera", "x")
	assert.ErrorIs(t, err, kv.ErrInvalidKey)
}

func TestFileStore_PersisteEntreInstancias(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs1, err := kv.NewFileStore(dir)
	require.NoError(t, err)
	_, err = kv.NewSubstrate(fs1, "erp_pos_system").Put(ctx, record.Warehouses, []record.Record{{"id": "w1"}})
	require.NoError(t, err)

	fs2, err := kv.NewFileStore(dir)
	require.NoError(t, err)
	got, err := kv.NewSubstrate(fs2, "erp_pos_system").Get(ctx, record.Warehouses, "w1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "w1", got.ID())
}

func TestFileStore_SinTemporalesHuerfanos(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := kv.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, fs.SetItem(ctx, "erp_pos_system_sales", `[{"id":"s1"}]`))
	require.NoError(t, fs.SetItem(ctx, "erp_pos_system_sales", `[{"id":"s2"}]`))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "erp_pos_system_sales.json", entries[0].Name())

	// El destino es un directorio no vacío: el rename final falla y el temporal se borra.
	blocked := filepath.Join(dir, "erp_pos_system_users.json")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "x"), 0o755))
	assert.Error(t, fs.SetItem(ctx, "erp_pos_system_users", `[{"id":"u1"}]`))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	v, ok, err := fs.GetItem(ctx, "erp_pos_system_sales")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"s2"}]`, v)
}
