package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/internal/domain/repository"
	"github.com/jhoicas/erp-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-pos/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test (requieren TEST_DATABASE_URL; la base se vacía en cada test)
// ──────────────────────────────────────────────────────────────────────────────

func newTestSubstrate(t *testing.T) *postgres.Substrate {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)

	sub := postgres.NewSubstrate(pool)
	require.NoError(t, sub.EnsureSchema(ctx))
	truncateAll(t, pool)
	t.Cleanup(func() { _ = sub.Close() })
	return sub
}

func truncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	for _, s := range record.Stores {
		_, err := pool.Exec(context.Background(), fmt.Sprintf("TRUNCATE %q", string(s)))
		require.NoError(t, err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CRUD
// ──────────────────────────────────────────────────────────────────────────────

func TestSubstrate_PutMergeYGet(t *testing.T) {
	sub := newTestSubstrate(t)
	ctx := context.Background()

	_, err := sub.Put(ctx, record.Products, []record.Record{{"id": "p1", "sku": "SKU-1", "a": 1.0, "created_at": "t0"}})
	require.NoError(t, err)
	out, err := sub.Put(ctx, record.Products, []record.Record{{"id": "p1", "b": 2.0, "created_at": "t1"}})
	require.NoError(t, err)
	assert.Equal(t, "t0", out[0]["created_at"])

	got, err := sub.Get(ctx, record.Products, "p1")
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", got["sku"])
	assert.Equal(t, 1.0, got["a"])
	assert.Equal(t, 2.0, got["b"])

	missing, err := sub.Get(ctx, record.Products, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSubstrate_SKUDuplicado(t *testing.T) {
	sub := newTestSubstrate(t)
	ctx := context.Background()

	_, err := sub.Put(ctx, record.Products, []record.Record{{"id": "p1", "sku": "SKU-1"}})
	require.NoError(t, err)
	_, err = sub.Put(ctx, record.Products, []record.Record{{"id": "p2", "sku": "SKU-1"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.True(t, errors.Is(err, domain.ErrSubstrate))

	all, err := sub.GetAll(ctx, record.Products)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "p1", all[0].ID())
}

func TestSubstrate_DeleteIdempotente(t *testing.T) {
	sub := newTestSubstrate(t)
	ctx := context.Background()

	require.NoError(t, sub.Delete(ctx, record.Customers, "ghost"))
	_, err := sub.Put(ctx, record.Customers, []record.Record{{"id": "c1"}})
	require.NoError(t, err)
	require.NoError(t, sub.Delete(ctx, record.Customers, "c1"))
	require.NoError(t, sub.Delete(ctx, record.Customers, "c1"))

	all, err := sub.GetAll(ctx, record.Customers)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubstrate_RunAtomicRollback(t *testing.T) {
	sub := newTestSubstrate(t)
	ctx := context.Background()

	err := sub.RunAtomic(ctx, func(tx repository.Substrate) error {
		if _, err := tx.Put(ctx, record.Warehouses, []record.Record{{"id": "w1"}}); err != nil {
			return err
		}
		return errors.New("falla a mitad")
	})
	require.Error(t, err)

	got, err := sub.Get(ctx, record.Warehouses, "w1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pool
// ──────────────────────────────────────────────────────────────────────────────

func TestNewPool_NumericComoDecimal(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	defer pool.Close()

	var v decimal.Decimal
	require.NoError(t, pool.QueryRow(ctx, "SELECT 12500.50::numeric").Scan(&v))
	assert.True(t, v.Equal(decimal.RequireFromString("12500.5")))
}

func TestNewPool_DSNInvalido(t *testing.T) {
	_, err := postgres.NewPool(context.Background(), config.DBConfig{DatabaseURL: "postgres://%zz"})
	require.Error(t, err)
}
