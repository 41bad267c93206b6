package kv

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-pos/internal/domain/record"
)

func TestRedisStore_Ciclo(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	store := &RedisStore{store: mock}

	_, ok, err := store.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetItem(ctx, "k", "v"))
	v, ok, err := store.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, store.RemoveItem(ctx, "k"))
	_, ok, err = store.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, store.Close())
}

func TestRedisStore_ErrorDeRed(t *testing.T) {
	mock := newMockCmdable()
	mock.fail = errors.New("connection refused")
	sub := NewSubstrate(&RedisStore{store: mock}, "erp_pos_system")

	_, err := sub.GetAll(context.Background(), record.Products)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewRedisStore_SinURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "")
	assert.Error(t, err)
}

type mockCmdable struct {
	data map[string]string
	fail error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.fail)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	if m.fail != nil {
		return redis.NewStringResult("", m.fail)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if m.fail != nil {
		return redis.NewStatusResult("", m.fail)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), m.fail)
}
