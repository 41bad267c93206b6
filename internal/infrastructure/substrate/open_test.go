package substrate_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-pos/internal/infrastructure/substrate"
	"github.com/jhoicas/erp-pos/pkg/config"
	"github.com/jhoicas/erp-pos/pkg/logger"
)

func baseConfig(t *testing.T) *config.Config {
	return &config.Config{Storage: config.StorageConfig{
		Driver:       config.DriverAuto,
		DBName:       "erp_pos_system",
		LocalBackend: config.BackendFile,
		LocalDir:     t.TempDir(),
	}}
}

func TestOpen_AutoSinIndexadoCaeAlRespaldo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromZerolog(zerolog.New(&buf))

	sub, err := substrate.Open(context.Background(), baseConfig(t), log)
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, "local", sub.Kind())
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestOpen_AutoConSQLite(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "erp.db")

	sub, err := substrate.Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer sub.Close()
	assert.Equal(t, "sqlite", sub.Kind())
}

func TestOpen_SQLiteExplicitoSinRutaFalla(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage.Driver = config.DriverSQLite

	_, err := substrate.Open(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestOpen_LocalMemoria(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage.Driver = config.DriverLocal
	cfg.Storage.LocalBackend = config.BackendMemory

	sub, err := substrate.Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", sub.Kind())
}

func TestOpen_RedisSinURLFalla(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage.Driver = config.DriverLocal
	cfg.Storage.LocalBackend = config.BackendRedis

	_, err := substrate.Open(context.Background(), cfg, nil)
	assert.Error(t, err)
}
