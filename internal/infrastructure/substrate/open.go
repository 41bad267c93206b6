// Package substrate elige el sustrato físico al arrancar: indexado (PostgreSQL o SQLite)
// cuando está disponible y, si no, el respaldo clave-valor.
package substrate

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-pos/internal/domain/repository"
	"github.com/jhoicas/erp-pos/internal/infrastructure/kv"
	"github.com/jhoicas/erp-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-pos/internal/infrastructure/sqlite"
	"github.com/jhoicas/erp-pos/pkg/config"
	"github.com/jhoicas/erp-pos/pkg/logger"
)

// Open abre el sustrato según STORAGE_DRIVER. En modo auto prueba PostgreSQL y SQLite
// en ese orden y, si ninguno está configurado o disponible, cae al respaldo con un Warn.
// Un driver explícito que no abre es un error.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.Substrate, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("substrate")
	sc := cfg.Storage

	switch sc.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DB)
	case config.DriverSQLite:
		return sqlite.Open(ctx, sc.SQLitePath)
	case config.DriverLocal:
		return openLocal(ctx, sc)
	}

	if cfg.DB.Configured() {
		sub, err := openPostgres(ctx, cfg.DB)
		if err == nil {
			log.Info().Str("substrate", postgres.Kind).Msg("sustrato indexado activo")
			return sub, nil
		}
		log.Warn().Err(err).Msg("postgres no disponible")
	}
	if sc.SQLitePath != "" {
		sub, err := sqlite.Open(ctx, sc.SQLitePath)
		if err == nil {
			log.Info().Str("substrate", sqlite.Kind).Str("path", sc.SQLitePath).Msg("sustrato indexado activo")
			return sub, nil
		}
		log.Warn().Err(err).Str("path", sc.SQLitePath).Msg("sqlite no disponible")
	}
	sub, err := openLocal(ctx, sc)
	if err != nil {
		return nil, err
	}
	log.Warn().Str("substrate", kv.Kind).Str("backend", sc.LocalBackend).
		Msg("sustrato indexado no disponible, usando respaldo clave-valor")
	return sub, nil
}

func openPostgres(ctx context.Context, db config.DBConfig) (*postgres.Substrate, error) {
	pool, err := postgres.NewPool(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sub := postgres.NewSubstrate(pool)
	if err := sub.EnsureSchema(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return sub, nil
}

func openLocal(ctx context.Context, sc config.StorageConfig) (*kv.Substrate, error) {
	var store kv.KeyValue
	switch sc.LocalBackend {
	case config.BackendRedis:
		rs, err := kv.NewRedisStore(ctx, sc.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open local: %w", err)
		}
		store = rs
	case config.BackendMemory:
		store = kv.NewMemoryStore()
	default:
		fs, err := kv.NewFileStore(sc.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("open local: %w", err)
		}
		store = fs
	}
	return kv.NewSubstrate(store, sc.DBName), nil
}
