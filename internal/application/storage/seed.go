package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-pos/internal/domain/entity"
	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// Ids fijos de los datos iniciales.
const (
	SeedAdminID     = "user_001"
	SeedProductID   = "prod_001"
	SeedWarehouseID = "warehouse_1"
)

// SeedConfig parámetros de la carga inicial.
type SeedConfig struct {
	AdminPassword string
}

// Seeder puebla datos de referencia mínimos la primera vez (almacén users vacío).
// No es un framework de migraciones ni lleva versionado.
type Seeder struct {
	m   *Manager
	log *logger.Logger
	cfg SeedConfig
}

// NewSeeder construye el seeder.
func NewSeeder(m *Manager, log *logger.Logger, cfg SeedConfig) *Seeder {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin123"
	}
	return &Seeder{m: m, log: log.Component("seed"), cfg: cfg}
}

// Bootstrap crea un usuario administrador, un producto de ejemplo y una bodega si no hay
// usuarios. Devuelve true si sembró datos.
func (s *Seeder) Bootstrap(ctx context.Context) (bool, error) {
	users, err := s.m.GetAll(ctx, record.Users)
	if err != nil {
		return false, fmt.Errorf("seed: leer usuarios: %w", err)
	}
	if len(users) > 0 {
		s.log.Debug().Int("users", len(users)).Msg("datos existentes, no se siembra")
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("seed: hash password: %w", err)
	}
	warehouse, err := record.Encode(entity.Warehouse{
		ID:       SeedWarehouseID,
		Name:     "Bodega principal",
		Location: "Sede central",
		Manager:  SeedAdminID,
		Capacity: 1000,
	})
	if err != nil {
		return false, fmt.Errorf("seed: bodega: %w", err)
	}

	seed := []struct {
		store record.Store
		recs  []record.Record
	}{
		{record.Users, []record.Record{{
			"id":            SeedAdminID,
			"username":      "admin",
			"email":         "admin@company.com",
			"password_hash": string(hash),
			"role":          "super_admin",
			"fullname":      "Administrador del sistema",
			"status":        "active",
		}}},
		{record.Products, []record.Record{{
			"id":            SeedProductID,
			"sku":           "SKU-1001",
			"barcode":       "1234567890123",
			"name":          map[string]any{"es": "Teléfono inteligente", "en": "Smartphone"},
			"type":          "finished",
			"category":      "Electrónica",
			"unit":          "unidad",
			"cost_price":    500.0,
			"sale_price":    750.0,
			"tax_rate":      0.05,
			"reorder_point": 10.0,
			"stock":         map[string]any{SeedWarehouseID: 25.0},
			"attributes":    map[string]any{"color": "negro", "storage": "128GB"},
		}}},
		{record.Warehouses, []record.Record{warehouse}},
	}
	for _, item := range seed {
		if _, err := s.m.SaveMany(ctx, item.store, item.recs); err != nil {
			return false, fmt.Errorf("seed %s: %w", item.store, err)
		}
		s.log.Info().Str("store", string(item.store)).Int("records", len(item.recs)).Msg("datos iniciales guardados")
	}
	return true, nil
}
