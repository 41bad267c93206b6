package record

import (
	"fmt"

	"github.com/jhoicas/erp-pos/internal/domain"
)

// Store nombre de una partición de registros (equivalente a una tabla o colección).
type Store string

// Almacenes del sistema. El conjunto es fijo.
const (
	Users          Store = "users"
	Products       Store = "products"
	BOM            Store = "bom"
	Sales          Store = "sales"
	Purchases      Store = "purchases"
	Customers      Store = "customers"
	Suppliers      Store = "suppliers"
	Warehouses     Store = "warehouses"
	StockMovements Store = "stock_movements"
	AuditLogs      Store = "audit_logs"
	Settings       Store = "settings"
)

// Stores lista ordenada de almacenes; define también el orden de exportación.
var Stores = []Store{
	Users, Products, BOM, Sales, Purchases,
	Customers, Suppliers, Warehouses, StockMovements,
	AuditLogs, Settings,
}

// Valid indica si s pertenece al conjunto fijo.
func (s Store) Valid() bool {
	for _, st := range Stores {
		if st == s {
			return true
		}
	}
	return false
}

// ParseStore valida un nombre externo (ruta HTTP, snapshot, CLI).
func ParseStore(name string) (Store, error) {
	s := Store(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownStore, name)
	}
	return s, nil
}
