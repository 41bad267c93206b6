package entity

// Tipos de movimiento de inventario.
const (
	MovementTypeIn     = "in"
	MovementTypeOut    = "out"
	MovementTypeAdjust = "adjust"
)

// Tipos de documento que originan un movimiento.
const (
	ReferenceTypePurchase = "purchase"
	ReferenceTypeSale     = "sale"
)

// StockMovement movimiento de inventario (almacén stock_movements).
type StockMovement struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	WarehouseID   string  `json:"warehouse_id"`
	Type          string  `json:"type"`
	Quantity      float64 `json:"quantity"`
	Reference     string  `json:"reference,omitempty"`
	ReferenceType string  `json:"reference_type,omitempty"`
	CreatedBy     string  `json:"created_by,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}
