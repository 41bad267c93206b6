package dto

import "github.com/shopspring/decimal"

// PurchaseItemRequest línea de una orden de compra.
type PurchaseItemRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// PurchaseRequest entrada para crear o editar una orden de compra.
type PurchaseRequest struct {
	SupplierID string                `json:"supplier_id"`
	OrderDate  string                `json:"order_date"` // YYYY-MM-DD
	Items      []PurchaseItemRequest `json:"items"`
}

// ReceivePurchaseRequest bodega destino al recibir (vacío = bodega por defecto).
type ReceivePurchaseRequest struct {
	WarehouseID string `json:"warehouse_id"`
}

// PurchaseFilter filtros del listado de compras.
type PurchaseFilter struct {
	Status string `query:"status"`
	Search string `query:"search"` // po_number o nombre de proveedor
}

// PurchaseTotals totales calculados de una orden.
type PurchaseTotals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// SupplierRequest entrada para crear o actualizar un proveedor.
type SupplierRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	TaxNumber string `json:"tax_number"`
	Address   string `json:"address"`
}
