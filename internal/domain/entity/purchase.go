package entity

// Estados de una orden de compra.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusReceived  = "received"
	PurchaseStatusCancelled = "cancelled"
)

// PurchaseItem línea de una orden de compra.
type PurchaseItem struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Purchase orden de compra (almacén purchases).
type Purchase struct {
	ID         string         `json:"id"`
	PONumber   string         `json:"po_number"`
	SupplierID string         `json:"supplier_id"`
	OrderDate  string         `json:"order_date,omitempty"`
	Items      []PurchaseItem `json:"items"`
	Subtotal   float64        `json:"subtotal"`
	TaxAmount  float64        `json:"tax_amount"`
	Total      float64        `json:"total"`
	Status     string         `json:"status"`
	CreatedBy  string         `json:"created_by,omitempty"`
	ReceivedAt string         `json:"received_at,omitempty"`
	CreatedAt  string         `json:"created_at,omitempty"`
	UpdatedAt  string         `json:"updated_at,omitempty"`
}
