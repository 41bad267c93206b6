package entity

// SaleItem línea de venta. Las ventas del punto de venta guardan productId/unitPrice;
// se aceptan ambas grafías.
type SaleItem struct {
	ProductID    string  `json:"product_id,omitempty"`
	ProductIDAlt string  `json:"productId,omitempty"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price,omitempty"`
	UnitPriceAlt float64 `json:"unitPrice,omitempty"`
}

// Product id del producto con independencia de la grafía.
func (i SaleItem) Product() string {
	if i.ProductID != "" {
		return i.ProductID
	}
	return i.ProductIDAlt
}

// Price precio unitario con independencia de la grafía.
func (i SaleItem) Price() float64 {
	if i.UnitPrice != 0 {
		return i.UnitPrice
	}
	return i.UnitPriceAlt
}

// Sale venta registrada (almacén sales). Solo lectura en este servicio.
type Sale struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id,omitempty"`
	Items      []SaleItem `json:"items,omitempty"`
	Subtotal   float64    `json:"subtotal"`
	Total      float64    `json:"total"`
	CreatedAt  string     `json:"created_at,omitempty"`
	OrderDate  string     `json:"order_date,omitempty"`
}
