package entity

// Product producto del catálogo (almacén products). Name es un texto por idioma
// ({"es": ..., "en": ...}); Stock mapea warehouse_id → cantidad.
type Product struct {
	ID           string             `json:"id"`
	SKU          string             `json:"sku"`
	Barcode      string             `json:"barcode,omitempty"`
	Name         map[string]string  `json:"name,omitempty"`
	Type         string             `json:"type,omitempty"`
	Category     string             `json:"category,omitempty"`
	Unit         string             `json:"unit,omitempty"`
	CostPrice    float64            `json:"cost_price"`
	SalePrice    float64            `json:"sale_price"`
	TaxRate      float64            `json:"tax_rate"`
	ReorderPoint float64            `json:"reorder_point"`
	Stock        map[string]float64 `json:"stock,omitempty"`
	CreatedAt    string             `json:"created_at,omitempty"`
	UpdatedAt    string             `json:"updated_at,omitempty"`
}

// TotalStock suma el stock de todas las bodegas.
func (p *Product) TotalStock() float64 {
	var total float64
	for _, qty := range p.Stock {
		total += qty
	}
	return total
}

// IsLowStock true cuando el stock total no supera el punto de reorden.
func (p *Product) IsLowStock() bool {
	return p.TotalStock() <= p.ReorderPoint
}

// DisplayName nombre en el idioma pedido, o el primero disponible.
func (p *Product) DisplayName(lang string) string {
	if n, ok := p.Name[lang]; ok && n != "" {
		return n
	}
	for _, n := range p.Name {
		if n != "" {
			return n
		}
	}
	return p.SKU
}
