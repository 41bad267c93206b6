package entity

// Warehouse bodega donde se almacena inventario (almacén warehouses).
type Warehouse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Location  string  `json:"location,omitempty"`
	Manager   string  `json:"manager,omitempty"`
	Capacity  float64 `json:"capacity,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}
