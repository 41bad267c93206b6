package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TodaySales    decimal.Decimal `json:"today_sales"`
	WeeklySales   decimal.Decimal `json:"weekly_sales"` // últimos 7 días
	TotalProducts int             `json:"total_products"`
	LowStockCount int             `json:"low_stock_count"`
	Customers     int             `json:"total_customers"`
	PendingOrders int             `json:"pending_orders"`

	RecentSales      []RecentSaleDTO   `json:"recent_sales"`       // 5 más recientes
	LowStockProducts []LowStockItemDTO `json:"low_stock_products"` // primeros 5
}

// RecentSaleDTO venta resumida para el widget del dashboard.
type RecentSaleDTO struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id,omitempty"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  string          `json:"created_at"`
}

// LowStockItemDTO producto en o bajo su punto de reorden.
type LowStockItemDTO struct {
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	TotalStock   decimal.Decimal `json:"total_stock"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	StockValue   decimal.Decimal `json:"stock_value"`
}
