package dto

import "github.com/shopspring/decimal"

// ReportRangeRequest parámetros de fecha de los informes (YYYY-MM-DD, inclusive).
type ReportRangeRequest struct {
	From string `query:"from"`
	To   string `query:"to"`
}

// SalesReportDTO informe de ventas del período.
type SalesReportDTO struct {
	TotalSales   decimal.Decimal   `json:"total_sales"`
	InvoiceCount int               `json:"invoice_count"`
	AverageSale  decimal.Decimal   `json:"average_sale"`
	ByDate       []DailySalesDTO   `json:"by_date"`      // ascendente por fecha
	TopProducts  []ProductSalesDTO `json:"top_products"` // top 5 por ingreso
}

// DailySalesDTO total vendido en un día.
type DailySalesDTO struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// ProductSalesDTO unidades e ingreso por producto.
type ProductSalesDTO struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku,omitempty"`
	Name      string          `json:"name,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// InventoryReportDTO valoración del inventario.
type InventoryReportDTO struct {
	TotalProducts int               `json:"total_products"`
	TotalValue    decimal.Decimal   `json:"total_value"` // Σ stock × cost_price
	LowStock      []LowStockItemDTO `json:"low_stock"`
}

// PurchasesReportDTO resumen de compras del período.
type PurchasesReportDTO struct {
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	OrderCount     int             `json:"order_count"`
}
