// Package analytics contiene los casos de uso del dashboard y de los informes de
// ventas, inventario y compras.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-pos/internal/application/dto"
	"github.com/jhoicas/erp-pos/internal/application/ports"
	"github.com/jhoicas/erp-pos/internal/domain/entity"
	"github.com/jhoicas/erp-pos/internal/domain/record"
)

const (
	dashboardRecentSales = 5 // ventas en el widget "recientes"
	dashboardLowStock    = 5 // productos en el widget de stock bajo
	weeklyWindow         = 7 * 24 * time.Hour
)

// DashboardUseCase genera el resumen del dashboard a partir de los almacenes.
type DashboardUseCase struct {
	store ports.RecordStore
	now   func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(store ports.RecordStore) *DashboardUseCase {
	return &DashboardUseCase{store: store, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary KPIs: ventas totales, de hoy y de los últimos 7 días; conteos de productos,
// stock bajo, clientes y órdenes pendientes; las 5 ventas más recientes y los primeros
// 5 productos con stock bajo.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	ds, err := load(ctx, uc.store, record.Products, record.Sales, record.Purchases, record.Customers)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)
	weekStart := now.Add(-weeklyWindow)

	out := &dto.DashboardSummaryDTO{
		TotalSales:    decimal.Zero,
		TodaySales:    decimal.Zero,
		WeeklySales:   decimal.Zero,
		TotalProducts: len(ds.products),
		Customers:     ds.customers,
	}
	for _, s := range ds.sales {
		total := decimal.NewFromFloat(s.Total)
		out.TotalSales = out.TotalSales.Add(total)
		t, ok := record.Record{"created_at": s.CreatedAt}.Time("created_at")
		if !ok {
			continue
		}
		if !t.Before(todayStart) && t.Before(todayEnd) {
			out.TodaySales = out.TodaySales.Add(total)
		}
		if !t.Before(weekStart) {
			out.WeeklySales = out.WeeklySales.Add(total)
		}
	}
	for _, p := range ds.purchases {
		if p.Status == entity.PurchaseStatusPending {
			out.PendingOrders++
		}
	}

	low := lowStock(ds.products)
	out.LowStockCount = len(low)
	if len(low) > dashboardLowStock {
		low = low[:dashboardLowStock]
	}
	out.LowStockProducts = low
	out.RecentSales = recentSales(ds.sales, dashboardRecentSales)
	return out, nil
}

func recentSales(sales []entity.Sale, n int) []dto.RecentSaleDTO {
	sorted := make([]entity.Sale, len(sales))
	copy(sorted, sales)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt > sorted[j].CreatedAt })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]dto.RecentSaleDTO, 0, len(sorted))
	for _, s := range sorted {
		out = append(out, dto.RecentSaleDTO{
			ID:         s.ID,
			CustomerID: s.CustomerID,
			Total:      decimal.NewFromFloat(s.Total),
			CreatedAt:  s.CreatedAt,
		})
	}
	return out
}
