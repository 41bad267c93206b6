package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-pos/internal/application/dto"
	"github.com/jhoicas/erp-pos/internal/application/ports"
	"github.com/jhoicas/erp-pos/internal/domain/record"
)

const reportTopProducts = 5

// ReportsUseCase informes de ventas, inventario y compras.
type ReportsUseCase struct {
	store ports.RecordStore
	loc   *time.Location
}

// NewReportsUseCase construye el caso de uso. Las fechas se interpretan en loc (UTC si nil).
func NewReportsUseCase(store ports.RecordStore, loc *time.Location) *ReportsUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportsUseCase{store: store, loc: loc}
}

// Sales total, número de ventas, ticket promedio, total por día y top 5 productos por ingreso.
func (uc *ReportsUseCase) Sales(ctx context.Context, in dto.ReportRangeRequest) (*dto.SalesReportDTO, error) {
	rng, err := parseRange(in, uc.loc)
	if err != nil {
		return nil, err
	}
	ds, err := load(ctx, uc.store, record.Sales, record.Products)
	if err != nil {
		return nil, err
	}

	out := &dto.SalesReportDTO{TotalSales: decimal.Zero, AverageSale: decimal.Zero}
	byDate := map[string]decimal.Decimal{}
	byProduct := map[string]*dto.ProductSalesDTO{}
	for _, s := range ds.sales {
		if !rng.contains(s.CreatedAt, s.OrderDate) {
			continue
		}
		total := decimal.NewFromFloat(s.Total)
		out.TotalSales = out.TotalSales.Add(total)
		out.InvoiceCount++
		if t, ok := documentTime(s.CreatedAt, s.OrderDate); ok {
			day := t.In(uc.loc).Format(time.DateOnly)
			byDate[day] = byDate[day].Add(total)
		}
		for _, it := range s.Items {
			id := it.Product()
			if id == "" {
				continue
			}
			ps, ok := byProduct[id]
			if !ok {
				ps = &dto.ProductSalesDTO{ProductID: id, Quantity: decimal.Zero, Revenue: decimal.Zero}
				byProduct[id] = ps
			}
			qty := decimal.NewFromFloat(it.Quantity)
			ps.Quantity = ps.Quantity.Add(qty)
			ps.Revenue = ps.Revenue.Add(qty.Mul(decimal.NewFromFloat(it.Price())))
		}
	}
	if out.InvoiceCount > 0 {
		out.AverageSale = out.TotalSales.Div(decimal.NewFromInt(int64(out.InvoiceCount))).Round(2)
	}

	out.ByDate = make([]dto.DailySalesDTO, 0, len(byDate))
	for day, total := range byDate {
		out.ByDate = append(out.ByDate, dto.DailySalesDTO{Date: day, Total: total})
	}
	sort.Slice(out.ByDate, func(i, j int) bool { return out.ByDate[i].Date < out.ByDate[j].Date })

	names := map[string][2]string{}
	for i := range ds.products {
		p := &ds.products[i]
		names[p.ID] = [2]string{p.SKU, p.DisplayName("es")}
	}
	out.TopProducts = make([]dto.ProductSalesDTO, 0, len(byProduct))
	for id, ps := range byProduct {
		if n, ok := names[id]; ok {
			ps.SKU, ps.Name = n[0], n[1]
		}
		out.TopProducts = append(out.TopProducts, *ps)
	}
	sort.Slice(out.TopProducts, func(i, j int) bool {
		a, b := out.TopProducts[i], out.TopProducts[j]
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		return a.ProductID < b.ProductID
	})
	if len(out.TopProducts) > reportTopProducts {
		out.TopProducts = out.TopProducts[:reportTopProducts]
	}
	return out, nil
}

// Inventory número de productos, valor Σ(stock × cost_price) y productos con stock bajo.
func (uc *ReportsUseCase) Inventory(ctx context.Context) (*dto.InventoryReportDTO, error) {
	ds, err := load(ctx, uc.store, record.Products)
	if err != nil {
		return nil, err
	}
	out := &dto.InventoryReportDTO{TotalProducts: len(ds.products), TotalValue: decimal.Zero}
	for i := range ds.products {
		p := &ds.products[i]
		out.TotalValue = out.TotalValue.Add(decimal.NewFromFloat(p.TotalStock()).Mul(decimal.NewFromFloat(p.CostPrice)))
	}
	out.LowStock = lowStock(ds.products)
	return out, nil
}

// Purchases total y número de órdenes del período.
func (uc *ReportsUseCase) Purchases(ctx context.Context, in dto.ReportRangeRequest) (*dto.PurchasesReportDTO, error) {
	rng, err := parseRange(in, uc.loc)
	if err != nil {
		return nil, err
	}
	ds, err := load(ctx, uc.store, record.Purchases)
	if err != nil {
		return nil, err
	}
	out := &dto.PurchasesReportDTO{TotalPurchases: decimal.Zero}
	for _, p := range ds.purchases {
		if !rng.contains(p.CreatedAt, p.OrderDate) {
			continue
		}
		out.TotalPurchases = out.TotalPurchases.Add(decimal.NewFromFloat(p.Total))
		out.OrderCount++
	}
	return out, nil
}
