package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-pos/internal/application/dto"
	"github.com/jhoicas/erp-pos/internal/application/ports"
	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/entity"
	"github.com/jhoicas/erp-pos/internal/domain/record"
)

// dataset lectura completa de los almacenes que usan dashboard e informes.
type dataset struct {
	products  []entity.Product
	sales     []entity.Sale
	purchases []entity.Purchase
	customers int
}

// load lee los cuatro almacenes en paralelo.
func load(ctx context.Context, store ports.RecordStore, stores ...record.Store) (*dataset, error) {
	type result struct {
		store record.Store
		recs  []record.Record
		err   error
	}
	ch := make(chan result, len(stores))
	for _, s := range stores {
		go func(s record.Store) {
			recs, err := store.GetAll(ctx, s)
			ch <- result{s, recs, err}
		}(s)
	}

	ds := &dataset{}
	var firstErr error
	for range stores {
		res := <-ch
		if res.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("load %s: %w", res.store, res.err)
			}
			continue
		}
		if err := ds.fill(res.store, res.recs); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return ds, nil
}

func (ds *dataset) fill(store record.Store, recs []record.Record) error {
	switch store {
	case record.Products:
		ds.products = make([]entity.Product, 0, len(recs))
		for _, r := range recs {
			var p entity.Product
			if err := record.Decode(r, &p); err != nil {
				return err
			}
			ds.products = append(ds.products, p)
		}
	case record.Sales:
		ds.sales = make([]entity.Sale, 0, len(recs))
		for _, r := range recs {
			var s entity.Sale
			if err := record.Decode(r, &s); err != nil {
				return err
			}
			ds.sales = append(ds.sales, s)
		}
	case record.Purchases:
		ds.purchases = make([]entity.Purchase, 0, len(recs))
		for _, r := range recs {
			var p entity.Purchase
			if err := record.Decode(r, &p); err != nil {
				return err
			}
			ds.purchases = append(ds.purchases, p)
		}
	case record.Customers:
		ds.customers = len(recs)
	}
	return nil
}

// lowStock productos con stock total ≤ punto de reorden, en el orden del almacén.
func lowStock(products []entity.Product) []dto.LowStockItemDTO {
	out := []dto.LowStockItemDTO{}
	for i := range products {
		p := &products[i]
		if !p.IsLowStock() {
			continue
		}
		total := decimal.NewFromFloat(p.TotalStock())
		out = append(out, dto.LowStockItemDTO{
			ProductID:    p.ID,
			SKU:          p.SKU,
			Name:         p.DisplayName("es"),
			TotalStock:   total,
			ReorderPoint: decimal.NewFromFloat(p.ReorderPoint),
			StockValue:   total.Mul(decimal.NewFromFloat(p.CostPrice)),
		})
	}
	return out
}

// dateRange [from 00:00, to+1 00:00) en loc; extremos vacíos quedan abiertos.
type dateRange struct {
	from, to time.Time
}

func parseRange(in dto.ReportRangeRequest, loc *time.Location) (dateRange, error) {
	var r dateRange
	if in.From != "" {
		t, err := time.ParseInLocation(time.DateOnly, in.From, loc)
		if err != nil {
			return r, fmt.Errorf("from %q: %w", in.From, domain.ErrInvalidInput)
		}
		r.from = t
	}
	if in.To != "" {
		t, err := time.ParseInLocation(time.DateOnly, in.To, loc)
		if err != nil {
			return r, fmt.Errorf("to %q: %w", in.To, domain.ErrInvalidInput)
		}
		r.to = t.AddDate(0, 0, 1)
	}
	if !r.from.IsZero() && !r.to.IsZero() && !r.from.Before(r.to) {
		return r, fmt.Errorf("rango vacío: %w", domain.ErrInvalidInput)
	}
	return r, nil
}

func (r dateRange) open() bool { return r.from.IsZero() && r.to.IsZero() }

// contains evalúa la fecha del documento: created_at y, si falta, order_date.
func (r dateRange) contains(createdAt, orderDate string) bool {
	if r.open() {
		return true
	}
	t, ok := documentTime(createdAt, orderDate)
	if !ok {
		return false
	}
	if !r.from.IsZero() && t.Before(r.from) {
		return false
	}
	if !r.to.IsZero() && !t.Before(r.to) {
		return false
	}
	return true
}

func documentTime(createdAt, orderDate string) (time.Time, bool) {
	rec := record.Record{"created_at": createdAt, "order_date": orderDate}
	if t, ok := rec.Time("created_at"); ok {
		return t, true
	}
	return rec.Time("order_date")
}
