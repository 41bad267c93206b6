// Package purchases gestiona proveedores y órdenes de compra, incluida la recepción
// de mercancía que actualiza stock y registra movimientos.
package purchases

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-pos/internal/application/dto"
	"github.com/jhoicas/erp-pos/internal/application/ports"
	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/entity"
	"github.com/jhoicas/erp-pos/internal/domain/inventory"
	"github.com/jhoicas/erp-pos/internal/domain/record"
	"github.com/jhoicas/erp-pos/pkg/logger"
)

// Config parámetros de compras.
type Config struct {
	TaxRate            float64 // 0.05 si es 0
	DefaultWarehouseID string  // warehouse_1 si está vacío
}

// UseCase casos de uso de compras.
type UseCase struct {
	store   ports.RecordStore
	auditor ports.Auditor
	log     *logger.Logger
	cfg     Config
	now     func() time.Time
}

// NewUseCase construye el caso de uso. auditor y log pueden ser nil.
func NewUseCase(store ports.RecordStore, auditor ports.Auditor, log *logger.Logger, cfg Config) *UseCase {
	if cfg.TaxRate == 0 {
		cfg.TaxRate = 0.05
	}
	if cfg.DefaultWarehouseID == "" {
		cfg.DefaultWarehouseID = "warehouse_1"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{store: store, auditor: auditor, log: log.Component("purchases"), cfg: cfg, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create registra una orden pendiente con totales calculados y número PO-<unix ms>.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.PurchaseRequest) (*entity.Purchase, error) {
	items, totals, err := uc.validate(in)
	if err != nil {
		return nil, err
	}
	p := entity.Purchase{
		PONumber:   fmt.Sprintf("PO-%d", uc.now().UnixMilli()),
		SupplierID: in.SupplierID,
		OrderDate:  in.OrderDate,
		Items:      items,
		Subtotal:   totals.Subtotal.InexactFloat64(),
		TaxAmount:  totals.TaxAmount.InexactFloat64(),
		Total:      totals.Total.InexactFloat64(),
		Status:     entity.PurchaseStatusPending,
		CreatedBy:  userID,
	}
	saved, err := uc.save(ctx, p)
	if err != nil {
		return nil, err
	}
	uc.audit(ctx, userID, entity.AuditCreate, nil, saved)
	return saved, nil
}

// Update reemplaza proveedor, fecha e ítems de una orden pendiente y recalcula totales.
func (uc *UseCase) Update(ctx context.Context, userID, id string, in dto.PurchaseRequest) (*entity.Purchase, error) {
	old, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if old.Status != entity.PurchaseStatusPending {
		return nil, fmt.Errorf("orden %s en estado %s: %w", id, old.Status, domain.ErrConflict)
	}
	items, totals, err := uc.validate(in)
	if err != nil {
		return nil, err
	}
	p := *old
	p.SupplierID = in.SupplierID
	p.OrderDate = in.OrderDate
	p.Items = items
	p.Subtotal = totals.Subtotal.InexactFloat64()
	p.TaxAmount = totals.TaxAmount.InexactFloat64()
	p.Total = totals.Total.InexactFloat64()
	saved, err := uc.save(ctx, p)
	if err != nil {
		return nil, err
	}
	uc.audit(ctx, userID, entity.AuditUpdate, old, saved)
	return saved, nil
}

// Receive marca la orden como recibida y suma las cantidades al stock de la bodega,
// con un movimiento de entrada por ítem, y recalcula cost_price como promedio ponderado. Todo se aplica en una sola operación atómica
// cuando el sustrato lo permite. Los ítems de productos inexistentes se ignoran.
func (uc *UseCase) Receive(ctx context.Context, userID, id, warehouseID string) (*entity.Purchase, error) {
	if warehouseID == "" {
		warehouseID = uc.cfg.DefaultWarehouseID
	}
	old, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if old.Status != entity.PurchaseStatusPending {
		return nil, fmt.Errorf("orden %s en estado %s: %w", id, old.Status, domain.ErrConflict)
	}

	received := *old
	received.Status = entity.PurchaseStatusReceived
	received.ReceivedAt = record.Timestamp(uc.now())
	purchaseRec, err := record.Encode(received)
	if err != nil {
		return nil, err
	}
	ops := []record.Operation{record.SaveOp(record.Purchases, purchaseRec)}

	products := map[string]record.Record{}
	for _, item := range received.Items {
		product, ok := products[item.ProductID]
		if !ok {
			product, err = uc.store.Get(ctx, record.Products, item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("get product %s: %w", item.ProductID, err)
			}
			if product == nil {
				uc.log.Warn().Str("purchase_id", id).Str("product_id", item.ProductID).
					Msg("producto inexistente, ítem sin efecto en stock")
				continue
			}
			products[item.ProductID] = product
		}
		stock := make(map[string]any, len(product.Map("stock"))+1)
		for wh, qty := range product.Map("stock") {
			stock[wh] = qty
		}
		qty := decimal.NewFromFloat(item.Quantity)
		onHand := decimal.Zero
		for wh := range stock {
			onHand = onHand.Add(decimal.NewFromFloat(record.Record(stock).Float(wh)))
		}
		cost := inventory.AverageCost(onHand, decimal.NewFromFloat(product.Float("cost_price")),
			qty, decimal.NewFromFloat(item.UnitPrice))
		current := decimal.NewFromFloat(record.Record(stock).Float(warehouseID))
		stock[warehouseID] = current.Add(qty).InexactFloat64()
		product = product.Clone()
		product["stock"] = stock
		product["cost_price"] = cost.InexactFloat64()
		products[item.ProductID] = product

		movement, err := record.Encode(entity.StockMovement{
			ProductID:     item.ProductID,
			WarehouseID:   warehouseID,
			Type:          entity.MovementTypeIn,
			Quantity:      item.Quantity,
			Reference:     id,
			ReferenceType: entity.ReferenceTypePurchase,
			CreatedBy:     userID,
		})
		if err != nil {
			return nil, err
		}
		delete(movement, record.FieldID)
		ops = append(ops,
			record.SaveOp(record.Products, product),
			record.SaveOp(record.StockMovements, movement),
		)
	}

	results, err := uc.store.Atomic(ctx, ops)
	if err != nil {
		return nil, fmt.Errorf("receive purchase %s: %w", id, err)
	}
	var out entity.Purchase
	if err := record.Decode(results[0].(record.Record), &out); err != nil {
		return nil, err
	}
	uc.log.Info().Str("purchase_id", id).Str("warehouse_id", warehouseID).
		Int("items", len(received.Items)).Msg("orden recibida")
	uc.audit(ctx, userID, entity.AuditUpdate, old, &out)
	return &out, nil
}

// Cancel pasa una orden pendiente a cancelada.
func (uc *UseCase) Cancel(ctx context.Context, userID, id string) (*entity.Purchase, error) {
	old, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if old.Status != entity.PurchaseStatusPending {
		return nil, fmt.Errorf("orden %s en estado %s: %w", id, old.Status, domain.ErrConflict)
	}
	p := *old
	p.Status = entity.PurchaseStatusCancelled
	saved, err := uc.save(ctx, p)
	if err != nil {
		return nil, err
	}
	uc.audit(ctx, userID, entity.AuditUpdate, old, saved)
	return saved, nil
}

// Get devuelve la orden o ErrNotFound.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Purchase, error) {
	if id == "" {
		return nil, fmt.Errorf("id vacío: %w", domain.ErrInvalidInput)
	}
	rec, err := uc.store.Get(ctx, record.Purchases, id)
	if err != nil {
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	var p entity.Purchase
	if err := record.Decode(rec, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List devuelve las órdenes filtradas, más recientes primero. Search busca en po_number
// y en el nombre del proveedor sin distinguir mayúsculas.
func (uc *UseCase) List(ctx context.Context, f dto.PurchaseFilter) ([]entity.Purchase, error) {
	recs, err := uc.store.GetAll(ctx, record.Purchases)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	var suppliers map[string]string
	search := strings.ToLower(strings.TrimSpace(f.Search))
	if search != "" {
		if suppliers, err = uc.supplierNames(ctx); err != nil {
			return nil, err
		}
	}
	out := make([]entity.Purchase, 0, len(recs))
	for _, r := range recs {
		var p entity.Purchase
		if err := record.Decode(r, &p); err != nil {
			return nil, err
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.PONumber), search) &&
			!strings.Contains(strings.ToLower(suppliers[p.SupplierID]), search) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (uc *UseCase) validate(in dto.PurchaseRequest) ([]entity.PurchaseItem, dto.PurchaseTotals, error) {
	var totals dto.PurchaseTotals
	if in.SupplierID == "" {
		return nil, totals, fmt.Errorf("supplier_id obligatorio: %w", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return nil, totals, fmt.Errorf("la orden necesita al menos un producto: %w", domain.ErrInvalidInput)
	}
	items := make([]entity.PurchaseItem, 0, len(in.Items))
	subtotal := decimal.Zero
	for i, it := range in.Items {
		if it.ProductID == "" || it.Quantity <= 0 || it.UnitPrice < 0 {
			return nil, totals, fmt.Errorf("ítem %d inválido: %w", i, domain.ErrInvalidInput)
		}
		subtotal = subtotal.Add(decimal.NewFromFloat(it.Quantity).Mul(decimal.NewFromFloat(it.UnitPrice)))
		items = append(items, entity.PurchaseItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return items, Totals(subtotal, uc.cfg.TaxRate), nil
}

// Totals calcula impuesto y total a partir del subtotal, redondeados a 2 decimales.
func Totals(subtotal decimal.Decimal, taxRate float64) dto.PurchaseTotals {
	tax := subtotal.Mul(decimal.NewFromFloat(taxRate)).Round(2)
	subtotal = subtotal.Round(2)
	return dto.PurchaseTotals{Subtotal: subtotal, TaxAmount: tax, Total: subtotal.Add(tax)}
}

func (uc *UseCase) save(ctx context.Context, p entity.Purchase) (*entity.Purchase, error) {
	rec, err := record.Encode(p)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		delete(rec, record.FieldID)
	}
	saved, err := uc.store.Save(ctx, record.Purchases, rec)
	if err != nil {
		return nil, fmt.Errorf("save purchase: %w", err)
	}
	var out entity.Purchase
	if err := record.Decode(saved, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *UseCase) supplierNames(ctx context.Context) (map[string]string, error) {
	recs, err := uc.store.GetAll(ctx, record.Suppliers)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	out := make(map[string]string, len(recs))
	for _, r := range recs {
		out[r.ID()] = r.String("name")
	}
	return out, nil
}

func (uc *UseCase) audit(ctx context.Context, userID, action string, oldValue, newValue any) {
	if uc.auditor == nil {
		return
	}
	uc.auditor.Record(ctx, userID, action, string(record.Purchases), oldValue, newValue)
}
