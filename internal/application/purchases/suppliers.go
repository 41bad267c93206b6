package purchases

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/erp-pos/internal/application/dto"
	"github.com/jhoicas/erp-pos/internal/domain"
	"github.com/jhoicas/erp-pos/internal/domain/entity"
	"github.com/jhoicas/erp-pos/internal/domain/record"
)

// CreateSupplier registra un proveedor. El nombre es obligatorio.
func (uc *UseCase) CreateSupplier(ctx context.Context, userID string, in dto.SupplierRequest) (*entity.Supplier, error) {
	return uc.saveSupplier(ctx, userID, "", in)
}

// UpdateSupplier actualiza un proveedor existente.
func (uc *UseCase) UpdateSupplier(ctx context.Context, userID, id string, in dto.SupplierRequest) (*entity.Supplier, error) {
	old, err := uc.store.Get(ctx, record.Suppliers, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	if old == nil {
		return nil, domain.ErrNotFound
	}
	return uc.saveSupplier(ctx, userID, id, in)
}

// ListSuppliers proveedores ordenados por nombre.
func (uc *UseCase) ListSuppliers(ctx context.Context) ([]entity.Supplier, error) {
	recs, err := uc.store.GetAll(ctx, record.Suppliers)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	out := make([]entity.Supplier, 0, len(recs))
	for _, r := range recs {
		var s entity.Supplier
		if err := record.Decode(r, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (uc *UseCase) saveSupplier(ctx context.Context, userID, id string, in dto.SupplierRequest) (*entity.Supplier, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("nombre de proveedor obligatorio: %w", domain.ErrInvalidInput)
	}
	rec, err := record.Encode(entity.Supplier{
		ID: id, Name: strings.TrimSpace(in.Name), Phone: in.Phone,
		Email: in.Email, TaxNumber: in.TaxNumber, Address: in.Address,
	})
	if err != nil {
		return nil, err
	}
	if id == "" {
		delete(rec, record.FieldID)
	}
	saved, err := uc.store.Save(ctx, record.Suppliers, rec)
	if err != nil {
		return nil, fmt.Errorf("save supplier: %w", err)
	}
	var out entity.Supplier
	if err := record.Decode(saved, &out); err != nil {
		return nil, err
	}
	action := entity.AuditUpdate
	if id == "" {
		action = entity.AuditCreate
	}
	if uc.auditor != nil {
		uc.auditor.Record(ctx, userID, action, string(record.Suppliers), nil, out)
	}
	return &out, nil
}
