package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-pos/internal/application/auth"
	"github.com/jhoicas/erp-pos/internal/application/dto"
	"github.com/jhoicas/erp-pos/internal/application/ports"
	"github.com/jhoicas/erp-pos/internal/application/storage"
	"github.com/jhoicas/erp-pos/internal/domain/entity"
	"github.com/jhoicas/erp-pos/internal/domain/record"
)

// exportPermission sólo el comodín total puede exportar o importar.
const exportPermission = auth.Wildcard

// storeDomains dominio de permisos al que pertenece cada almacén.
var storeDomains = map[record.Store]string{
	record.Users:          "users",
	record.Products:       "inventory",
	record.BOM:            "inventory",
	record.Warehouses:     "inventory",
	record.StockMovements: "inventory",
	record.Sales:          "sales",
	record.Customers:      "sales",
	record.Purchases:      "purchases",
	record.Suppliers:      "purchases",
	record.AuditLogs:      "audit",
	record.Settings:       "settings",
}

// restrictedStores almacenes que por la ruta genérica sólo el comodín total puede
// escribir o borrar. Usuarios se administran con /api/users; la auditoría no se edita.
var restrictedStores = map[record.Store]bool{
	record.Users:     true,
	record.AuditLogs: true,
	record.Settings:  true,
}

// passwordHashField nunca sale por la ruta genérica.
const passwordHashField = "password_hash"

// storePermission permiso necesario para aplicar kind sobre store. Un almacén desconocido
// no exige permiso: el Manager lo rechaza con UNKNOWN_STORE.
func storePermission(store record.Store, kind record.Kind) string {
	domainName, ok := storeDomains[store]
	if !ok {
		return ""
	}
	if kind != record.KindGet && restrictedStores[store] {
		return auth.Wildcard
	}
	switch kind {
	case record.KindGet:
		return domainName + ".read"
	case record.KindDelete:
		return domainName + ".delete"
	default:
		return domainName + ".create"
	}
}

// redact quita password_hash de los registros de users. Devuelve copias; v puede ser
// un registro, un arreglo de registros o cualquier otro resultado (se devuelve igual).
func redact(store record.Store, v any) any {
	if store != record.Users {
		return v
	}
	switch r := v.(type) {
	case record.Record:
		if r == nil {
			return r
		}
		out := r.Clone()
		delete(out, passwordHashField)
		return out
	case []record.Record:
		out := make([]record.Record, len(r))
		for i, rec := range r {
			out[i] = redact(store, rec).(record.Record)
		}
		return out
	}
	return v
}

// StorageHandler expone el StorageManager: CRUD por almacén, transacciones e
// importación/exportación.
type StorageHandler struct {
	m       *storage.Manager
	auditor ports.Auditor
}

// NewStorageHandler construye el handler. auditor puede ser nil.
func NewStorageHandler(m *storage.Manager, auditor ports.Auditor) *StorageHandler {
	return &StorageHandler{m: m, auditor: auditor}
}

func (h *StorageHandler) audit(c *fiber.Ctx, action, resource string, oldValue, newValue any) {
	if h.auditor != nil {
		h.auditor.Record(c.UserContext(), GetUserID(c), action, resource, oldValue, newValue)
	}
}

func (h *StorageHandler) guard(c *fiber.Ctx, kind record.Kind) (record.Store, bool, error) {
	store := record.Store(c.Params("store"))
	if perm := storePermission(store, kind); perm != "" {
		if ok, err := authorize(c, perm); !ok {
			return store, false, err
		}
	}
	return store, true, nil
}

// List godoc
// @Summary      Listar registros de un almacén
// @Tags         stores
// @Security     Bearer
// @Produce      json
// @Param        store  path  string  true  "Almacén"
// @Success      200  {array}   object
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{store} [get]
func (h *StorageHandler) List(c *fiber.Ctx) error {
	store, ok, err := h.guard(c, record.KindGet)
	if !ok {
		return err
	}
	recs, err := h.m.GetAll(c.UserContext(), store)
	if err != nil {
		return writeError(c, err)
	}
	if recs == nil {
		recs = []record.Record{}
	}
	return c.JSON(redact(store, recs))
}

// Get godoc
// @Summary      Obtener un registro por id
// @Tags         stores
// @Security     Bearer
// @Produce      json
// @Param        store  path  string  true  "Almacén"
// @Param        id     path  string  true  "ID del registro"
// @Success      200  {object}  object
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{store}/{id} [get]
func (h *StorageHandler) Get(c *fiber.Ctx) error {
	store, ok, err := h.guard(c, record.KindGet)
	if !ok {
		return err
	}
	rec, err := h.m.Get(c.UserContext(), store, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "registro no encontrado"})
	}
	return c.JSON(redact(store, rec))
}

// Save godoc
// @Summary      Guardar un registro o un arreglo de registros
// @Description  Sin id se genera uno; con id existente se fusiona campo a campo.
// @Tags         stores
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        store  path  string  true  "Almacén"
// @Success      201  {object}  object
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stores/{store} [post]
func (h *StorageHandler) Save(c *fiber.Ctx) error {
	store, ok, err := h.guard(c, record.KindSave)
	if !ok {
		return err
	}
	var raw json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil || len(raw) == 0 {
		return badBody(c)
	}
	if raw[0] == '[' {
		var recs []record.Record
		if err := json.Unmarshal(raw, &recs); err != nil {
			return badBody(c)
		}
		out, err := h.m.SaveMany(c.UserContext(), store, recs)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(redact(store, out))
	}
	var rec record.Record
	if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
		return badBody(c)
	}
	out, err := h.m.Save(c.UserContext(), store, rec)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(redact(store, out))
}

// Delete godoc
// @Summary      Eliminar un registro (idempotente)
// @Tags         stores
// @Security     Bearer
// @Produce      json
// @Param        store  path  string  true  "Almacén"
// @Param        id     path  string  true  "ID del registro"
// @Success      200  {object}  dto.DeleteResponse
// @Router       /api/stores/{store}/{id} [delete]
func (h *StorageHandler) Delete(c *fiber.Ctx) error {
	store, ok, err := h.guard(c, record.KindDelete)
	if !ok {
		return err
	}
	id := c.Params("id")
	old, err := h.m.Get(c.UserContext(), store, id)
	if err != nil {
		return writeError(c, err)
	}
	deleted, err := h.m.Delete(c.UserContext(), store, id)
	if err != nil {
		return writeError(c, err)
	}
	if old != nil && store != record.AuditLogs {
		h.audit(c, entity.AuditDelete, string(store), redact(store, old), nil)
	}
	return c.JSON(dto.DeleteResponse{Deleted: deleted})
}

// Transaction godoc
// @Summary      Ejecutar un lote ordenado de operaciones save/get/delete
// @Description  Se detiene en la primera operación fallida. Sin "atomic" las anteriores
// @Description  quedan aplicadas; con "atomic" se usa la transacción nativa del sustrato.
// @Tags         stores
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransactionRequest  true  "Operaciones"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      400  {object}  dto.TransactionResponse
// @Router       /api/transaction [post]
func (h *StorageHandler) Transaction(c *fiber.Ctx) error {
	var in dto.TransactionRequest
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return badBody(c)
	}
	for _, op := range in.Operations {
		if perm := storePermission(op.Store, op.Kind); perm != "" {
			if ok, err := authorize(c, perm); !ok {
				return err
			}
		}
	}
	run := h.m.Transaction
	if in.Atomic || c.QueryBool("atomic") {
		run = h.m.Atomic
	}
	results, err := run(c.UserContext(), in.Operations)
	if results == nil {
		results = []any{}
	}
	for i := range results {
		results[i] = redact(in.Operations[i].Store, results[i])
	}
	if err != nil {
		status, body := toErrorResponse(err)
		return c.Status(status).JSON(dto.TransactionResponse{Results: results, Error: &body})
	}
	return c.JSON(dto.TransactionResponse{Results: results})
}

// Export godoc
// @Summary      Exportar todos los almacenes
// @Tags         stores
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  storage.Snapshot
// @Router       /api/export [get]
func (h *StorageHandler) Export(c *fiber.Ctx) error {
	snap, err := h.m.Export(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(snap)
}

// Import godoc
// @Summary      Importar una exportación (aditiva: fusiona por id)
// @Tags         stores
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      200  {object}  dto.ImportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/import [post]
func (h *StorageHandler) Import(c *fiber.Ctx) error {
	var snap storage.Snapshot
	if err := json.Unmarshal(c.Body(), &snap); err != nil {
		return badBody(c)
	}
	n, err := h.m.Import(c.UserContext(), &snap)
	if err != nil {
		return writeError(c, err)
	}
	h.audit(c, entity.AuditImport, "all", nil, map[string]any{"imported": n, "exported_at": snap.ExportedAt})
	return c.JSON(dto.ImportResponse{Imported: n})
}
