package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-pos/internal/application/dto"
	"github.com/jhoicas/erp-pos/internal/application/purchases"
)

// PurchaseHandler órdenes de compra y proveedores.
type PurchaseHandler struct {
	uc *purchases.UseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchases.UseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PurchaseRequest  true  "Proveedor, fecha e ítems"
// @Success      201   {object}  entity.Purchase
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.PurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes de compra (más recientes primero)
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | received | cancelled"
// @Param        search  query  string  false  "Número de orden o proveedor"
// @Success      200  {array}  entity.Purchase
// @Router       /api/purchases [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	var f dto.PurchaseFilter
	if err := c.QueryParser(&f); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/purchases/:id
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/purchases/:id (solo órdenes pendientes).
func (h *PurchaseHandler) Update(c *fiber.Ctx) error {
	var in dto.PurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receive godoc
// @Summary      Recibir orden de compra
// @Description  Marca la orden como recibida, suma el stock en la bodega y registra
// @Description  un movimiento de entrada por ítem, todo en una única transacción.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.ReceivePurchaseRequest  false  "Bodega destino"
// @Success      200   {object}  entity.Purchase
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/receive [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceivePurchaseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.Receive(c.UserContext(), GetUserID(c), c.Params("id"), in.WarehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel POST /api/purchases/:id/cancel
func (h *PurchaseHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateSupplier POST /api/suppliers
func (h *PurchaseHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.SupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateSupplier(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateSupplier PUT /api/suppliers/:id
func (h *PurchaseHandler) UpdateSupplier(c *fiber.Ctx) error {
	var in dto.SupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateSupplier(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListSuppliers GET /api/suppliers
func (h *PurchaseHandler) ListSuppliers(c *fiber.Ctx) error {
	out, err := h.uc.ListSuppliers(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
