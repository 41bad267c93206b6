package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/erp-pos/internal/application/analytics"
	"github.com/jhoicas/erp-pos/internal/application/dto"
)

// ReportsHandler informes de ventas, inventario y compras.
type ReportsHandler struct {
	uc *appanalytics.ReportsUseCase
}

// NewReportsHandler construye el handler.
func NewReportsHandler(uc *appanalytics.ReportsUseCase) *ReportsHandler {
	return &ReportsHandler{uc: uc}
}

// Sales godoc
// @Summary      Informe de ventas
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Inicio (YYYY-MM-DD)"
// @Param        to    query  string  false  "Fin inclusive (YYYY-MM-DD)"
// @Success      200  {object}  dto.SalesReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales [get]
func (h *ReportsHandler) Sales(c *fiber.Ctx) error {
	var in dto.ReportRangeRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Sales(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Inventory GET /api/reports/inventory
func (h *ReportsHandler) Inventory(c *fiber.Ctx) error {
	out, err := h.uc.Inventory(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Purchases GET /api/reports/purchases?from=&to=
func (h *ReportsHandler) Purchases(c *fiber.Ctx) error {
	var in dto.ReportRangeRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Purchases(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
