package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/erp-pos/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve los KPIs del dashboard.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (total_sales, today_sales, weekly_sales, conteos,
// recent_sales[5], low_stock_products[5]).
// No requiere parámetros; las fechas se calculan en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
