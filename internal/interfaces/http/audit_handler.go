package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-pos/internal/application/audit"
	"github.com/jhoicas/erp-pos/internal/application/dto"
)

// AuditHandler consulta y exportación del registro de auditoría.
type AuditHandler struct {
	svc *audit.Service
}

// NewAuditHandler construye el handler.
func NewAuditHandler(svc *audit.Service) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// List godoc
// @Summary      Listar entradas de auditoría (más recientes primero)
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        user_id   query  string  false  "Usuario"
// @Param        action    query  string  false  "CREATE | UPDATE | DELETE | IMPORT"
// @Param        resource  query  string  false  "Almacén afectado"
// @Param        from      query  string  false  "YYYY-MM-DD"
// @Param        to        query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200  {array}   entity.AuditLog
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var f dto.AuditFilter
	if err := c.QueryParser(&f); err != nil {
		return badBody(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	out, err := h.svc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	c.Set("X-Total-Count", strconv.Itoa(len(out)))
	if page.Offset >= len(out) {
		return c.JSON(out[:0])
	}
	end := min(page.Offset+page.Limit, len(out))
	return c.JSON(out[page.Offset:end])
}

// Export GET /api/audit/export: mismas entradas con nombre y rol del usuario.
func (h *AuditHandler) Export(c *fiber.Ctx) error {
	var f dto.AuditFilter
	if err := c.QueryParser(&f); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Export(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="audit_logs.json"`)
	return c.JSON(out)
}
