package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appanalytics "github.com/jhoicas/erp-pos/internal/application/analytics"
	"github.com/jhoicas/erp-pos/internal/application/audit"
	"github.com/jhoicas/erp-pos/internal/application/auth"
	"github.com/jhoicas/erp-pos/internal/application/purchases"
	"github.com/jhoicas/erp-pos/internal/application/storage"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Storage     *storage.Manager
	AuthUC      *auth.AuthUseCase
	Audit       *audit.Service
	PurchasesUC *purchases.UseCase
	DashboardUC *appanalytics.DashboardUseCase
	ReportsUC   *appanalytics.ReportsUseCase
	JWTSecret   string
	ServiceName string
	// Gatherer origen de /metrics (nil = sin endpoint de métricas).
	Gatherer prometheus.Gatherer
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   deps.ServiceName,
			"substrate": deps.Storage.SubstrateKind(),
		})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	// Almacenes genéricos: el permiso depende del almacén y se resuelve en el handler.
	storageHandler := NewStorageHandler(deps.Storage, deps.Audit)
	protected.Get("/stores/:store", storageHandler.List)
	protected.Post("/stores/:store", storageHandler.Save)
	protected.Get("/stores/:store/:id", storageHandler.Get)
	protected.Delete("/stores/:store/:id", storageHandler.Delete)
	protected.Post("/transaction", storageHandler.Transaction)
	protected.Get("/export", RequirePermission(exportPermission), storageHandler.Export)
	protected.Post("/import", RequirePermission(exportPermission), storageHandler.Import)

	// Usuarios
	users := protected.Group("/users")
	users.Get("/", RequirePermission("users.read"), authHandler.ListUsers)
	users.Post("/", RequirePermission("users.create"), authHandler.Register)
	users.Put("/:id/status", RequirePermission("users.update"), authHandler.SetStatus)

	// Compras
	purchaseHandler := NewPurchaseHandler(deps.PurchasesUC)
	purchasesGroup := protected.Group("/purchases")
	purchasesGroup.Get("/", RequirePermission("purchases.read"), purchaseHandler.List)
	purchasesGroup.Post("/", RequirePermission("purchases.create"), purchaseHandler.Create)
	purchasesGroup.Get("/:id", RequirePermission("purchases.read"), purchaseHandler.GetByID)
	purchasesGroup.Put("/:id", RequirePermission("purchases.update"), purchaseHandler.Update)
	purchasesGroup.Post("/:id/receive", RequirePermission("purchases.receive"), purchaseHandler.Receive)
	purchasesGroup.Post("/:id/cancel", RequirePermission("purchases.update"), purchaseHandler.Cancel)

	// Proveedores
	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", RequirePermission("purchases.read"), purchaseHandler.ListSuppliers)
	suppliers.Post("/", RequirePermission("purchases.create"), purchaseHandler.CreateSupplier)
	suppliers.Put("/:id", RequirePermission("purchases.update"), purchaseHandler.UpdateSupplier)

	// Dashboard e informes
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", RequirePermission("reports.read"), dashboardHandler.GetSummary)

	reportsHandler := NewReportsHandler(deps.ReportsUC)
	reports := protected.Group("/reports")
	reports.Get("/sales", RequirePermission("reports.sales"), reportsHandler.Sales)
	reports.Get("/inventory", RequirePermission("reports.inventory"), reportsHandler.Inventory)
	reports.Get("/purchases", RequirePermission("reports.purchases"), reportsHandler.Purchases)

	// Auditoría
	auditHandler := NewAuditHandler(deps.Audit)
	protected.Get("/audit", RequirePermission("audit.read"), auditHandler.List)
	protected.Get("/audit/export", RequirePermission("audit.export"), auditHandler.Export)
}
