package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	appanalytics "github.com/jhoicas/erp-pos/internal/application/analytics"
	"github.com/jhoicas/erp-pos/internal/application/audit"
	"github.com/jhoicas/erp-pos/internal/application/auth"
	"github.com/jhoicas/erp-pos/internal/application/purchases"
	"github.com/jhoicas/erp-pos/internal/application/storage"
	"github.com/jhoicas/erp-pos/internal/infrastructure/substrate"
	httpRouter "github.com/jhoicas/erp-pos/internal/interfaces/http"
	"github.com/jhoicas/erp-pos/pkg/config"
	"github.com/jhoicas/erp-pos/pkg/logger"
	"github.com/jhoicas/erp-pos/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:        cfg.App.Env,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	sub, err := substrate.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir sustrato de almacenamiento")
	}
	defer func() {
		if err := sub.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar sustrato")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store := storage.NewManager(sub, storage.Options{
		Logger:  log,
		Metrics: metrics.NewStorageMetrics(reg),
	})

	if cfg.Seed.OnStart {
		seeded, err := storage.NewSeeder(store, log, storage.SeedConfig{
			AdminPassword: cfg.Seed.AdminPassword,
		}).Bootstrap(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("datos iniciales")
		}
		if seeded {
			log.Warn().Msg("usuario admin creado con la contraseña inicial; cámbiela")
		}
	}

	auditSvc := audit.NewService(store, log)
	authUC := auth.NewAuthUseCase(store, auditSvc, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	purchasesUC := purchases.NewUseCase(store, auditSvc, log, purchases.Config{
		TaxRate:            cfg.Purchases.TaxRate,
		DefaultWarehouseID: cfg.Seed.DefaultWarehouseID,
	})
	dashboardUC := appanalytics.NewDashboardUseCase(store)
	reportsUC := appanalytics.NewReportsUseCase(store, time.Local)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    64 * 1024 * 1024, // importaciones completas
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Storage:     store,
		AuthUC:      authUC,
		Audit:       auditSvc,
		PurchasesUC: purchasesUC,
		DashboardUC: dashboardUC,
		ReportsUC:   reportsUC,
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
		Gatherer:    reg,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr()).Str("substrate", store.SubstrateKind()).Msg("servidor HTTP escuchando")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
