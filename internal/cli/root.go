// Package cli implementa erpctl: exportar, importar y sembrar datos usando el mismo
// sustrato que elegiría el servidor.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-pos/internal/application/storage"
	"github.com/jhoicas/erp-pos/internal/infrastructure/substrate"
	"github.com/jhoicas/erp-pos/pkg/config"
	"github.com/jhoicas/erp-pos/pkg/logger"
)

// Opener abre el Manager y devuelve la función que libera el sustrato.
type Opener func(ctx context.Context, opts *RootOptions) (*storage.Manager, *config.Config, func() error, error)

// RootOptions flags globales y dependencias compartidas por los subcomandos.
type RootOptions struct {
	Verbose bool
	Driver  string // sobrescribe STORAGE_DRIVER
	Open    Opener
}

// NewRootCommand construye el comando raíz de erpctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Open: openConfigured})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "erpctl",
		Short: "Herramientas de datos del ERP/POS",
		Long:  "Exporta, importa y siembra los almacenes del ERP/POS sobre el sustrato configurado (PostgreSQL, SQLite o respaldo clave-valor).",
		// main imprime el error una sola vez.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.Driver {
			case "", config.DriverAuto, config.DriverPostgres, config.DriverSQLite, config.DriverLocal:
				return nil
			}
			return fmt.Errorf("driver inválido %q", opts.Driver)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "logs detallados en stderr")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "sustrato (auto|postgres|sqlite|local); por defecto STORAGE_DRIVER")

	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	return cmd
}

// openConfigured abre el sustrato igual que cmd/api.
func openConfigured(ctx context.Context, opts *RootOptions) (*storage.Manager, *config.Config, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	if opts.Driver != "" {
		cfg.Storage.Driver = opts.Driver
	}
	log := logger.Nop()
	if opts.Verbose {
		log = logger.New(logger.Config{Env: "development", Level: "debug"})
	}
	sub, err := substrate.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("abrir sustrato: %w", err)
	}
	m := storage.NewManager(sub, storage.Options{Logger: log})
	return m, cfg, sub.Close, nil
}

// withManager abre el Manager, ejecuta fn y cierra el sustrato.
func withManager(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, m *storage.Manager, cfg *config.Config) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	m, cfg, closeFn, err := opts.Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, m, cfg)
}
