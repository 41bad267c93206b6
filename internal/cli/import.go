package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-pos/internal/application/storage"
	"github.com/jhoicas/erp-pos/pkg/config"
)

func newImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Importar una exportación JSON",
		Long: `Guarda cada registro de la exportación fusionándolo por id con lo existente.
No borra nada. Un almacén desconocido detiene la importación; lo ya guardado queda.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, opts, func(ctx context.Context, m *storage.Manager, _ *config.Config) error {
				return runImport(ctx, cmd, m, args[0])
			})
		},
	}
}

func runImport(ctx context.Context, cmd *cobra.Command, m *storage.Manager, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("leer %s: %w", path, err)
	}
	var snap storage.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("leer %s: %w", path, err)
	}
	n, err := m.Import(ctx, &snap)
	if err != nil {
		return fmt.Errorf("importados %d registros antes del error: %w", n, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "importados %d registros\n", n)
	return nil
}
