package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kjk/common/atomicfile"
	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-pos/internal/application/storage"
	"github.com/jhoicas/erp-pos/pkg/config"
)

func newExportCommand(opts *RootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Exportar todos los almacenes a JSON",
		Long:         "Escribe un objeto con una lista por almacén más exported_at y version. Sin -o escribe en stdout.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, opts, func(ctx context.Context, m *storage.Manager, _ *config.Config) error {
				return runExport(ctx, cmd, m, output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "archivo destino (se reemplaza de forma atómica)")
	return cmd
}

func runExport(ctx context.Context, cmd *cobra.Command, m *storage.Manager, output string) error {
	snap, err := m.Export(ctx)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar exportación: %w", err)
	}
	raw = append(raw, '\n')
	if output == "" {
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	}

	w, err := atomicfile.New(output)
	if err != nil {
		return fmt.Errorf("crear %s: %w", output, err)
	}
	defer w.RemoveIfNotClosed()
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("escribir %s: %w", output, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("escribir %s: %w", output, err)
	}
	total := 0
	for _, recs := range snap.Stores {
		total += len(recs)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exportados %d registros a %s\n", total, output)
	return nil
}
