package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-pos/internal/application/storage"
	"github.com/jhoicas/erp-pos/pkg/config"
)

func newSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "seed",
		Short:        "Crear el usuario admin y los datos de referencia si users está vacío",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, opts, func(ctx context.Context, m *storage.Manager, cfg *config.Config) error {
				seedCfg := storage.SeedConfig{}
				if cfg != nil {
					seedCfg.AdminPassword = cfg.Seed.AdminPassword
				}
				seeded, err := storage.NewSeeder(m, nil, seedCfg).Bootstrap(ctx)
				if err != nil {
					return err
				}
				if seeded {
					fmt.Fprintf(cmd.OutOrStdout(), "datos iniciales creados en %s\n", m.SubstrateKind())
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "users no está vacío: nada que sembrar")
				}
				return nil
			})
		},
	}
}
