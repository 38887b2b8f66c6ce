package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/pokedeck/storefront/internal/catalog"
	"github.com/pokedeck/storefront/internal/platform/config"
	"github.com/pokedeck/storefront/internal/platform/database"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load catalog products from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := catalog.LoadSeedFile(args[0])
			if err != nil {
				return err
			}

			var cfg config.Config
			if err := config.Parse(&cfg); err != nil {
				return err
			}

			pool, err := database.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			uc := catalog.NewCatalogUseCase(catalog.NewRepository(pool), catalog.NewDiskImageStore(cfg.Server.ImageDir))
			created, err := uc.SeedProducts(cmd.Context(), seeds)
			if err != nil {
				return fmt.Errorf("seeded %d of %d products: %w", created, len(seeds), err)
			}

			log.Printf("✅ Seeded %d products from %s", created, args[0])
			return nil
		},
	}
}
