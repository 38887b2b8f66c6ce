package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/pokedeck/storefront/internal/platform/config"
	"github.com/pokedeck/storefront/internal/platform/database"
)

func newMigrateCommand() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				_, err := cmd.OutOrStdout().Write([]byte(database.Schema()))
				return err
			}

			var cfg config.Database
			if err := config.Parse(&cfg); err != nil {
				return err
			}
			if err := database.Migrate(cmd.Context(), cfg); err != nil {
				return err
			}

			log.Printf("✅ Schema applied to %s", cfg.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "print the schema instead of applying it")
	return cmd
}
