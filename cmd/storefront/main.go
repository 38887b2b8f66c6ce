package main

import (
	"os"

	"github.com/spf13/cobra"
)

// newRootCommand cria a árvore de comandos do storefront
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Pokedeck storefront backend",
		Long:          "REST backend for the Pokedeck store: catalog, accounts and PayPal checkout.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())

	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
