package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/lexis/internal/catalog"
	"github.com/papapumpkin/lexis/internal/config"
	"github.com/papapumpkin/lexis/internal/ui"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the concepts words can be born for",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func init() {
	catalogCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), cat.Table())
	}
	ui.NewWriter(cmd.OutOrStdout()).Catalog(cat)
	return nil
}
