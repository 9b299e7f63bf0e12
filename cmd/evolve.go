package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/lexis/internal/config"
	"github.com/papapumpkin/lexis/internal/engine"
	"github.com/papapumpkin/lexis/internal/node"
	"github.com/papapumpkin/lexis/internal/ui"
)

var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Advance the stored lexicon by one or more generations",
	Args:  cobra.NoArgs,
	RunE:  runEvolve,
}

func init() {
	evolveCmd.Flags().IntP("generations", "n", 1, "number of generations to advance")
	evolveCmd.Flags().Bool("json", false, "print each generation result as JSON")
	rootCmd.AddCommand(evolveCmd)
}

func runEvolve(cmd *cobra.Command, _ []string) error {
	count, _ := cmd.Flags().GetInt("generations")
	jsonOut, _ := cmd.Flags().GetBool("json")
	if count < 1 {
		return fmt.Errorf("evolve: --generations must be at least 1, got %d", count)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, eng, err := openLocal(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	n := node.New(eng, node.Options{Store: st})
	printer := ui.New()
	enc := json.NewEncoder(cmd.OutOrStdout())

	var last engine.Result
	for range count {
		res, err := n.Advance(cmd.Context())
		if err != nil {
			return err
		}
		last = res
		if jsonOut {
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("evolve: encode: %w", err)
			}
			continue
		}
		printer.Generation(res)
	}
	if !jsonOut {
		printer.Info(fmt.Sprintf("lexicon at generation %d with %d words", last.Generation, last.WordCount))
	}
	return nil
}
