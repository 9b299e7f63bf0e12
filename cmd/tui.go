package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/lexis/internal/config"
	"github.com/papapumpkin/lexis/internal/node"
	"github.com/papapumpkin/lexis/internal/tui"
)

// tuiCmd evolves the stored lexicon live in the terminal.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Watch the lexicon evolve in an interactive terminal view",
	Long: `Launch a live view of the stored lexicon. Generations advance on a
timer; every generation is saved back to the snapshot database.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().Duration("interval", time.Second, "time between generations")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, eng, err := openLocal(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return tui.Run(node.New(eng, node.Options{Store: st}), interval)
}
