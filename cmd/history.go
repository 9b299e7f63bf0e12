package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/lexis/internal/config"
	"github.com/papapumpkin/lexis/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent lexicon history",
	Long: `Show the most recent events, extinctions and sound shifts plus every
compound of the stored lexicon.

With --archive, list events from the full archive instead of the in-memory
history, starting at --since.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.Flags().Bool("archive", false, "read the full event archive")
	historyCmd.Flags().Int("since", 0, "first generation to list with --archive")
	historyCmd.Flags().Int("limit", 500, "maximum archived events to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	archive, _ := cmd.Flags().GetBool("archive")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, eng, err := openLocal(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	w := cmd.OutOrStdout()
	printer := ui.NewWriter(w)

	if archive {
		since, _ := cmd.Flags().GetInt("since")
		limit, _ := cmd.Flags().GetInt("limit")
		events, err := st.ArchivedEvents(cmd.Context(), since, limit)
		if err != nil {
			return err
		}
		if jsonOut {
			return writeJSON(w, events)
		}
		for _, ev := range events {
			printer.Event(ev)
		}
		return nil
	}

	h := eng.History()
	if jsonOut {
		return writeJSON(w, h)
	}
	printer.History(h)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
