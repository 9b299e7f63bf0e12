package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/lexis/internal/config"
	"github.com/papapumpkin/lexis/internal/ui"
)

var sentenceCmd = &cobra.Command{
	Use:   "sentence",
	Short: "Generate a sentence from the stored lexicon",
	Args:  cobra.NoArgs,
	RunE:  runSentence,
}

func init() {
	sentenceCmd.Flags().IntP("count", "c", 1, "number of sentences")
	sentenceCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(sentenceCmd)
}

func runSentence(cmd *cobra.Command, _ []string) error {
	count, _ := cmd.Flags().GetInt("count")
	jsonOut, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, eng, err := openLocal(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	printer := ui.NewWriter(cmd.OutOrStdout())
	enc := json.NewEncoder(cmd.OutOrStdout())
	for range max(count, 1) {
		s := eng.Sentence()
		if jsonOut {
			if err := enc.Encode(s); err != nil {
				return fmt.Errorf("sentence: encode: %w", err)
			}
			continue
		}
		printer.Sentence(s)
	}
	return nil
}
