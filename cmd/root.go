package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papapumpkin/lexis/internal/catalog"
	"github.com/papapumpkin/lexis/internal/config"
	"github.com/papapumpkin/lexis/internal/engine"
	"github.com/papapumpkin/lexis/internal/node"
	"github.com/papapumpkin/lexis/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "lexis",
	Short: "Lexicon evolution simulator",
	Long: `Lexis evolves a small constructed lexicon generation by generation:
words are born, used, decay, go extinct, shift their sounds and combine into
compounds.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .lexis.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("db", "", "snapshot database path (default lexis.db)")
	rootCmd.PersistentFlags().String("catalog", "", "TOML concept catalog replacing the built-in one")
	rootCmd.PersistentFlags().Uint64("seed", 0, "random seed (0 = time based)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("catalog_path", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".lexis")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("LEXIS")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// newLogger returns a production zap logger, or a development one when
// verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// engineOptions translates configuration into engine options.
func engineOptions(cfg config.Config) ([]engine.Option, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{
		engine.WithCatalog(cat),
		engine.WithMaxBirthAttempts(cfg.MaxBirthAttempts),
	}
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithSeed(cfg.Seed))
	}
	return opts, nil
}

// openLocal opens the snapshot store and bootstraps an engine from it. The
// caller closes the store.
func openLocal(ctx context.Context, cfg config.Config) (*store.SQLiteStore, *engine.Engine, error) {
	opts, err := engineOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	eng, _, err := node.Bootstrap(ctx, st, opts...)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return st, eng, nil
}
