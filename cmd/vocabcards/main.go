package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"

	"github.com/lehmann314159/vocabcards/internal/config"
	"github.com/lehmann314159/vocabcards/internal/logger"
	"github.com/lehmann314159/vocabcards/internal/repository"
	"github.com/lehmann314159/vocabcards/internal/services"
	"github.com/lehmann314159/vocabcards/internal/store"
)

var version = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}

// app holds what every command needs, built once per invocation
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	provider *store.Provider
	cards    *services.WordCardService
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "vocabcards",
		Short:        "Vocabulary word card store and command server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.log == nil {
				return nil
			}
			return a.log.Close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("db", "", "path to the word card database (env DATABASE_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// No store or logger needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}

	rootCmd.AddCommand(
		newServeCmd(a),
		newDBCmd(a),
		newCardCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		versionCmd,
	)

	return rootCmd
}

// setup resolves configuration and builds the logger and the command façade
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	a.cfg = config.NewConfig(cmd.Flags())

	log, err := logger.New(logger.Options{
		Level:      a.cfg.Log.Level,
		Dir:        a.cfg.Log.Dir,
		MaxAgeDays: a.cfg.Log.MaxAgeDays,
		Console:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.log = log

	a.provider = store.New(a.cfg.Database.Path)
	a.cards = services.NewWordCardService(repository.NewSQLiteRepository(a.provider), log.Logger)

	log.Debug("configuration resolved",
		"mode", a.cfg.Mode,
		"database", a.cfg.Database.Path,
		"command", cmd.CommandPath(),
	)
	return nil
}

func (a *app) dictionary() *services.DictionaryService {
	return services.NewDictionaryService(a.cfg.Dictionary.BaseURL)
}

// printJSON writes v as indented JSON
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
