package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/vocabcards/internal/store"
)

func newDBCmd(a *app) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	dbInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and apply schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.provider.Path()
			v, err := store.Migrate(path)
			if err != nil {
				a.log.Error("migration failed", "database", path, "error", err)
				return err
			}
			a.log.Info("schema migrated", "database", path, "version", v)
			fmt.Fprintf(cmd.OutOrStdout(), "database %s at schema version %d\n", path, v)
			return nil
		},
	}

	dbCheckCmd := &cobra.Command{
		Use:   "check",
		Short: "Open the database and report how many cards it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.cards.TestDatabaseConnection(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	dbCmd.AddCommand(dbInitCmd, dbCheckCmd)
	return dbCmd
}
