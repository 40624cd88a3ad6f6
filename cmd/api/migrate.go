package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"roomescape/internal/database"
	"roomescape/internal/database/migration"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewPostgres(cmd.Context(), e.cfg.Database, e.log)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			return migration.EnsureMigrated(cmd.Context(), db, e.log)
		},
	}
}
