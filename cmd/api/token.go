package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"roomescape/internal/database"
	"roomescape/internal/http/middleware"
	"roomescape/internal/repository/postgres"
)

// newTokenCmd prints an access token for an existing member, for local testing and operators.
func newTokenCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "token <member-id>",
		Short: "Print a signed access token for a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Auth.JWTSecret == "" {
				return errors.New("JWT_SECRET is required")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}

			db, err := database.NewPostgres(cmd.Context(), e.cfg.Database, e.log)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			m, err := postgres.NewCatalogPostgres(db).FindMember(cmd.Context(), id)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("member %d not found", id)
			}
			if err != nil {
				return err
			}

			tok, err := middleware.NewToken(e.cfg.Auth.JWTSecret, *m, e.cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
}
