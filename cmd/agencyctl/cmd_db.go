package main

import (
	"fmt"

	"github.com/CodingDyl/virtec-crm/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var auto bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply the versioned SQL migrations on postgres. With --auto, or on
sqlite, the schema is created from the models instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			if err := db.Migrate(s.db, !auto, s.cfg.Database.DSN(), s.log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "Use AutoMigrate instead of the SQL files")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create default permissions and profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			if err := db.Seed(s.db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d profiles\n", len(db.SeedProfiles))
			return nil
		},
	}
}
