package main

import (
	"storefront/internal/infra/db"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and unique indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := db.Migrate(rt.db.WithContext(cmd.Context())); err != nil {
				return err
			}
			rt.log.Info("migration completed")
			return nil
		},
	}
}
